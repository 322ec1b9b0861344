package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/kalijeogo/orderfunnel/internal/awsx"
)

// RowStore is what the ingest service appends to and scans. Exactly one
// implementation writes production data; the in-memory one serves tests.
type RowStore interface {
	// Append persists the row under the next row number and returns it.
	Append(ctx context.Context, row Row) (int, error)
	// Recent returns up to limit rows, newest first.
	Recent(ctx context.Context, limit int) ([]Row, error)
}

// ErrRowExists means the allocated row number was already taken, which
// only happens if two writers share one counter item incorrectly.
var ErrRowExists = errors.New("row number already taken")

const (
	sheetKey   = "orders"
	counterKey = "orders#counter"
)

// Store keeps rows in a DynamoDB table keyed (sheet S, row N). Row numbers
// come from an atomic counter item, so they are strictly increasing with
// no gaps or reuse. The header occupies row 1; the counter starts orders
// at row 2, matching how the original sheet counted.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client awsx.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Append allocates the next row number and writes the row under it.
func (s *Store) Append(ctx context.Context, row Row) (int, error) {
	rowNum, err := s.nextRowNumber(ctx)
	if err != nil {
		return 0, err
	}

	row.Sheet = sheetKey
	row.Row = rowNum

	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return 0, fmt.Errorf("marshal row: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
		// the counter makes collisions impossible in practice; the
		// condition turns a misconfiguration into a loud error
		ConditionExpression:      awsString("attribute_not_exists(#r)"),
		ExpressionAttributeNames: map[string]string{"#r": "row"},
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return 0, ErrRowExists
		}
		return 0, fmt.Errorf("put row: %w", err)
	}

	return rowNum, nil
}

// nextRowNumber bumps the counter item and returns the fresh value.
func (s *Store) nextRowNumber(ctx context.Context) (int, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"sheet": &types.AttributeValueMemberS{Value: counterKey},
			"row":   &types.AttributeValueMemberN{Value: "0"},
		},
		// first order lands on row 2; row 1 is the header
		UpdateExpression: awsString("SET last_row = if_not_exists(last_row, :header) + :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":header": &types.AttributeValueMemberN{Value: "1"},
			":inc":    &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment row counter: %w", err)
	}

	attr, ok := out.Attributes["last_row"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("row counter returned no numeric last_row")
	}
	n, err := strconv.Atoi(attr.Value)
	if err != nil {
		return 0, fmt.Errorf("parse row counter %q: %w", attr.Value, err)
	}
	return n, nil
}

// Recent queries the newest rows, descending by row number.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	lim := int32(limit)
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("sheet = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: sheetKey},
		},
		ScanIndexForward: awsBool(false),
		Limit:            &lim,
	})
	if err != nil {
		return nil, fmt.Errorf("query recent rows: %w", err)
	}

	rows := make([]Row, 0, len(out.Items))
	for _, item := range out.Items {
		var r Row
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			return nil, fmt.Errorf("unmarshal row: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
