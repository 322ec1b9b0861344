package dedup

import (
	"context"
	"encoding/json"
	"fmt"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kalijeogo/orderfunnel/internal/awsx"
)

// the whole map lives under one fixed key, mirroring the property-store
// blob the ingest script used before this rewrite
const blobKey = "processed_map"

// DynamoBacking persists the serialized map as a single DynamoDB item.
type DynamoBacking struct {
	client    awsx.DynamoDBAPI
	tableName string
}

func NewDynamoBacking(client awsx.DynamoDBAPI, tableName string) *DynamoBacking {
	return &DynamoBacking{client: client, tableName: tableName}
}

func (b *DynamoBacking) Load(ctx context.Context) (map[string]RowRef, error) {
	out, err := b.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &b.tableName,
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: blobKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get dedup blob: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	blob, ok := out.Item["entries"].(*types.AttributeValueMemberS)
	if !ok || blob.Value == "" {
		return nil, nil
	}
	var entries map[string]RowRef
	if err := json.Unmarshal([]byte(blob.Value), &entries); err != nil {
		// a corrupt blob must not take order intake down; start fresh
		return nil, nil
	}
	return entries, nil
}

func (b *DynamoBacking) Save(ctx context.Context, entries map[string]RowRef) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal dedup blob: %w", err)
	}
	_, err = b.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &b.tableName,
		Item: map[string]types.AttributeValue{
			"key":     &types.AttributeValueMemberS{Value: blobKey},
			"entries": &types.AttributeValueMemberS{Value: string(blob)},
		},
	})
	if err != nil {
		return fmt.Errorf("put dedup blob: %w", err)
	}
	return nil
}
