// Package ingest is the only writer of the order book and the sole
// authority on duplicate detection. One pass per submission:
// validate → token dedup → content dedup → insert → remember → notify.
package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/kalijeogo/orderfunnel/internal/dedup"
	"github.com/kalijeogo/orderfunnel/internal/notify"
	"github.com/kalijeogo/orderfunnel/internal/order"
	"github.com/kalijeogo/orderfunnel/internal/sheet"
)

const (
	// contentWindow bounds how far back a tokenless submission is
	// compared against existing rows.
	contentWindow = 5 * time.Minute
	// contentScanRows caps the scan regardless of row age.
	contentScanRows = 60
)

const (
	msgSaved     = "✅ تم استلام طلبك بنجاح"
	msgDuplicate = "✅ تم استلام طلبك (مكرر)"
	errSaveFail  = "فشل في حفظ البيانات. حاول مرة أخرى."
)

type Service struct {
	rows     sheet.RowStore
	tokens   *dedup.Map
	validate *validatorv10.Validate
	channels []notify.Notifier
	log      *logrus.Logger
	sheetURL string
	nowFunc  func() time.Time

	inflightMu sync.Mutex
	inflight   map[string]*tokenLock
}

// tokenLock serializes the submissions of one token. Refcounted so the
// entry can be dropped once the last holder leaves.
type tokenLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(rows sheet.RowStore, tokens *dedup.Map, channels []notify.Notifier, sheetURL string, log *logrus.Logger) *Service {
	return &Service{
		rows:     rows,
		tokens:   tokens,
		validate: order.NewValidator(),
		channels: channels,
		log:      log,
		sheetURL: sheetURL,
		nowFunc:  time.Now,
		inflight: map[string]*tokenLock{},
	}
}

// Submit runs the whole intake pipeline and always produces a response
// body; internal causes are logged, never surfaced.
func (s *Service) Submit(ctx context.Context, req order.Submission) order.SubmitResponse {
	req = order.Normalize(req)

	if problems := order.Validate(s.validate, req); len(problems) > 0 {
		fields := make([]string, len(problems))
		for i, p := range problems {
			fields[i] = p.Field
		}
		s.log.WithField("fields", fields).Info("submission rejected")
		return order.SubmitResponse{
			Success: false,
			Error:   "بيانات ناقصة: " + strings.Join(fields, ", "),
		}
	}

	if req.ClientRequestID != "" {
		// one submission per token at a time: the lock covers the span
		// from lookup through insert and remember, so a concurrent retry
		// can never miss the lookup and append a second row
		unlock := s.lockToken(req.ClientRequestID)
		defer unlock()

		if ref, ok := s.tokens.Lookup(req.ClientRequestID); ok {
			s.log.WithFields(logrus.Fields{
				"token": req.ClientRequestID,
				"row":   ref.Row,
			}).Info("duplicate token, skipping insert")
			return duplicateResponse(ref.Row)
		}
	} else if rowNum, found := s.findRecentDuplicate(ctx, req); found {
		s.log.WithField("row", rowNum).Info("content duplicate, skipping insert")
		return duplicateResponse(rowNum)
	}

	now := s.nowFunc()
	row := sheet.BuildRow(req, now)
	rowNum, err := s.rows.Append(ctx, row)
	if err != nil {
		s.log.WithError(err).Error("row append failed")
		return order.SubmitResponse{Success: false, Error: errSaveFail}
	}

	// the row is durable from here on: a failure below can at worst cost
	// one duplicate row on client retry, never the order itself
	if err := s.tokens.Remember(ctx, req.ClientRequestID, rowNum); err != nil {
		s.log.WithError(err).WithField("row", rowNum).Warn("token not persisted")
	}

	notify.Dispatch(ctx, s.log, notify.Notice{Row: row, RowNum: rowNum, SheetURL: s.sheetURL}, s.channels...)

	return order.SubmitResponse{
		Success: true,
		Message: msgSaved,
		Row:     rowNum,
	}
}

// findRecentDuplicate scans the newest rows for a content match, stopping
// at the first row older than the window. Normalized fields are compared,
// not the formatted display strings.
func (s *Service) findRecentDuplicate(ctx context.Context, req order.Submission) (int, bool) {
	rows, err := s.rows.Recent(ctx, contentScanRows)
	if err != nil {
		// a broken scan must not block intake; worst case one extra row
		s.log.WithError(err).Warn("content dedup scan failed")
		return 0, false
	}

	cutoff := s.nowFunc().Add(-contentWindow).Unix()
	for _, row := range rows {
		if row.CreatedAtUnix < cutoff {
			break
		}
		if row.Phone == req.Phone &&
			row.WatchID == req.SelectedWatchID &&
			row.Wilaya == req.WilayaNameAr &&
			row.Baladiya == req.BaladiyaNameAr &&
			row.TotalAmount == req.Total {
			return row.Row, true
		}
	}
	return 0, false
}

// lockToken acquires the critical section of one token and returns its
// release func.
func (s *Service) lockToken(token string) func() {
	s.inflightMu.Lock()
	l := s.inflight[token]
	if l == nil {
		l = &tokenLock{}
		s.inflight[token] = l
	}
	l.refs++
	s.inflightMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.inflightMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.inflight, token)
		}
		s.inflightMu.Unlock()
	}
}

func duplicateResponse(rowNum int) order.SubmitResponse {
	return order.SubmitResponse{
		Success:   true,
		Message:   msgDuplicate,
		Row:       rowNum,
		Duplicate: true,
	}
}
