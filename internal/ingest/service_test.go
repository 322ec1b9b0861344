package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/kalijeogo/orderfunnel/internal/dedup"
	"github.com/kalijeogo/orderfunnel/internal/notify"
	"github.com/kalijeogo/orderfunnel/internal/order"
	"github.com/kalijeogo/orderfunnel/internal/sheet"
)

type stubChannel struct {
	name  string
	err   error
	calls int
}

func (c *stubChannel) Name() string { return c.name }
func (c *stubChannel) Send(ctx context.Context, n notify.Notice) error {
	c.calls++
	return c.err
}

func newTestService(t *testing.T, channels ...notify.Notifier) (*Service, *sheet.MemoryStore, *logtest.Hook) {
	t.Helper()
	store := sheet.NewMemoryStore()
	tokens, err := dedup.NewMap(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	log, hook := logtest.NewNullLogger()
	svc := NewService(store, tokens, channels, "https://example.com/sheet", log)
	return svc, store, hook
}

func submission() order.Submission {
	return order.Submission{
		FullName:        "أحمد محمد",
		Phone:           "0551234567",
		WilayaNameAr:    "الجزائر",
		BaladiyaNameAr:  "بئر مراد رايس",
		SelectedWatchID: "w3",
		DeliveryOption:  order.DeliveryHome,
		Total:           3200,
	}
}

func TestSubmit_TokenIdempotency(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	req := submission()
	req.ClientRequestID = "tok-1"

	first := svc.Submit(ctx, req)
	if !first.Success || first.Duplicate {
		t.Fatalf("first submit: %+v", first)
	}

	for i := 0; i < 4; i++ {
		resp := svc.Submit(ctx, req)
		if !resp.Success || !resp.Duplicate {
			t.Fatalf("repeat %d: %+v", i, resp)
		}
		if resp.Row != first.Row {
			t.Fatalf("repeat row %d != original %d", resp.Row, first.Row)
		}
	}

	if store.Len() != 1 {
		t.Fatalf("rows persisted = %d, want 1", store.Len())
	}
}

// slowStore stretches every append so concurrent submissions overlap.
type slowStore struct {
	*sheet.MemoryStore
	delay time.Duration
}

func (s *slowStore) Append(ctx context.Context, row sheet.Row) (int, error) {
	time.Sleep(s.delay)
	return s.MemoryStore.Append(ctx, row)
}

func TestSubmit_ConcurrentSameTokenInsertsOnce(t *testing.T) {
	store := &slowStore{MemoryStore: sheet.NewMemoryStore(), delay: 50 * time.Millisecond}
	tokens, err := dedup.NewMap(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	log, _ := logtest.NewNullLogger()
	svc := NewService(store, tokens, nil, "", log)

	req := submission()
	req.ClientRequestID = "tok-race"

	var wg sync.WaitGroup
	results := make([]order.SubmitResponse, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Submit(context.Background(), req)
		}(i)
	}
	wg.Wait()

	if store.Len() != 1 {
		t.Fatalf("same token inserted %d rows, want 1", store.Len())
	}
	dups := 0
	for i, resp := range results {
		if !resp.Success {
			t.Fatalf("submit %d failed: %+v", i, resp)
		}
		if resp.Row != results[0].Row {
			t.Fatalf("results disagree on the row: %+v vs %+v", results[0], resp)
		}
		if resp.Duplicate {
			dups++
		}
	}
	if dups != 1 {
		t.Fatalf("duplicate flags = %d, want exactly one", dups)
	}
}

func TestSubmit_ContentDedupWithinWindow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	now := base
	svc.nowFunc = func() time.Time { return now }

	first := svc.Submit(ctx, submission()) // no token
	if !first.Success || first.Duplicate {
		t.Fatalf("first submit: %+v", first)
	}

	now = base.Add(2 * time.Minute)
	again := svc.Submit(ctx, submission())
	if !again.Duplicate {
		t.Fatalf("resubmission within window not suppressed: %+v", again)
	}
	if again.Row != first.Row {
		t.Fatalf("duplicate row %d != original %d", again.Row, first.Row)
	}
	if store.Len() != 1 {
		t.Fatalf("rows = %d after suppressed duplicate", store.Len())
	}

	now = base.Add(6 * time.Minute)
	later := svc.Submit(ctx, submission())
	if later.Duplicate {
		t.Fatalf("submission past the window wrongly suppressed: %+v", later)
	}
	if store.Len() != 2 {
		t.Fatalf("rows = %d after window expired", store.Len())
	}
}

func TestSubmit_ContentDedupIgnoresDifferingOrders(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if resp := svc.Submit(ctx, submission()); !resp.Success {
		t.Fatalf("first: %+v", resp)
	}

	other := submission()
	other.SelectedWatchID = "w9"
	other.Total = order.BasePrice + 450
	other.DeliveryOption = order.DeliveryOffice
	if resp := svc.Submit(ctx, other); resp.Duplicate {
		t.Fatalf("different order suppressed: %+v", resp)
	}
	if store.Len() != 2 {
		t.Fatalf("rows = %d", store.Len())
	}
}

func TestSubmit_PhoneVariantsDedupTogether(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a := submission()
	a.Phone = "055 123 45 67"
	if resp := svc.Submit(ctx, a); !resp.Success || resp.Duplicate {
		t.Fatalf("first: %+v", resp)
	}

	b := submission()
	b.Phone = "0551234567"
	if resp := svc.Submit(ctx, b); !resp.Duplicate {
		t.Fatalf("normalized-equal phone not deduped: %+v", resp)
	}
}

func TestSubmit_ValidationNamesEveryMissingField(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	req := submission()
	req.SelectedWatchID = ""
	resp := svc.Submit(ctx, req)
	if resp.Success {
		t.Fatalf("invalid submission accepted: %+v", resp)
	}
	if !strings.Contains(resp.Error, "selectedWatchId") {
		t.Fatalf("error does not name the field: %q", resp.Error)
	}
	if store.Len() != 0 {
		t.Fatal("row created for rejected submission")
	}
}

func TestSubmit_NotificationIsolation(t *testing.T) {
	email := &stubChannel{name: "email", err: errors.New("smtp down")}
	chat := &stubChannel{name: "telegram"}
	svc, store, hook := newTestService(t, email, chat)

	resp := svc.Submit(context.Background(), submission())
	if !resp.Success {
		t.Fatalf("submit failed because of a channel: %+v", resp)
	}
	if store.Len() != 1 {
		t.Fatalf("rows = %d", store.Len())
	}
	if email.calls != 1 || chat.calls != 1 {
		t.Fatalf("channels: email=%d chat=%d", email.calls, chat.calls)
	}

	warns := 0
	for _, e := range hook.Entries {
		if e.Level == logrus.WarnLevel && e.Message == "notification failed" {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly one channel failure logged, got %d", warns)
	}

	// flipped roles
	email2 := &stubChannel{name: "email"}
	chat2 := &stubChannel{name: "telegram", err: errors.New("chat not found")}
	svc2, store2, _ := newTestService(t, email2, chat2)
	if resp := svc2.Submit(context.Background(), submission()); !resp.Success {
		t.Fatalf("submit failed: %+v", resp)
	}
	if store2.Len() != 1 || email2.calls != 1 || chat2.calls != 1 {
		t.Fatal("flipped channel failure changed persistence or dispatch")
	}
}

func TestSubmit_NoNotificationForDuplicates(t *testing.T) {
	chat := &stubChannel{name: "telegram"}
	svc, _, _ := newTestService(t, chat)
	ctx := context.Background()

	req := submission()
	req.ClientRequestID = "tok-dup"
	svc.Submit(ctx, req)
	svc.Submit(ctx, req)

	if chat.calls != 1 {
		t.Fatalf("duplicate triggered notification: calls=%d", chat.calls)
	}
}

func TestSubmit_AppendOnlyOrdering(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	prev := 0
	for i := 0; i < 5; i++ {
		req := submission()
		req.Phone = "055123456" + string(rune('0'+i))
		resp := svc.Submit(ctx, req)
		if !resp.Success || resp.Duplicate {
			t.Fatalf("submit %d: %+v", i, resp)
		}
		if resp.Row <= prev {
			t.Fatalf("row numbers not strictly increasing: %d after %d", resp.Row, prev)
		}
		if prev != 0 && resp.Row != prev+1 {
			t.Fatalf("gap in row numbers: %d after %d", resp.Row, prev)
		}
		prev = resp.Row
	}
}
