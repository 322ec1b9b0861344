// Package proxy fronts the ingest service for the public order form. It
// owns the browser-facing contract: permissive CORS, fast validation of
// the bare minimum, and an acknowledgment policy that prefers telling a
// buyer "received" over making them resubmit.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kalijeogo/orderfunnel/internal/order"
)

const (
	msgOptimistic  = "✅ تم استلام طلبك بنجاح"
	errUnreachable = "تعذر إرسال الطلب. حاول مرة أخرى."
)

// Policy decides how the proxy behaves when the ingest backend is slow
// or down. OptimisticAcknowledgment trades the small risk of a silently
// lost order against losing the buyer at the last step; the request
// token lets ingest collapse any later retry of the same attempt.
type Policy struct {
	OptimisticAcknowledgment bool
	Timeout                  time.Duration
	RetryPause               time.Duration
}

type Forwarder struct {
	ingestURL string
	policy    Policy
	client    *http.Client
	log       *logrus.Logger

	pause func(time.Duration)
}

func NewForwarder(ingestURL string, policy Policy, log *logrus.Logger) *Forwarder {
	return &Forwarder{
		ingestURL: ingestURL,
		policy:    policy,
		client:    &http.Client{},
		log:       log,
		pause:     time.Sleep,
	}
}

// Forward relays one submission to ingest, retrying once on failure with
// the same request token. The returned response is always safe to show a
// buyer; backend error text never passes through.
func (f *Forwarder) Forward(ctx context.Context, sub order.Submission) order.SubmitResponse {
	body, err := json.Marshal(sub)
	if err != nil {
		f.log.WithError(err).Error("submission marshal failed")
		return order.SubmitResponse{Success: false, Error: errUnreachable}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			f.pause(f.policy.RetryPause)
		}

		resp, err := f.send(ctx, body)
		if err != nil {
			lastErr = err
			f.log.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"token":   sub.ClientRequestID,
			}).Warn("forward attempt failed")
			continue
		}

		resp.ClientRequestID = sub.ClientRequestID
		return resp
	}

	if f.policy.OptimisticAcknowledgment {
		f.log.WithError(lastErr).WithField("token", sub.ClientRequestID).
			Warn("ingest unreachable, acknowledging optimistically")
		return order.SubmitResponse{
			Success:         true,
			Message:         msgOptimistic,
			ClientRequestID: sub.ClientRequestID,
		}
	}

	return order.SubmitResponse{Success: false, Error: errUnreachable}
}

func (f *Forwarder) send(ctx context.Context, body []byte) (order.SubmitResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.ingestURL, bytes.NewReader(body))
	if err != nil {
		return order.SubmitResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := f.client.Do(req)
	if err != nil {
		return order.SubmitResponse{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return order.SubmitResponse{}, fmt.Errorf("ingest answered %d", httpResp.StatusCode)
	}

	var resp order.SubmitResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return order.SubmitResponse{}, fmt.Errorf("decoding ingest response: %w", err)
	}
	return resp, nil
}
