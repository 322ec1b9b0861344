// Package form models the order form exactly as the landing page runs it:
// local selections, per-field error messages, a computed total, and one
// idempotency token per submission attempt.
package form

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalijeogo/orderfunnel/internal/order"
	"github.com/kalijeogo/orderfunnel/internal/refdata"
)

// Tracker receives fire-and-forget conversion events. Implementations
// must never block; the form ignores any outcome.
type Tracker interface {
	Track(event string, params map[string]interface{})
}

// Form holds the client-side state of one customer's walk through the
// funnel.
type Form struct {
	SelectedWatchID string
	Delivery        order.DeliveryOption
	FullName        string
	Phone           string
	WilayaID        int
	Baladiya        string
	Notes           string

	Errors      map[string]string
	Submitting  bool
	SubmitError string

	tracker Tracker
	// token is minted on the first payload build and reused by every
	// retry of the same attempt, so the backend sees one logical order.
	token string
}

func New(tracker Tracker) *Form {
	return &Form{Errors: map[string]string{}, tracker: tracker}
}

func (f *Form) SelectWatch(id string) {
	f.SelectedWatchID = id
	delete(f.Errors, "watch")
}

func (f *Form) SelectDelivery(d order.DeliveryOption) {
	f.Delivery = d
	delete(f.Errors, "delivery")
	if f.tracker != nil {
		f.tracker.Track("InitiateCheckout", map[string]interface{}{
			"value":    f.Total(),
			"currency": "DZD",
			"watch":    f.SelectedWatchID,
		})
	}
}

// SetWilaya records the region choice and clears any previously chosen
// baladiya: the old one belongs to the old wilaya's list.
func (f *Form) SetWilaya(id int) {
	f.WilayaID = id
	f.Baladiya = ""
	delete(f.Errors, "wilayaId")
}

func (f *Form) SetBaladiya(name string) {
	f.Baladiya = name
	delete(f.Errors, "baladiya")
}

// BaladiyaOptions lists what the baladiya selector may offer; empty until
// a wilaya is chosen.
func (f *Form) BaladiyaOptions() []string {
	if f.WilayaID == 0 {
		return nil
	}
	return refdata.BaladiyatOf(f.WilayaID)
}

// Total is base price plus the surcharge of the chosen delivery method;
// before a choice is made the display shows the base price alone.
func (f *Form) Total() int {
	if !f.Delivery.Valid() {
		return order.BasePrice
	}
	return order.Total(f.Delivery)
}

// Validate runs every client-side rule and fills the field→message map.
// Returns true when submission may proceed.
func (f *Form) Validate() bool {
	errs := map[string]string{}

	if f.SelectedWatchID == "" {
		errs["watch"] = "الرجاء اختيار ساعة."
	}
	if !f.Delivery.Valid() {
		errs["delivery"] = "الرجاء اختيار طريقة التوصيل."
	}
	name := trimmed(f.FullName)
	if len([]rune(name)) < 2 {
		errs["fullName"] = "الاسم الكامل مطلوب (حرفان على الأقل)."
	}
	digits := order.NormalizePhone(f.Phone)
	if len(digits) < 9 || len(digits) > 13 {
		errs["phone"] = "رقم هاتف غير صالح."
	}
	if f.WilayaID == 0 {
		errs["wilayaId"] = "الولاية مطلوبة."
	}
	if trimmed(f.Baladiya) == "" {
		errs["baladiya"] = "البلدية مطلوبة."
	}

	f.Errors = errs
	return len(errs) == 0
}

// BuildSubmission assembles the wire payload with normalized phone digits,
// resolved display names, the computed total, and the attempt token.
func (f *Form) BuildSubmission() order.Submission {
	wilayaName := ""
	if w, ok := refdata.WilayaByID(f.WilayaID); ok {
		wilayaName = w.NameAr
	}

	return order.Submission{
		FullName:        trimmed(f.FullName),
		Phone:           order.NormalizePhone(f.Phone),
		WilayaID:        f.WilayaID,
		WilayaNameAr:    wilayaName,
		BaladiyaNameAr:  trimmed(f.Baladiya),
		SelectedWatchID: f.SelectedWatchID,
		DeliveryOption:  f.Delivery,
		Total:           f.Total(),
		Notes:           trimmed(f.Notes),
		ClientRequestID: f.attemptToken(),
	}
}

// MarkSubmitted clears the in-flight state after a confirmed submission
// and drops the token so a brand-new order gets a fresh one.
func (f *Form) MarkSubmitted() {
	f.Submitting = false
	f.SubmitError = ""
	f.token = ""
	if f.tracker != nil {
		f.tracker.Track("Purchase", map[string]interface{}{
			"value":    f.Total(),
			"currency": "DZD",
			"watch":    f.SelectedWatchID,
		})
	}
}

func (f *Form) attemptToken() string {
	if f.token != "" {
		return f.token
	}
	f.token = NewRequestID()
	return f.token
}

// NewRequestID mints an idempotency token: a random UUID, or a
// timestamp+random string when UUID generation errors out.
func NewRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("req-%d-%06d", time.Now().UnixNano(), rand.Intn(1000000))
	}
	return id.String()
}

func trimmed(s string) string { return strings.TrimSpace(s) }
