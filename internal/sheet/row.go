// Package sheet is the persisted order book: an append-only list of rows
// with the fixed column layout the back office reads, owned exclusively by
// the ingest service.
package sheet

import (
	"time"

	"github.com/kalijeogo/orderfunnel/internal/order"
)

// Headers is the column layout, written once as row 1 and frozen.
var Headers = []string{
	"التاريخ والوقت",
	"الاسم الكامل",
	"رقم الهاتف",
	"الولاية",
	"البلدية",
	"الساعة المختارة",
	"طريقة التوصيل",
	"المبلغ الإجمالي",
	"ملاحظات",
	"حالة الطلب",
}

// StatusNew is the fixed initial status label of every persisted order.
const StatusNew = "جديد"

// notesPlaceholder fills the notes column when the customer wrote nothing.
const notesPlaceholder = "—"

// TimestampLayout is the display format of the first column.
const TimestampLayout = "02/01/2006 15:04:05"

// Row is one persisted order. Display columns mirror what the back office
// sees; the normalized fields alongside them are what dedup compares, so a
// formatting change can never silently break duplicate detection.
type Row struct {
	Sheet string `dynamodbav:"sheet"` // PK, fixed per deployment
	Row   int    `dynamodbav:"row"`   // SK, monotonic

	Timestamp     string `dynamodbav:"ts_display"`
	FullName      string `dynamodbav:"full_name"`
	Phone         string `dynamodbav:"phone"` // normalized digits
	Wilaya        string `dynamodbav:"wilaya"`
	Baladiya      string `dynamodbav:"baladiya"`
	WatchLabel    string `dynamodbav:"watch_label"`
	DeliveryLabel string `dynamodbav:"delivery_label"`
	TotalDisplay  string `dynamodbav:"total_display"`
	Notes         string `dynamodbav:"notes"`
	Status        string `dynamodbav:"status"`

	WatchID       string `dynamodbav:"watch_id"`
	TotalAmount   int    `dynamodbav:"total_amount"`
	CreatedAtUnix int64  `dynamodbav:"created_at"`
}

// businessLocation is the time zone row timestamps are rendered in.
var businessLocation = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Africa/Algiers")
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// BuildRow renders a validated, normalized submission into a row. The row
// number is assigned by the store at append time.
func BuildRow(s order.Submission, now time.Time) Row {
	notes := s.Notes
	if notes == "" {
		notes = notesPlaceholder
	}
	return Row{
		Timestamp:     now.In(businessLocation).Format(TimestampLayout),
		FullName:      s.FullName,
		Phone:         s.Phone,
		Wilaya:        s.WilayaNameAr,
		Baladiya:      s.BaladiyaNameAr,
		WatchLabel:    order.WatchLabel(s.SelectedWatchID),
		DeliveryLabel: order.DeliveryLabel(s.DeliveryOption),
		TotalDisplay:  order.FormatTotal(s.Total),
		Notes:         notes,
		Status:        StatusNew,

		WatchID:       s.SelectedWatchID,
		TotalAmount:   s.Total,
		CreatedAtUnix: now.Unix(),
	}
}
