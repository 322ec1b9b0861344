package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers the order summary over SMTP to the fixed
// back-office recipient.
type EmailSender struct {
	Host      string
	Port      int
	User      string
	Password  string
	Recipient string
	FromName  string

	// send is swappable for tests; defaults to a gomail dialer.
	send func(msg *gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, recipient string) *EmailSender {
	s := &EmailSender{
		Host:      host,
		Port:      port,
		User:      user,
		Password:  password,
		Recipient: recipient,
		FromName:  "نظام الطلبات",
	}
	s.send = func(msg *gomail.Message) error {
		dialer := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
		return dialer.DialAndSend(msg)
	}
	return s
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, n Notice) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(s.User, s.FromName))
	msg.SetHeader("To", s.Recipient)
	msg.SetHeader("Subject", fmt.Sprintf("🔔 طلب جديد #%d - %s", n.RowNum, n.Row.FullName))
	msg.SetBody("text/html", emailBody(n))

	if err := s.send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func emailBody(n Notice) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding:8px;border:1px solid #ddd">%s</td><td style="padding:8px;border:1px solid #ddd">%s</td></tr>`, label, value)
	}

	table := row("الاسم", n.Row.FullName) +
		row("الهاتف", n.Row.Phone) +
		row("الولاية", n.Row.Wilaya) +
		row("البلدية", n.Row.Baladiya) +
		row("الساعة", n.Row.WatchLabel) +
		row("التوصيل", n.Row.DeliveryLabel) +
		fmt.Sprintf(`<tr><td style="padding:8px;border:1px solid #ddd">المبلغ</td><td style="padding:8px;border:1px solid #ddd;font-weight:bold;color:#0a7">%s</td></tr>`, n.Row.TotalDisplay)
	if n.Row.Notes != "" && n.Row.Notes != "—" {
		table += row("ملاحظات", n.Row.Notes)
	}

	link := ""
	if n.SheetURL != "" {
		link = fmt.Sprintf(`<p><a href="%s" style="background:#0a7;color:#fff;padding:8px 14px;text-decoration:none;border-radius:4px">فتح الجدول</a></p>`, n.SheetURL)
	}

	return fmt.Sprintf(`
      <div style="font-family:Arial;padding:16px;background:#f6f6f6;direction:rtl;text-align:right">
        <h2 style="margin-top:0">طلب جديد</h2>
        <table style="width:100%%;border-collapse:collapse;background:#fff">%s</table>
        <p style="font-size:12px;color:#666;margin-top:16px">الصف: #%d | الوقت: %s</p>
        %s
      </div>`, table, n.RowNum, n.Row.Timestamp, link)
}
