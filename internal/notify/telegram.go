package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TelegramSender posts the order summary to a fixed chat through the bot
// API. The HTTP status alone is not trusted: the response body's ok flag
// decides success, and the description explains failures like an invalid
// chat id.
type TelegramSender struct {
	BotToken string
	ChatID   string

	// BaseURL is overridable for tests; defaults to the public API.
	BaseURL string
	Client  *http.Client
}

func NewTelegramSender(botToken, chatID string) *TelegramSender {
	return &TelegramSender{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  "https://api.telegram.org",
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, n Notice) error {
	payload := map[string]string{
		"chat_id":    s.ChatID,
		"text":       telegramText(n),
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.BaseURL, s.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}
	return nil
}

func telegramText(n Notice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *طلب جديد #%d*\n\n", n.RowNum)
	fmt.Fprintf(&b, "👤 *الاسم:* %s\n", n.Row.FullName)
	fmt.Fprintf(&b, "📱 *الهاتف:* %s\n", n.Row.Phone)
	fmt.Fprintf(&b, "📍 *العنوان:* %s, %s\n", n.Row.Wilaya, n.Row.Baladiya)
	fmt.Fprintf(&b, "⌚ *الساعة:* %s\n", n.Row.WatchLabel)
	fmt.Fprintf(&b, "🚚 *التوصيل:* %s\n", n.Row.DeliveryLabel)
	fmt.Fprintf(&b, "💰 *المبلغ:* %s\n", n.Row.TotalDisplay)
	if n.Row.Notes != "" && n.Row.Notes != "—" {
		fmt.Fprintf(&b, "📝 *ملاحظات:* %s\n", n.Row.Notes)
	}
	fmt.Fprintf(&b, "\n⏰ *الوقت:* %s", n.Row.Timestamp)
	if n.SheetURL != "" {
		fmt.Fprintf(&b, "\n\n📊 [عرض الجدول الكامل](%s)", n.SheetURL)
	}
	return b.String()
}
