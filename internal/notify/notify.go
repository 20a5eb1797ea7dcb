// Package notify delivers fire-and-forget operator notifications. Failures
// are logged, never retried, and never surfaced to the user as a blocking
// error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// TransferEvent is the structured payload for a portal flash notification.
type TransferEvent struct {
	Product    string  `json:"product"`
	Wallet     string  `json:"wallet"`
	Amount     float64 `json:"amount"`
	Asset      string  `json:"asset"`
	Network    string  `json:"network,omitempty"`
	LicenseKey string  `json:"license_key"`
	Time       string  `json:"time"`
}

// CheckoutEvent is the structured payload for a completed checkout.
type CheckoutEvent struct {
	TransactionID string  `json:"transaction_id"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"item_count"`
	Method        string  `json:"method"`
	Time          string  `json:"time"`
}

// Notifier posts events to an external operator channel. Best effort only.
type Notifier interface {
	NotifyTransfer(ctx context.Context, ev TransferEvent)
	NotifyCheckout(ctx context.Context, ev CheckoutEvent)
}

// NopNotifier discards all events. Used in tests and when no bot token is
// configured.
type NopNotifier struct{}

func (NopNotifier) NotifyTransfer(context.Context, TransferEvent) {}
func (NopNotifier) NotifyCheckout(context.Context, CheckoutEvent) {}

// TelegramNotifier posts Markdown messages to the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
	logger   *slog.Logger
}

// NewTelegramNotifier returns a notifier for the given bot credentials.
func NewTelegramNotifier(botToken, chatID string, timeout time.Duration, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  "https://api.telegram.org",
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With(slog.String("component", "notify.telegram")),
	}
}

// NotifyTransfer posts the flash details to the operator chat.
func (t *TelegramNotifier) NotifyTransfer(ctx context.Context, ev TransferEvent) {
	msg := fmt.Sprintf(
		"🚀 *NEW QUANTUM FLASH INITIATED*\n-------------------------------\n"+
			"📦 *Product:* %s\n🔑 *License:* `%s`\n💰 *Amount:* %.2f %s\n"+
			"🏦 *Wallet:* `%s`\n🕒 *Time:* %s\n-------------------------------\n"+
			"_Status: Processing in Dimensional Tunnel..._",
		ev.Product, ev.LicenseKey, ev.Amount, ev.Asset, ev.Wallet, ev.Time)
	t.send(ctx, msg)
}

// NotifyCheckout posts the checkout summary to the operator chat.
func (t *TelegramNotifier) NotifyCheckout(ctx context.Context, ev CheckoutEvent) {
	msg := fmt.Sprintf(
		"🛒 *CHECKOUT COMPLETED*\n-------------------------------\n"+
			"🧾 *Transaction:* `%s`\n💵 *Total:* $%.2f (%d items)\n"+
			"🌐 *Bridge:* %s\n🕒 *Time:* %s",
		ev.TransactionID, ev.Total, ev.ItemCount, ev.Method, ev.Time)
	t.send(ctx, msg)
}

func (t *TelegramNotifier) send(ctx context.Context, text string) {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		t.logger.Error("failed to encode notification", slog.String("error", err.Error()))
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.logger.Error("failed to build notification request", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("notification delivery failed", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Warn("notification rejected",
			slog.Int("status", resp.StatusCode))
		return
	}
	t.logger.Debug("notification delivered")
}
