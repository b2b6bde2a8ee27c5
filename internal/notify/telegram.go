package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anime-watchlist/internal/models"
)

// TelegramNotifier posts activity messages to a log chat through the Bot API
type TelegramNotifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	baseURL    string
}

// NewTelegramNotifier creates a new TelegramNotifier
func NewTelegramNotifier(botToken string, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   strconv.FormatInt(chatID, 10),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.telegram.org",
	}
}

// WithBaseURL points the notifier at another Bot API endpoint
func (n *TelegramNotifier) WithBaseURL(baseURL string) *TelegramNotifier {
	n.baseURL = strings.TrimRight(baseURL, "/")
	return n
}

// telegramMessage represents the request body for sending a message
type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// telegramResponse represents the response from Telegram API
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage sends an HTML message to the log chat
func (n *TelegramNotifier) SendMessage(text string) error {
	if n.botToken == "" || n.chatID == "" || n.chatID == "0" {
		return fmt.Errorf("telegram notifier not configured: missing bot token or chat ID")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)

	msg := telegramMessage{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := n.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var telegramResp telegramResponse
	if err := json.Unmarshal(respBody, &telegramResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("telegram API error: %s", telegramResp.Description)
	}

	return nil
}

// SendAction forwards one recorded action to the log chat
func (n *TelegramNotifier) SendAction(action models.Action) error {
	return n.SendMessage(FormatAction(action))
}

// FormatAction renders an action as a log chat message
func FormatAction(action models.Action) string {
	var sb strings.Builder

	if action.Failed() {
		sb.WriteString("🔴 <b>Bot Log</b>\n")
	} else {
		sb.WriteString("🔵 <b>Bot Log</b>\n")
	}
	sb.WriteString(fmt.Sprintf("<b>User:</b> %s\n", html.EscapeString(action.Actor.String())))
	sb.WriteString(fmt.Sprintf("<b>Action:</b> %s", html.EscapeString(action.Name)))
	if action.Details != "" {
		sb.WriteString(fmt.Sprintf("\n<b>Details:</b> %s", html.EscapeString(action.Details)))
	}
	if action.Failed() {
		sb.WriteString(fmt.Sprintf("\n<b>Error:</b> %s", html.EscapeString(action.Error)))
	}
	if !action.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("\n<i>%s</i>", action.CreatedAt.Format("2006-01-02 15:04:05")))
	}

	return sb.String()
}
