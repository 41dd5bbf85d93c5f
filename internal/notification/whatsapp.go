package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

type WhatsAppSender struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewWhatsAppSender(baseURL, username, password string) *WhatsAppSender {
	return &WhatsAppSender{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ToJID converts a stored phone (+62812..., 0812...) to a WhatsApp JID.
func ToJID(phone string) string {
	phone = strings.TrimPrefix(phone, "+")
	if strings.HasPrefix(phone, "08") {
		phone = "628" + phone[2:]
	}
	return phone + "@s.whatsapp.net"
}

func (w *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notification"),
		zap.String("order_number", msg.OrderNumber),
	)

	jsonData, err := json.Marshal(sendMessageRequest{
		Phone:   ToJID(msg.CustomerPhone),
		Message: msg.Text(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.BaseURL+"/send/message", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.Username, w.Password)

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		log.Warn("whatsapp request failed", zap.Error(err))
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		log.Warn("whatsapp returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return fmt.Errorf("whatsapp error: status %d", resp.StatusCode)
	}

	var out sendMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("whatsapp rejected message: %s", out.Message)
	}

	return nil
}
