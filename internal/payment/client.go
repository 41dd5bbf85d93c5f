package payment

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 15 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// send performs req and decodes a 2xx JSON body into out.
func send(client *http.Client, req *http.Request, provider string, out any) error {
	log := logger.FromCtx(req.Context()).With(
		zap.String("layer", "payment"),
		zap.String("provider", provider),
		zap.String("url", req.URL.String()),
	)

	log.Info("sending payment request")

	resp, err := client.Do(req)
	if err != nil {
		log.Error("payment request failed", zap.Error(err))
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response body", zap.Error(err))
		return &transportError{err: fmt.Errorf("failed to read %s response: %w", provider, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("provider returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return &HTTPError{Provider: provider, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("failed decoding provider response", zap.Error(err))
		return fmt.Errorf("decode %s response: %w", provider, err)
	}

	return nil
}
