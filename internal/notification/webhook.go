package notification

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Client envia alertas best-effort para um webhook externo. Falhas são
// logadas, nunca propagadas para o fluxo de negócio.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// InquiryWithdrawn alerta que uma inquiry foi encerrada com proposals em
// aberto (retirada abrupta do cliente).
func (c *Client) InquiryWithdrawn(kind string, inquiryID uint, openProposals int64) {
	if c == nil || c.URL == "" {
		return
	}
	payload := map[string]any{
		"message":       "inquiry withdrawn with open proposals",
		"kind":          kind,
		"inquiryId":     inquiryID,
		"openProposals": openProposals,
	}
	body, _ := json.Marshal(payload)

	resp, err := c.HTTPClient.Post(c.URL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		slog.Warn("webhook alert failed", "error", err)
		return
	}
	defer resp.Body.Close()
}
