package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
)

const defaultBaseURL = "https://api.sendgrid.com"

// SendGrid отправляет письма через SendGrid v3 mail/send.
// Ответа о фактической доставке API не даёт: принятое письмо (202)
// считается переданным транспорту.
type SendGrid struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	fromName   string
}

var _ domain.Transport = (*SendGrid)(nil)

// NewSendGrid создаёт транспорт. Пустой baseURL означает боевой API.
func NewSendGrid(baseURL, apiKey, from, fromName string) *SendGrid {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &SendGrid{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
		fromName:   fromName,
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

// Send передаёт одно письмо. Любой не-2xx ответ считается ErrDeliveryFailed.
func (s *SendGrid) Send(ctx context.Context, email domain.OutboundEmail) error {
	req := mailRequest{
		Personalizations: []personalization{{To: []address{{Email: email.To}}}},
		From:             address{Email: s.from, Name: s.fromName},
		Subject:          email.Subject,
		Content: []mailContent{
			{Type: "text/plain", Value: email.BodyText},
			{Type: "text/html", Value: email.BodyHTML},
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: сериализация письма: %v", domain.ErrDeliveryFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	metrics.ObserveNetworkRequest("sendgrid", "mail_send", "mail", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: sendgrid ответил %d: %s", domain.ErrDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
