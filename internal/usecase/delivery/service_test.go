package delivery

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

type stubTransport struct {
	failFor map[string]bool
	sent    []domain.OutboundEmail
}

func (s *stubTransport) Send(_ context.Context, email domain.OutboundEmail) error {
	if s.failFor[email.To] {
		return domain.ErrDeliveryFailed
	}
	s.sent = append(s.sent, email)
	return nil
}

func payloadFor(email string) domain.DigestPayload {
	return domain.DigestPayload{
		Recipient: domain.Recipient{Email: email, Timezone: "America/Denver"},
		Channels: []domain.ChannelContent{
			{Channel: domain.Channel{Type: "Tech", SourceURL: "r/technology"}, Items: []domain.ContentItem{{Title: "post", URL: "https://reddit.com/x"}}},
		},
	}
}

func TestDispatchIsolatesRecipientFailure(t *testing.T) {
	transport := &stubTransport{failFor: map[string]bool{"r@example.com": true}}
	dispatcher := NewDispatcher(transport, zerolog.Nop())

	report := dispatcher.Dispatch(context.Background(), []domain.DigestPayload{
		payloadFor("r@example.com"),
		payloadFor("s@example.com"),
	})

	if report.Sent != 1 {
		t.Fatalf("ожидали sent=1, получили %d", report.Sent)
	}
	if len(report.Failed) != 1 || report.Failed[0].Recipient.Email != "r@example.com" {
		t.Fatalf("ожидали отказ только для r@example.com, получили %+v", report.Failed)
	}
	if len(transport.sent) != 1 || transport.sent[0].To != "s@example.com" {
		t.Fatalf("второй получатель должен получить письмо несмотря на отказ первого")
	}
}

func TestDispatchBuildsBothBodies(t *testing.T) {
	transport := &stubTransport{}
	dispatcher := NewDispatcher(transport, zerolog.Nop())

	report := dispatcher.Dispatch(context.Background(), []domain.DigestPayload{payloadFor("a@example.com")})

	if report.Sent != 1 || len(report.Failed) != 0 {
		t.Fatalf("ожидали успешную доставку, получили %+v", report)
	}
	email := transport.sent[0]
	if email.Subject == "" || email.BodyHTML == "" || email.BodyText == "" {
		t.Fatalf("письмо должно иметь тему и оба тела: %+v", email)
	}
}

func TestDispatchEmptyBatch(t *testing.T) {
	dispatcher := NewDispatcher(&stubTransport{}, zerolog.Nop())

	report := dispatcher.Dispatch(context.Background(), nil)

	if report.Sent != 0 || len(report.Failed) != 0 {
		t.Fatalf("пустая партия должна давать пустой отчёт: %+v", report)
	}
}
