package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

func TestSendBuildsMailRequest(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	transport := NewSendGrid(server.URL, "sg-key", "info@reddit-newsletter.com", "Reddit Newsletter")
	err := transport.Send(context.Background(), domain.OutboundEmail{
		To:       "a@example.com",
		Subject:  "digest",
		BodyHTML: "<b>hi</b>",
		BodyText: "hi",
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if gotAuth != "Bearer sg-key" {
		t.Fatalf("неверная авторизация: %s", gotAuth)
	}
	if gotPath != "/v3/mail/send" {
		t.Fatalf("неверный путь: %s", gotPath)
	}
	from, _ := gotBody["from"].(map[string]any)
	if from["email"] != "info@reddit-newsletter.com" {
		t.Fatalf("неверный отправитель: %+v", from)
	}
	if gotBody["subject"] != "digest" {
		t.Fatalf("неверная тема: %+v", gotBody["subject"])
	}
	content, _ := gotBody["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("ожидали текстовое и HTML тело, получили %+v", content)
	}
}

func TestSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	transport := NewSendGrid(server.URL, "bad", "info@reddit-newsletter.com", "")
	err := transport.Send(context.Background(), domain.OutboundEmail{To: "a@example.com"})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("ожидали ErrDeliveryFailed, получили %v", err)
	}
}
