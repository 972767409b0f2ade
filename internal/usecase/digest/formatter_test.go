package digest

import (
	"strings"
	"testing"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

func samplePayload() domain.DigestPayload {
	return domain.DigestPayload{
		Recipient: domain.Recipient{Email: "a@example.com", Timezone: "America/Denver"},
		Channels: []domain.ChannelContent{
			{
				Channel: domain.Channel{Type: "Tech", SourceURL: "r/technology"},
				Items: []domain.ContentItem{
					{Title: "AI <breakthrough>", URL: "https://reddit.com/r/technology/1", Author: "alice", Score: 9},
				},
			},
			{
				Channel: domain.Channel{Type: "Go", SourceURL: "r/golang"},
			},
		},
	}
}

func TestFormatHTMLEscapesAndLinks(t *testing.T) {
	html := FormatHTML(samplePayload())

	if !strings.Contains(html, "<h3>Tech</h3>") {
		t.Fatalf("ожидали секцию канала, получили:\n%s", html)
	}
	if !strings.Contains(html, "AI &lt;breakthrough&gt;") {
		t.Fatalf("заголовок должен экранироваться, получили:\n%s", html)
	}
	if !strings.Contains(html, `<a href="https://reddit.com/r/technology/1">`) {
		t.Fatalf("ожидали ссылку на пост, получили:\n%s", html)
	}
	if !strings.Contains(html, "No fresh posts today") {
		t.Fatalf("пустой канал должен быть отмечен, получили:\n%s", html)
	}
}

func TestFormatTextListsPosts(t *testing.T) {
	text := FormatText(samplePayload())

	if !strings.Contains(text, "AI <breakthrough> — alice") {
		t.Fatalf("ожидали пост с автором, получили:\n%s", text)
	}
	if !strings.Contains(text, "https://reddit.com/r/technology/1") {
		t.Fatalf("ожидали ссылку, получили:\n%s", text)
	}
}

func TestFormattersAreDeterministic(t *testing.T) {
	payload := samplePayload()
	if FormatHTML(payload) != FormatHTML(payload) {
		t.Fatalf("HTML-представление должно быть детерминированным")
	}
	if FormatText(payload) != FormatText(payload) {
		t.Fatalf("текстовое представление должно быть детерминированным")
	}
}
