package digest

import (
	"reflect"
	"testing"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

func TestComposeIsDeterministic(t *testing.T) {
	recipient := domain.Recipient{Email: "a@example.com", Timezone: "America/Denver"}
	content := []domain.ChannelContent{
		{Channel: domain.Channel{Type: "Tech", SourceURL: "r/technology"}, Items: []domain.ContentItem{{Title: "one", Score: 9}, {Title: "two", Score: 5}}},
		{Channel: domain.Channel{Type: "Go", SourceURL: "r/golang"}, Items: nil},
	}

	first := Compose(recipient, content)
	second := Compose(recipient, content)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторная сборка из тех же входов должна давать идентичный результат")
	}
}

func TestComposePreservesChannelOrder(t *testing.T) {
	recipient := domain.Recipient{Email: "a@example.com"}
	content := []domain.ChannelContent{
		{Channel: domain.Channel{SourceURL: "r/first"}},
		{Channel: domain.Channel{SourceURL: "r/second"}},
		{Channel: domain.Channel{SourceURL: "r/third"}},
	}

	payload := Compose(recipient, content)

	for i, ch := range payload.Channels {
		if ch.Channel.SourceURL != content[i].Channel.SourceURL {
			t.Fatalf("порядок каналов нарушен: %+v", payload.Channels)
		}
	}
}

func TestComposeCopiesItems(t *testing.T) {
	items := []domain.ContentItem{{Title: "original", Score: 1}}
	content := []domain.ChannelContent{{Channel: domain.Channel{SourceURL: "r/x"}, Items: items}}

	payload := Compose(domain.Recipient{Email: "a@example.com"}, content)
	items[0].Title = "mutated"

	if payload.Channels[0].Items[0].Title != "original" {
		t.Fatalf("дайджест должен быть независим от исходного среза")
	}
}
