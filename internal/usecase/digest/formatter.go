package digest

import (
	"fmt"
	"html"
	"strings"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
)

// FormatSubject формирует тему письма.
func FormatSubject(date string) string {
	return fmt.Sprintf("Your daily Reddit digest — %s", date)
}

// FormatHTML формирует HTML-представление дайджеста.
func FormatHTML(payload domain.DigestPayload) string {
	var builder strings.Builder
	builder.WriteString("<h2>Good morning!</h2>\n")
	builder.WriteString("<p>Here are today's top posts from your favorite channels.</p>\n")

	for _, ch := range payload.Channels {
		builder.WriteString("<h3>" + escapeHTML(channelTitle(ch.Channel)) + "</h3>\n")
		if len(ch.Items) == 0 {
			builder.WriteString("<p><i>No fresh posts today.</i></p>\n")
			continue
		}
		builder.WriteString("<ul>\n")
		for _, item := range ch.Items {
			builder.WriteString("<li>")
			title := escapeHTML(item.Title)
			if url := strings.TrimSpace(item.URL); url != "" {
				builder.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(url), title))
			} else {
				builder.WriteString(title)
			}
			if author := strings.TrimSpace(item.Author); author != "" {
				builder.WriteString(" — " + escapeHTML(author))
			}
			builder.WriteString("</li>\n")
		}
		builder.WriteString("</ul>\n")
	}

	return strings.TrimSpace(builder.String())
}

// FormatText формирует текстовую версию дайджеста.
func FormatText(payload domain.DigestPayload) string {
	var builder strings.Builder
	builder.WriteString("Good morning!\n")
	builder.WriteString("Here are today's top posts from your favorite channels.\n")

	for _, ch := range payload.Channels {
		builder.WriteString("\n" + channelTitle(ch.Channel) + "\n")
		if len(ch.Items) == 0 {
			builder.WriteString("  (no fresh posts today)\n")
			continue
		}
		for _, item := range ch.Items {
			builder.WriteString("  - " + item.Title)
			if author := strings.TrimSpace(item.Author); author != "" {
				builder.WriteString(" — " + author)
			}
			if url := strings.TrimSpace(item.URL); url != "" {
				builder.WriteString("\n    " + url)
			}
			builder.WriteString("\n")
		}
	}

	return strings.TrimSpace(builder.String())
}

func channelTitle(ch domain.Channel) string {
	if t := strings.TrimSpace(ch.Type); t != "" {
		return t
	}
	return ch.SourceURL
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
