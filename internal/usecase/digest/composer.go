package digest

import "github.com/am-small-projects/reddit-newsletter/internal/domain"

// Compose собирает дайджест для одного получателя из уже отранжированного
// контента. Чистая функция: без I/O, детерминирована при одинаковых входах.
func Compose(recipient domain.Recipient, channels []domain.ChannelContent) domain.DigestPayload {
	copied := make([]domain.ChannelContent, len(channels))
	for i, ch := range channels {
		copied[i] = domain.ChannelContent{
			Channel: ch.Channel,
			Items:   append([]domain.ContentItem(nil), ch.Items...),
		}
	}
	return domain.DigestPayload{Recipient: recipient, Channels: copied}
}
