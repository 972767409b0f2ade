package digest

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
)

// Aggregator собирает топ постов по набору каналов.
type Aggregator struct {
	provider domain.ContentProvider
	log      zerolog.Logger
}

// NewAggregator создаёт агрегатор контента.
func NewAggregator(provider domain.ContentProvider, logger zerolog.Logger) *Aggregator {
	return &Aggregator{provider: provider, log: logger}
}

// FetchTopItems запрашивает у провайдера топ постов для каждого канала.
// Отказ одного канала не прерывает агрегацию остальных: такой канал
// получает пустой список, а ошибка уходит в лог и метрики.
// Порядок каналов в результате повторяет порядок аргумента.
func (a *Aggregator) FetchTopItems(ctx context.Context, channels []domain.Channel, countPerChannel int) []domain.ChannelContent {
	result := make([]domain.ChannelContent, 0, len(channels))
	for _, ch := range channels {
		items, err := a.provider.FetchTop(ctx, ch.SourceURL, countPerChannel)
		if err != nil {
			a.log.Error().Err(err).Str("channel", ch.SourceURL).Msg("aggregator: канал недоступен, дайджест будет без него")
			metrics.ContentFetchErrors.WithLabelValues(ch.SourceURL).Inc()
			result = append(result, domain.ChannelContent{Channel: ch, Items: nil})
			continue
		}
		result = append(result, domain.ChannelContent{Channel: ch, Items: rankItems(items, countPerChannel)})
	}
	return result
}

// rankItems сортирует посты по убыванию score. Сортировка стабильная:
// при равных score сохраняется порядок, выданный провайдером.
func rankItems(items []domain.ContentItem, limit int) []domain.ContentItem {
	ranked := append([]domain.ContentItem(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
