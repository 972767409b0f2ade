package domain

import "time"

// User описывает подписчика рассылки.
type User struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Timezone   string
	Subscribed bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Recipient описывает адресата одной доставки: email и его часовой пояс.
// Живёт только в рамках одного цикла доставки, между циклами не кэшируется.
type Recipient struct {
	Email    string
	Timezone string
}

// Channel описывает reddit-канал, добавленный в избранное.
type Channel struct {
	Type      string
	SourceURL string
}

// ContentItem представляет один пост канала от провайдера контента.
// Эфемерный: загружается заново на каждый цикл и нигде не сохраняется.
type ContentItem struct {
	Title     string
	URL       string
	Thumbnail string
	Author    string
	Score     float64
}

// ChannelContent хранит отранжированные посты одного канала.
// Порядок каналов в срезе повторяет порядок запроса, поэтому
// сборка дайджеста детерминирована.
type ChannelContent struct {
	Channel Channel
	Items   []ContentItem
}

// DigestPayload представляет собой собранный дайджест для одного получателя.
// Неизменяем после сборки, потребляется диспетчером ровно один раз.
type DigestPayload struct {
	Recipient Recipient
	Channels  []ChannelContent
}

// DeliveryFailure фиксирует отказ доставки одному получателю.
type DeliveryFailure struct {
	Recipient Recipient
	Reason    string
}

// DeliveryReport содержит итог одной рассылки по когорте.
type DeliveryReport struct {
	Sent   int
	Failed []DeliveryFailure
}

// OutboundEmail описывает письмо, готовое к передаче транспорту.
type OutboundEmail struct {
	To       string
	Subject  string
	BodyHTML string
	BodyText string
}
