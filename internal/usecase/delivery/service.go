package delivery

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/am-small-projects/reddit-newsletter/internal/domain"
	"github.com/am-small-projects/reddit-newsletter/internal/infra/metrics"
	"github.com/am-small-projects/reddit-newsletter/internal/usecase/digest"
)

// Dispatcher отправляет готовые дайджесты через транспорт.
type Dispatcher struct {
	transport domain.Transport
	log       zerolog.Logger
}

// NewDispatcher создаёт диспетчер доставки.
func NewDispatcher(transport domain.Transport, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, log: logger}
}

// Dispatch отправляет по одному письму на получателя. Отказ транспорта
// для одного адресата попадает в отчёт и не прерывает остальные отправки.
// Повторных попыток здесь нет, следующая попытка будет в завтрашнем цикле.
func (d *Dispatcher) Dispatch(ctx context.Context, payloads []domain.DigestPayload) domain.DeliveryReport {
	report := domain.DeliveryReport{}
	date := time.Now().UTC().Format("Jan 2, 2006")
	for _, payload := range payloads {
		email := domain.OutboundEmail{
			To:       payload.Recipient.Email,
			Subject:  digest.FormatSubject(date),
			BodyHTML: digest.FormatHTML(payload),
			BodyText: digest.FormatText(payload),
		}
		if err := d.transport.Send(ctx, email); err != nil {
			d.log.Error().Err(err).Str("recipient", payload.Recipient.Email).Str("timezone", payload.Recipient.Timezone).Msg("delivery: письмо не отправлено")
			metrics.EmailSendErrors.Inc()
			report.Failed = append(report.Failed, domain.DeliveryFailure{Recipient: payload.Recipient, Reason: err.Error()})
			continue
		}
		metrics.EmailsSent.Inc()
		report.Sent++
	}
	return report
}
