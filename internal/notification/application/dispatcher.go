package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// Dispatcher lanza los intentos de entrega de una notificación, un canal por
// goroutine. Es fire-and-forget respecto al llamante: ningún canal bloquea a
// otro ni a la ingesta del siguiente evento. Cada intento lleva su propio
// deadline para que una llamada colgada no deje la goroutine viva para
// siempre, y su resultado queda registrado con tiempos de inicio y fin.
type Dispatcher struct {
	senders     map[domain.Channel]domain.ChannelSender
	contacts    domain.ContactResolver
	deliveryLog domain.DeliveryLogRepository
	timeout     time.Duration
	sem         chan struct{}
	wg          sync.WaitGroup
	log         *zap.Logger
}

func NewDispatcher(
	senders []domain.ChannelSender,
	contacts domain.ContactResolver,
	deliveryLog domain.DeliveryLogRepository,
	timeout time.Duration,
	maxInFlight int,
	log *zap.Logger,
) *Dispatcher {
	byChannel := make(map[domain.Channel]domain.ChannelSender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxInFlight <= 0 {
		maxInFlight = 32
	}
	return &Dispatcher{
		senders:     byChannel,
		contacts:    contacts,
		deliveryLog: deliveryLog,
		timeout:     timeout,
		sem:         make(chan struct{}, maxInFlight),
		log:         log,
	}
}

// Dispatch lanza un intento independiente por cada canal aplicable al tipo
// de la notificación y retorna sin esperar ninguno.
func (d *Dispatcher) Dispatch(n *domain.Notification) {
	for _, ch := range domain.ChannelsFor(n.Type) {
		sender, ok := d.senders[ch]
		if !ok {
			d.log.Error("No sender configured for channel",
				zap.String("channel", string(ch)),
				zap.String("transaction_id", n.TransactionID),
			)
			continue
		}

		dest, subject, body := d.render(n, ch)

		d.wg.Add(1)
		go d.attempt(sender, n, ch, dest, subject, body)
	}
}

// Close espera a que terminen los intentos en vuelo. Pensado para el
// apagado ordenado y para los tests.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}

// render resuelve destino y cuerpo por canal. El SMS recorta el contenido a
// SMSMaxLen con un corte seguro que nunca excede la longitud del original.
func (d *Dispatcher) render(n *domain.Notification, ch domain.Channel) (dest, subject, body string) {
	subject = n.Subject
	body = n.Content
	switch ch {
	case domain.ChannelEmail:
		dest = d.contacts.EmailFor(n.UserID)
	case domain.ChannelSMS:
		dest = d.contacts.PhoneFor(n.UserID)
		body = domain.Truncate(n.Content, domain.SMSMaxLen)
	case domain.ChannelPush:
		dest = d.contacts.PushTokenFor(n.UserID)
	}
	return dest, subject, body
}

func (d *Dispatcher) attempt(sender domain.ChannelSender, n *domain.Notification, ch domain.Channel, dest, subject, body string) {
	defer d.wg.Done()

	d.sem <- struct{}{}
	defer func() { <-d.sem }()

	// context.Background() deliberadamente: la entrega no se cancela aunque
	// la ingesta siga adelante; el deadline por intento es la única cota.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	started := time.Now().UTC()
	err := sender.Send(ctx, dest, subject, body)
	finished := time.Now().UTC()

	attempt := domain.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: n.NotificationID,
		TransactionID:  n.TransactionID,
		UserID:         n.UserID,
		Channel:        ch,
		Destination:    dest,
		StartedAt:      started,
		FinishedAt:     finished,
		Success:        err == nil,
	}

	if err != nil {
		attempt.Cause = err.Error()
		d.log.Error("Delivery attempt failed",
			zap.String("channel", string(ch)),
			zap.String("transaction_id", n.TransactionID),
			zap.Int64("elapsed_ms", attempt.Elapsed().Milliseconds()),
			zap.Error(err),
		)
	} else {
		d.log.Info("Delivery attempt succeeded",
			zap.String("channel", string(ch)),
			zap.String("transaction_id", n.TransactionID),
			zap.Int64("elapsed_ms", attempt.Elapsed().Milliseconds()),
		)
	}

	if d.deliveryLog != nil {
		logCtx, cancelLog := context.WithTimeout(context.Background(), time.Second)
		defer cancelLog()
		if err := d.deliveryLog.AppendAttempt(logCtx, attempt); err != nil {
			d.log.Warn("Failed to record delivery attempt",
				zap.String("channel", string(ch)),
				zap.String("transaction_id", n.TransactionID),
				zap.Error(err),
			)
		}
	}
}
