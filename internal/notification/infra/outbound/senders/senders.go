// Package senders contiene los adaptadores de transporte por canal. Son
// implementaciones de demo que escriben en el log en lugar de llamar a un
// proveedor real (SMTP, pasarela SMS, servicio push); el contrato
// send(destino, asunto, cuerpo) es el único punto de acople con ellos.
package senders

import (
	"context"

	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
)

type EmailSender struct {
	log *zap.Logger
}

func NewEmailSender(log *zap.Logger) *EmailSender {
	return &EmailSender{log: log}
}

func (s *EmailSender) Channel() domain.Channel { return domain.ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, destination, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("📧 EMAIL NOTIFICATION",
		zap.String("to", destination),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

type SMSSender struct {
	log *zap.Logger
}

func NewSMSSender(log *zap.Logger) *SMSSender {
	return &SMSSender{log: log}
}

func (s *SMSSender) Channel() domain.Channel { return domain.ChannelSMS }

func (s *SMSSender) Send(ctx context.Context, destination, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("📱 SMS NOTIFICATION",
		zap.String("to", destination),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

type PushSender struct {
	log *zap.Logger
}

func NewPushSender(log *zap.Logger) *PushSender {
	return &PushSender{log: log}
}

func (s *PushSender) Channel() domain.Channel { return domain.ChannelPush }

func (s *PushSender) Send(ctx context.Context, destination, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("🔔 PUSH NOTIFICATION",
		zap.String("to", destination),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// Verificación estática
var (
	_ domain.ChannelSender = (*EmailSender)(nil)
	_ domain.ChannelSender = (*SMSSender)(nil)
	_ domain.ChannelSender = (*PushSender)(nil)
)
