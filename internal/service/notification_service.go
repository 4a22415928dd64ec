package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/config"
	"github.com/spec-kit/intake-engine/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger.Named("notifications"),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventIntakeAutoResolved, n.handleAutoResolved)
	n.dispatcher.Subscribe(events.EventResolutionRecorded, n.handleResolutionRecorded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok {
		n.sendEmailNotificationStub(ctx, event, p.RequesterEmail)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAutoResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("IntakeAutoResolved", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.IntakeAutoResolvedPayload); ok {
		n.sendEmailNotificationStub(ctx, event, p.RequesterEmail)
	}
	return nil
}

func (n *NotificationService) handleResolutionRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("ResolutionRecorded", zap.String("reference", event.Reference), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || strings.TrimSpace(to) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("reference", event.Reference),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("reference", event.Reference),
		zap.String("event_type", string(event.Type)))
}
