package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/config"
	"github.com/spec-kit/sla-compliance-service/internal/events"
)

// NotifierService logs engine events and forwards them to the webhook the
// external fan-out system listens on. Delivery itself lives outside this
// service; this is the attachment point.
type NotifierService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotifierService creates the service.
func NewNotifierService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotifierService {
	return &NotifierService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotifierService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSLABreachDetected, n.handleBreachDetected)
	n.dispatcher.Subscribe(events.EventViolationRecorded, n.handleViolationRecorded)
	n.dispatcher.Subscribe(events.EventSLACacheRefreshed, n.handleCacheRefreshed)
}

func (n *NotifierService) handleBreachDetected(ctx context.Context, event events.Event) error {
	n.logger.Info("SLABreachDetected", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotifierService) handleViolationRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("ViolationRecorded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotifierService) handleCacheRefreshed(_ context.Context, event events.Event) error {
	n.logger.Debug("SLACacheRefreshed", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotifierService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
