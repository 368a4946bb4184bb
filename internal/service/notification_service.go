package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/easyevent/internal/config"
	"github.com/spec-kit/easyevent/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSubmitted, n.handleEventSubmitted)
	n.dispatcher.Subscribe(events.EventApproved, n.handleEventApproved)
	n.dispatcher.Subscribe(events.EventPublished, n.handleEventPublished)
	n.dispatcher.Subscribe(events.EnrollmentCreated, n.handleEnrollmentCreated)
	n.dispatcher.Subscribe(events.UserBanned, n.handleUserBanned)
}

func (n *NotificationService) handleEventSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("EventSubmitted", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEventApproved(ctx context.Context, event events.Event) error {
	n.logger.Info("EventApproved", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEventPublished(ctx context.Context, event events.Event) error {
	n.logger.Info("EventPublished", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEnrollmentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("EnrollmentCreated", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserBanned(ctx context.Context, event events.Event) error {
	n.logger.Info("UserBanned", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
