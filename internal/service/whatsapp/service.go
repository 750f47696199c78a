package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/service/commands"
	client "github.com/mamadbah2/feedlot/pkg/clients/whatsapp"
)

// ErrNoManagerNumber is returned by NotifyManager when no manager number is configured.
var ErrNoManagerNumber = errors.New("whatsapp manager number is not configured")

const (
	sendTimeout      = 10 * time.Second
	unregisteredText = "This number is not registered to submit feedlot records. Ask the farm manager to add it."
)

// MessagingService describes the operations the HTTP layer and the scheduler perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	NotifyManager(ctx context.Context, message string) error
}

// Service is the WhatsApp Cloud API implementation of MessagingService.
type Service struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewService wires a new service instance.
func NewService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *Service) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}
	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

// HandleWebhook runs every inbound message in the payload and replies to its sender.
// The first failure is returned after all messages were attempted.
func (s *Service) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}
	return firstErr
}

func (s *Service) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}

	caller, ok := s.senderCaller(msg.From)
	if !ok {
		s.logger.Warn("message from unregistered sender", zap.String("from", msg.From))
		return s.send(ctx, msg.From, unregisteredText)
	}

	cmd := models.ParseCommand(text)
	reply, err := s.dispatcher.HandleCommand(ctx, caller, cmd)
	if err != nil {
		s.logger.Info("command failed",
			zap.String("command", string(cmd.Type)),
			zap.String("user_id", caller.UserID),
			zap.Error(err))
		reply = commands.ErrorReply(err)
	} else {
		s.logger.Info("command handled", zap.String("command", string(cmd.Type)), zap.String("user_id", caller.UserID))
	}

	return s.send(ctx, msg.From, reply)
}

// senderCaller resolves a registered phone number to the caller it acts as.
func (s *Service) senderCaller(phone string) (models.Caller, bool) {
	sender, ok := s.cfg.Senders[strings.TrimPrefix(phone, "+")]
	if !ok {
		return models.Caller{}, false
	}
	role, ok := models.ParseRole(sender.Role)
	if !ok {
		return models.Caller{}, false
	}
	return models.Caller{UserID: sender.UserID, Role: role}, true
}

// NotifyManager sends a message to the configured manager number.
func (s *Service) NotifyManager(ctx context.Context, message string) error {
	if s.cfg.ManagerNumber == "" {
		return ErrNoManagerNumber
	}
	return s.send(ctx, s.cfg.ManagerNumber, message)
}

func (s *Service) send(ctx context.Context, to, body string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, err := s.client.SendText(ctx, to, body); err != nil {
		return fmt.Errorf("reply to %s: %w", to, err)
	}
	return nil
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return strings.TrimSpace(msg.Text.Body)
	}
	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
		return strings.TrimSpace(msg.Interactive.ButtonReply.ID)
	}
	return ""
}
