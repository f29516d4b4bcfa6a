package messaging

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
)

const (
	EventMessageCreated = "message_created"
	MaxContentLength    = 5000
)

type MessagingService struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewMessagingService(db *gorm.DB, notifier realtime.Notifier) *MessagingService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &MessagingService{DB: db, Notifier: notifier}
}

func (s *MessagingService) contractFor(ctx context.Context, userID, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := s.DB.WithContext(ctx).First(&contract, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Contract not found")
		}
		return nil, apperr.Internal(err, "load contract")
	}
	if !contract.IsParty(userID) {
		return nil, apperr.Forbidden("Only contract parties can use this conversation")
	}
	return &contract, nil
}

// List returns the whole conversation, oldest first.
func (s *MessagingService) List(ctx context.Context, userID, contractID uuid.UUID) ([]models.Message, error) {
	if _, err := s.contractFor(ctx, userID, contractID); err != nil {
		return nil, err
	}

	var msgs []models.Message
	if err := s.DB.WithContext(ctx).Preload("Sender").
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, apperr.Internal(err, "list messages")
	}
	return msgs, nil
}

// Send stores a message and notifies both parties.
func (s *MessagingService) Send(ctx context.Context, senderID, contractID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid("Message cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, apperr.Invalid("Message is too long")
	}

	contract, err := s.contractFor(ctx, senderID, contractID)
	if err != nil {
		return nil, err
	}

	msg := models.Message{ContractID: contract.ID, SenderID: senderID, Content: content}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Internal(err, "create message")
	}

	var sender models.Profile
	if err := s.DB.WithContext(ctx).First(&sender, "id = ?", senderID).Error; err == nil {
		msg.Sender = &sender
	}

	logger.L().Debug("message sent", zap.String("contract", contract.ID.String()), zap.String("sender", senderID.String()))
	s.Notifier.Notify(ctx, realtime.Event{Type: EventMessageCreated, Data: msg}, contract.ClientID, contract.FreelancerID)
	return &msg, nil
}
