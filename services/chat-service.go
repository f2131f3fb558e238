package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultMessageLimit = 50
	maxMessageLength    = 2000
)

// ChatService is the per-team message board.
type ChatService struct {
	messages MessageStore
	teams    TeamStore
	now      func() time.Time
}

func NewChatService(messages MessageStore, teams TeamStore) *ChatService {
	return &ChatService{messages: messages, teams: teams, now: time.Now}
}

func (s *ChatService) authorize(ctx context.Context, actor Actor, teamID primitive.ObjectID) error {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("team %s: %w", teamID.Hex(), err)
	}
	if !actor.IsAdmin() && !team.HasMember(actor.ID) && !team.HasManager(actor.ID) {
		return ErrForbidden
	}
	return nil
}

func (s *ChatService) PostMessage(ctx context.Context, actor Actor, teamID primitive.ObjectID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationf("message text is required")
	}
	if len(text) > maxMessageLength {
		return nil, validationf("message exceeds %d characters", maxMessageLength)
	}
	if err := s.authorize(ctx, actor, teamID); err != nil {
		return nil, err
	}
	message := &models.Message{
		ID:         primitive.NewObjectID(),
		TeamID:     teamID,
		SenderID:   actor.ID,
		SenderName: actor.DisplayName(),
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return message, nil
}

func (s *ChatService) ListMessages(ctx context.Context, actor Actor, teamID primitive.ObjectID, limit int64) ([]models.Message, error) {
	if err := s.authorize(ctx, actor, teamID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultMessageLimit
	}
	messages, err := s.messages.ListByTeam(ctx, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
