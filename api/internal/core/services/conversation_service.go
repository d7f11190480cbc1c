package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

// maxSaveAttempts bounds the optimistic-lock retry loop for a single append.
const maxSaveAttempts = 3

type ConversationService struct {
	repo   domain.ConversationRepository
	users  domain.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewConversationService(repo domain.ConversationRepository, users domain.UserRepository, logger *slog.Logger) *ConversationService {
	return &ConversationService{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// List returns the user's stored sessions, oldest first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]domain.StoredConversation, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	data, _, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return data.Data, nil
}

// Append stores a finished session. The id is the creation time in unix millis,
// bumped if needed so ids stay strictly increasing per user.
func (s *ConversationService) Append(ctx context.Context, userID string, conv domain.StoredConversation) (*domain.StoredConversation, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	conv.UserID = userID
	if conv.Date == "" {
		conv.Date = now.Format(time.RFC3339)
	}

	for attempt := 1; ; attempt++ {
		data, version, err := s.repo.Load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}

		conv.ID = now.UnixMilli()
		if n := len(data.Data); n > 0 && data.Data[n-1].ID >= conv.ID {
			conv.ID = data.Data[n-1].ID + 1
		}
		data.Data = append(data.Data, conv)

		err = s.repo.Save(ctx, userID, data, version)
		if err == nil {
			return &conv, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) || attempt == maxSaveAttempts {
			return nil, err
		}
		s.logger.Warn("History write conflict, retrying", slog.String("user_id", userID), slog.Int("attempt", attempt))
	}
}

// Delete removes one session from the user's history.
func (s *ConversationService) Delete(ctx context.Context, userID string, conversationID int64) error {
	data, version, err := s.repo.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	kept := data.Data[:0]
	for _, c := range data.Data {
		if c.ID != conversationID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(data.Data) {
		return domain.ErrNotFound
	}
	data.Data = kept

	return s.repo.Save(ctx, userID, data, version)
}
