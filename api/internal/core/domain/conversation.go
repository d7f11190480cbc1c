package domain

import "context"

// CurrentStorageVersion is the schema version written by this build.
const CurrentStorageVersion = 1

type MessageAuthor string

const (
	AuthorUser MessageAuthor = "user"
	AuthorAI   MessageAuthor = "ai"
)

// AIType selects the assistant persona style.
type AIType string

const (
	AIHuman AIType = "human"
	AIDog   AIType = "dog"
)

type ChatMessage struct {
	Author MessageAuthor `json:"author" validate:"required,oneof=user ai"`
	Text   string        `json:"text" validate:"max=20000"`
}

// StoredConversation is one finished consulting session with its AI-generated summary.
type StoredConversation struct {
	ID       int64         `json:"id"`
	UserID   string        `json:"userId" validate:"required,max=100"`
	AIName   string        `json:"aiName" validate:"required,max=100"`
	AIType   AIType        `json:"aiType" validate:"required,oneof=human dog"`
	AIAvatar string        `json:"aiAvatar" validate:"max=100"` // e.g. "human_female_1", "dog_poodle_1"
	Messages []ChatMessage `json:"messages" validate:"dive"`
	Summary  string        `json:"summary" validate:"max=20000"`
	Date     string        `json:"date" validate:"required"` // RFC 3339
}

// StoredData is the versioned envelope persisted per user.
type StoredData struct {
	Version int                  `json:"version"`
	Data    []StoredConversation `json:"data"`
}

// ConversationRepository persists each user's conversation history.
type ConversationRepository interface {
	// Load returns the user's history migrated to CurrentStorageVersion along with
	// the row version used for optimistic locking (0 when nothing is stored yet).
	Load(ctx context.Context, userID string) (*StoredData, int, error)

	// Save writes the history. 🛡️ It must fail with ErrConcurrencyConflict when
	// expectedVersion no longer matches the stored row.
	Save(ctx context.Context, userID string, data *StoredData, expectedVersion int) error
}
