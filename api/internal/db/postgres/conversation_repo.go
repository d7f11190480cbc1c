package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo keeps one encrypted history document per user.
// 🛡️ The document is sealed with the master key and bound to the user id, so a
// row copied onto another user fails authentication instead of leaking.
type ConversationRepo struct {
	pool   *pgxpool.Pool
	crypto domain.CryptoService
}

func NewConversationRepo(pool *pgxpool.Pool, crypto domain.CryptoService) *ConversationRepo {
	return &ConversationRepo{pool: pool, crypto: crypto}
}

func (r *ConversationRepo) Load(ctx context.Context, userID string) (*domain.StoredData, int, error) {
	const query = `
		SELECT payload, version
		FROM conversation_histories
		WHERE user_id = $1
	`

	var payload string
	var version int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			data, _ := domain.MigrateStoredData(nil)
			return data, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to query history: %w", err)
	}

	raw, err := r.crypto.Decrypt(ctx, payload, []byte(userID))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decrypt history: %w", err)
	}

	data, err := domain.MigrateStoredData(raw)
	if err != nil {
		return nil, 0, err
	}
	return data, version, nil
}

// Save writes the history under optimistic concurrency. expectedVersion 0 means
// the caller saw no row; the insert then loses to any concurrent first write.
func (r *ConversationRepo) Save(ctx context.Context, userID string, data *domain.StoredData, expectedVersion int) error {
	data.Version = domain.CurrentStorageVersion
	if data.Data == nil {
		data.Data = []domain.StoredConversation{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	payload, err := r.crypto.Encrypt(ctx, raw, []byte(userID))
	if err != nil {
		return fmt.Errorf("failed to encrypt history: %w", err)
	}

	now := time.Now().UTC()

	if expectedVersion == 0 {
		const insert = `
			INSERT INTO conversation_histories (user_id, schema_version, payload, version, updated_at)
			VALUES ($1, $2, $3, 1, $4)
			ON CONFLICT (user_id) DO NOTHING
		`
		tag, err := r.pool.Exec(ctx, insert, userID, data.Version, payload, now)
		if err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConcurrencyConflict
		}
		return nil
	}

	// 🛡️ The WHERE clause is the lock: zero rows means someone saved first.
	const update = `
		UPDATE conversation_histories SET
			schema_version = $2,
			payload = $3,
			version = version + 1,
			updated_at = $4
		WHERE user_id = $1 AND version = $5
	`
	tag, err := r.pool.Exec(ctx, update, userID, data.Version, payload, now, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}
