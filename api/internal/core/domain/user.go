package domain

import (
	"context"
	"time"
)

// UserInfo identifies a consulting client. Clients are anonymous: a generated
// nickname and a 4-digit PIN are all they hold.
type UserInfo struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	PIN       string    `json:"pin,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *UserInfo) error
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	List(ctx context.Context) ([]UserInfo, error)
	Nicknames(ctx context.Context) ([]string, error)
}
