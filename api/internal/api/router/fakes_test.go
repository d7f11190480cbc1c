package router_test

import (
	"context"
	"sync"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.UserInfo
}

func (m *memUsers) Create(_ context.Context, u *domain.UserInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) List(_ context.Context) ([]domain.UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.UserInfo
	for _, u := range m.users {
		u.PIN = ""
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Nicknames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, u := range m.users {
		out = append(out, u.Nickname)
	}
	return out, nil
}

type memConversations struct {
	mu       sync.Mutex
	data     map[string][]domain.StoredConversation
	versions map[string]int
}

func (m *memConversations) Load(_ context.Context, userID string) (*domain.StoredData, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]domain.StoredConversation{}, m.data[userID]...)
	return &domain.StoredData{Version: domain.CurrentStorageVersion, Data: cp}, m.versions[userID], nil
}

func (m *memConversations) Save(_ context.Context, userID string, data *domain.StoredData, expected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[userID] != expected {
		return domain.ErrConcurrencyConflict
	}
	m.data[userID] = append([]domain.StoredConversation{}, data.Data...)
	m.versions[userID]++
	return nil
}

type memAudit struct {
	mu      sync.Mutex
	exports []domain.ReportExport
}

func (m *memAudit) RecordExport(_ context.Context, e *domain.ReportExport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports = append(m.exports, *e)
	return nil
}

func (m *memAudit) FindByFingerprint(_ context.Context, userID, fingerprint string) (*domain.ReportExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.exports) - 1; i >= 0; i-- {
		if m.exports[i].UserID == userID && m.exports[i].Fingerprint == fingerprint {
			e := m.exports[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAudit) ListExports(_ context.Context, f domain.ExportFilter) ([]domain.ReportExport, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReportExport
	for _, e := range m.exports {
		if f.UserID == "" || e.UserID == f.UserID {
			out = append(out, e)
		}
	}
	total := len(out)
	if f.Offset >= total {
		return nil, total, nil
	}
	return out[f.Offset:], total, nil
}
