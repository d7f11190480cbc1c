package services_test

import (
	"context"
	"sort"
	"sync"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]domain.UserInfo
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{users: map[string]domain.UserInfo{}}
	for _, id := range ids {
		f.users[id] = domain.UserInfo{ID: id, Nickname: "nick-" + id, PIN: "1234"}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.UserInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]domain.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.UserInfo, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Nicknames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, u := range f.users {
		out = append(out, u.Nickname)
	}
	return out, nil
}

type fakeConversations struct {
	mu        sync.Mutex
	data      map[string][]domain.StoredConversation
	versions  map[string]int
	conflicts int // number of Save calls to reject before accepting
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{data: map[string][]domain.StoredConversation{}, versions: map[string]int{}}
}

func (f *fakeConversations) Load(_ context.Context, userID string) (*domain.StoredData, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]domain.StoredConversation{}, f.data[userID]...)
	return &domain.StoredData{Version: domain.CurrentStorageVersion, Data: cp}, f.versions[userID], nil
}

func (f *fakeConversations) Save(_ context.Context, userID string, data *domain.StoredData, expected int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		f.versions[userID]++
		return domain.ErrConcurrencyConflict
	}
	if f.versions[userID] != expected {
		return domain.ErrConcurrencyConflict
	}
	f.data[userID] = append([]domain.StoredConversation{}, data.Data...)
	f.versions[userID]++
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	exports []domain.ReportExport
	err     error
	lookups int
}

func (f *fakeAudit) RecordExport(_ context.Context, e *domain.ReportExport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exports = append(f.exports, *e)
	return nil
}

func (f *fakeAudit) FindByFingerprint(_ context.Context, userID, fingerprint string) (*domain.ReportExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for i := len(f.exports) - 1; i >= 0; i-- {
		if f.exports[i].UserID == userID && f.exports[i].Fingerprint == fingerprint {
			e := f.exports[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAudit) ListExports(_ context.Context, filter domain.ExportFilter) ([]domain.ReportExport, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.ReportExport
	for _, e := range f.exports {
		if filter.UserID == "" || e.UserID == filter.UserID {
			matched = append(matched, e)
		}
	}
	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

// failingUsers rejects every insert with a non-conflict error.
type failingUsers struct{ *fakeUsers }

func (failingUsers) Create(context.Context, *domain.UserInfo) error {
	return domain.ErrCryptoUnavailable
}
