package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var (
	nicknameAdjectives = []string{
		"かしこい", "やさしい", "げんきな", "しずかな", "まじめな", "ゆかいな",
		"のんびり", "きらきら", "ふわふわ", "たのもしい", "すなおな", "まっすぐな",
	}
	nicknameAnimals = []string{
		"パンダ", "ペンギン", "キツネ", "ウサギ", "コアラ", "ラッコ",
		"フクロウ", "イルカ", "リス", "ハリネズミ", "カワウソ", "シバイヌ",
	}
)

const (
	// maxNicknameAttempts stops the search once the pool is mostly exhausted.
	maxNicknameAttempts = 50
	maxIDAttempts       = 50
)

type UserService struct {
	repo  domain.UserRepository
	guard *pinGuard
	now   func() time.Time
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo, guard: newPINGuard(), now: time.Now}
}

// Register creates an anonymous client with a fresh nickname and PIN.
func (s *UserService) Register(ctx context.Context) (*domain.UserInfo, error) {
	existing, err := s.repo.Nicknames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nicknames: %w", err)
	}

	nickname, err := generateNickname(existing)
	if err != nil {
		return nil, err
	}
	pin, err := generatePIN()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.UserInfo{
		Nickname:  nickname,
		PIN:       pin,
		CreatedAt: now,
	}
	// Ids are millisecond stamps; a registration landing on a taken stamp moves
	// to the next one.
	for attempt := int64(0); attempt < maxIDAttempts; attempt++ {
		user.ID = fmt.Sprintf("user_%d", now.UnixMilli()+attempt)
		err := s.repo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("allocate user id: %w", domain.ErrAlreadyExists)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.UserInfo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.UserInfo, error) {
	return s.repo.List(ctx)
}

// VerifyPIN checks a client's PIN in constant time. Unknown users fail the same way.
// 🛡️ Failures are budgeted per user id; once the budget is spent every PIN,
// including the right one, is refused until it refills.
func (s *UserService) VerifyPIN(ctx context.Context, id, pin string) bool {
	now := s.now()
	if s.guard.Locked(id, now) {
		return false
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil || subtle.ConstantTimeCompare([]byte(user.PIN), []byte(pin)) != 1 {
		s.guard.Fail(id, now)
		return false
	}
	s.guard.Reset(id)
	return true
}

// generateNickname picks adjective+animal, retrying on collisions. After
// maxNicknameAttempts the last candidate is kept even if taken; nicknames are
// labels, not keys.
func generateNickname(existing []string) (string, error) {
	var nickname string
	for attempt := 0; attempt < maxNicknameAttempts; attempt++ {
		adj, err := pick(nicknameAdjectives)
		if err != nil {
			return "", err
		}
		animal, err := pick(nicknameAnimals)
		if err != nil {
			return "", err
		}
		nickname = adj + animal
		if !slices.Contains(existing, nickname) {
			break
		}
	}
	return nickname, nil
}

// generatePIN returns a 4-digit PIN in [1000, 9999].
func generatePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("%w: pin generation: %w", domain.ErrCryptoUnavailable, err)
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

func pick(list []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCryptoUnavailable, err)
	}
	return list[n.Int64()], nil
}
