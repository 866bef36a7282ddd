package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. Callers always get
// copies.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.Account
	byUsername map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.Account),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[account.Username]; exists {
		return nil, ErrUsernameTaken
	}

	now := m.now()
	account.ID = uuid.NewString()
	account.Active = true
	account.CreatedAt = now
	account.UpdatedAt = now

	cp := *account
	m.byID[cp.ID] = &cp
	m.byUsername[cp.Username] = cp.ID
	return account, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byID[id]
	if !ok || a.Deleted {
		return nil, common.ErrorNotFound
	}
	return copyAccount(a), nil
}

func (m *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	id, ok := m.byUsername[username]
	m.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryRepository) UpdateSignAt(_ context.Context, id string, at time.Time) error {
	return m.update(id, func(a *models.Account) {
		a.SignAt = &at
	})
}

func (m *MemoryRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return m.update(id, func(a *models.Account) {
		a.PreviousPassword = a.Password
		a.Password = hash
	})
}

func (m *MemoryRepository) UpdateProfile(_ context.Context, id, nickname string, gender models.Gender) error {
	return m.update(id, func(a *models.Account) {
		a.Nickname = nickname
		a.Gender = gender
	})
}

func (m *MemoryRepository) Withdraw(_ context.Context, id string, at time.Time) error {
	return m.update(id, func(a *models.Account) {
		a.Deleted = true
		a.Active = false
		a.WithdrawAt = &at
	})
}

func (m *MemoryRepository) update(id string, fn func(*models.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok || a.Deleted {
		return common.ErrorNotFound
	}
	fn(a)
	a.UpdatedAt = m.now()
	return nil
}

func copyAccount(a *models.Account) *models.Account {
	cp := *a
	if a.SignAt != nil {
		t := *a.SignAt
		cp.SignAt = &t
	}
	if a.WithdrawAt != nil {
		t := *a.WithdrawAt
		cp.WithdrawAt = &t
	}
	return &cp
}
