package infra

import (
	"sync"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
)

type memUserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	byEmail map[string]int64
	now     func() time.Time
}

// NewMemUserRepo builds the in-memory account store. It mirrors the pg
// repo's conditional-update semantics so both stay interchangeable; tests
// inject a fake clock to drive PINs past expiry.
func NewMemUserRepo(now func() time.Time) domain.UserRepo {
	if now == nil {
		now = time.Now
	}
	return &memUserRepo{
		nextID:  1,
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
		now:     now,
	}
}

func (r *memUserRepo) Create(p domain.CreateUserParams) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[p.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	u := &domain.User{
		ID:           r.nextID,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		OTPEnabled:   p.OTPEnabled,
		Active:       p.Active,
		LastAccess:   r.now().UTC(),
	}
	if p.TOTPSecret != "" {
		s := p.TOTPSecret
		u.TOTPSecret = &s
	}
	r.users[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.nextID++
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *memUserRepo) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *memUserRepo) ConfigurePin(email, pinHash string, createdAt, expiresAt time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil || !u.Active || !u.OTPEnabled || domain.HasLivePin(u, r.now()) {
		return nil, domain.ErrPinRejected
	}
	u.PinHash = &pinHash
	u.PinEnabled = true
	u.PinUsed = false
	u.PinCreatedAt = &createdAt
	u.PinExpiresAt = &expiresAt
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindWithLivePin(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u := r.lookup(email)
	if u == nil || !domain.HasLivePin(u, r.now()) {
		return nil, domain.ErrNoLivePin
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ConsumePin(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil || !domain.HasLivePin(u, r.now()) {
		return domain.ErrNoLivePin
	}
	u.PinUsed = true
	u.PinEnabled = false
	return nil
}

func (r *memUserRepo) SweepExpiredOrUsedPins() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var n int64
	for _, u := range r.users {
		if u.PinHash == nil {
			continue
		}
		expired := u.PinExpiresAt != nil && !u.PinExpiresAt.After(now)
		if expired || u.PinUsed {
			u.PinHash = nil
			u.PinExpiresAt = nil
			u.PinCreatedAt = nil
			u.PinUsed = false
			u.PinEnabled = false
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) UpdatePassword(email, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil {
		return domain.ErrNotFound
	}
	u.PasswordHash = newHash
	return nil
}

func (r *memUserRepo) TouchLastAccess(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil {
		return domain.ErrNotFound
	}
	u.LastAccess = r.now().UTC()
	return nil
}

func (r *memUserRepo) UpdateLocation(email, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil {
		return domain.ErrNotFound
	}
	u.Location = &location
	return nil
}

func (r *memUserRepo) SetSessionActive(email string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.lookup(email)
	if u == nil {
		return domain.ErrNotFound
	}
	u.SessionActive = active
	return nil
}

func (r *memUserRepo) lookup(email string) *domain.User {
	id, ok := r.byEmail[email]
	if !ok {
		return nil
	}
	return r.users[id]
}
