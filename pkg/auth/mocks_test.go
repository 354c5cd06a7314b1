package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

func (m *MockUserStore) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAccountStore is a mock implementation of AccountStore.
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Create(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) GetBySubject(ctx context.Context, provider, subject string) (*Account, error) {
	args := m.Called(ctx, provider, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStore) UpdateTokens(ctx context.Context, provider, subject, accessToken, refreshToken string, expiresAt time.Time) error {
	args := m.Called(ctx, provider, subject, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}

// fakeUserStore is an in-memory UserStore used by end-to-end gateway tests
// where mock choreography would obscure the scenario.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*User
	emails map[string]uuid.UUID
	hashes map[uuid.UUID][]byte
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[uuid.UUID]*User),
		emails: make(map[string]uuid.UUID),
		hashes: make(map[uuid.UUID][]byte),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.emails[user.Email]; exists {
		return ErrEmailAlreadyExists
	}
	copied := *user
	f.users[user.ID] = &copied
	f.emails[user.Email] = user.ID
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *f.users[id]
	return &copied, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Roles != nil {
		user.Roles = *update.Roles
	}
	if update.IsVerified != nil {
		user.IsVerified = *update.IsVerified
	}
	user.UpdatedAt = time.Now().UTC()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user, ok := f.users[id]; ok {
		delete(f.emails, user.Email)
		delete(f.users, id)
		delete(f.hashes, id)
	}
	return nil
}

func (f *fakeUserStore) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[userID]; !ok {
		return ErrUserNotFound
	}
	f.hashes[userID] = hash
	return nil
}

func (f *fakeUserStore) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hash, ok := f.hashes[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return hash, nil
}

// fakeAccountStore is an in-memory AccountStore for end-to-end tests.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*Account)}
}

func accountKey(provider, subject string) string {
	return provider + "/" + subject
}

func (f *fakeAccountStore) Create(ctx context.Context, account *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := accountKey(account.Provider, account.Subject)
	if _, exists := f.accounts[key]; exists {
		return ErrAccountExists
	}
	copied := *account
	f.accounts[key] = &copied
	return nil
}

func (f *fakeAccountStore) GetBySubject(ctx context.Context, provider, subject string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[accountKey(provider, subject)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountStore) UpdateTokens(ctx context.Context, provider, subject, accessToken, refreshToken string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[accountKey(provider, subject)]
	if !ok {
		return ErrAccountNotFound
	}
	account.AccessToken = accessToken
	account.RefreshToken = refreshToken
	account.ExpiresAt = expiresAt
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// stubAdapter is a ProviderAdapter whose exchange result is fixed up front.
type stubAdapter struct {
	id       string
	identity ExternalIdentity
	err      error
}

func (s *stubAdapter) ProviderID() string { return s.id }

func (s *stubAdapter) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (s *stubAdapter) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	if s.err != nil {
		return ExternalIdentity{}, s.err
	}
	return s.identity, nil
}
