package auth_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-user-auth"
)

// MockUserFinder implements auth.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// MockIdentity implements auth.Identity
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string       { return m.Called().String(0) }
func (m *MockIdentity) Username() string { return m.Called().String(0) }
func (m *MockIdentity) Email() string    { return m.Called().String(0) }
func (m *MockIdentity) Role() string     { return m.Called().String(0) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// recordingLogger keeps debug messages with their key/value pairs
type recordingLogger struct {
	nopLogger
	mu      sync.Mutex
	debug   []string
	entries [][]any
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, msg)
	l.entries = append(l.entries, args)
}

var errDiskFull = errors.New("no space left on device")

// memStore is an in-memory DocumentStore that can be told to fail saves
type memStore struct {
	mu       sync.Mutex
	doc      auth.Collection
	failSave bool
	saves    int
}

func newMemStore(users ...auth.User) *memStore {
	c := auth.NewCollection()
	c.Users = append(c.Users, users...)
	c.Normalize()
	return &memStore{doc: c}
}

func (s *memStore) Load(context.Context) auth.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *memStore) Save(_ context.Context, c auth.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errDiskFull
	}
	s.saves++
	s.doc = c.Clone()
	return nil
}

func (s *memStore) setFailSave(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = v
}

func (s *memStore) stored() auth.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

type testConfig struct {
	key    string
	method string
	ttl    time.Duration
	issuer string
}

func newTestConfig() testConfig {
	return testConfig{key: "test-signing-key", ttl: time.Hour}
}

func (c testConfig) GetSigningKey() string      { return c.key }
func (c testConfig) GetContextKey() string      { return auth.DefaultContextKey }
func (c testConfig) GetTokenTTL() time.Duration { return c.ttl }
func (c testConfig) GetTokenLookup() string     { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string      { return "Bearer" }
func (c testConfig) GetIssuer() string          { return c.issuer }

func (c testConfig) GetSigningMethod() string {
	if c.method == "" {
		return "HS256"
	}
	return c.method
}

// newRepo returns a repository manager over a fresh memStore
func newRepo(users ...auth.User) (auth.RepositoryManager, *memStore) {
	store := newMemStore(users...)
	return auth.NewRepositoryManager(context.Background(), store, auth.WithManagerLogger(nopLogger{})), store
}

// mustHash hashes pw with the production cost
func mustHash(pw string) string {
	h, err := auth.HashPassword(pw)
	if err != nil {
		panic(err)
	}
	return h
}
