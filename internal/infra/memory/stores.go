package memory

import (
	"context"
	"sync"

	"quizis-session-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
type ProgressStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{sessions: make(map[string]domain.Session)}
}

func (s *ProgressStore) Get(_ context.Context, userID string) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok, nil
}

func (s *ProgressStore) Save(_ context.Context, userID string, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	return nil
}

func (s *ProgressStore) Delete(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok, nil
}

// ResultStore is an in-memory implementation of app.ResultStore.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.ResultSummary
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.ResultSummary)}
}

func (s *ResultStore) Get(_ context.Context, userID string) (domain.ResultSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[userID]
	return result, ok, nil
}

func (s *ResultStore) Save(_ context.Context, userID string, result domain.ResultSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[userID] = result
	return nil
}

func (s *ResultStore) Delete(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.results[userID]
	delete(s.results, userID)
	return ok, nil
}

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Get(_ context.Context, email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	return user, ok, nil
}

func (s *UserStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
	return nil
}
