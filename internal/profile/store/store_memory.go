package store

import (
	"context"
	"sync"
	"time"

	"liaison/internal/profile/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
)

// InMemoryStore stores profiles in memory for tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
}

// New constructs an empty in-memory profile store.
func New() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.UserID]*models.Profile)}
}

func (s *InMemoryStore) Find(_ context.Context, ownerID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[ownerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyProfile := *profile
	return &copyProfile, nil
}

func (s *InMemoryStore) IncrementDeclarations(_ context.Context, ownerID id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.ensureLocked(ownerID, now)
	profile.TotalDeclarations++
	profile.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) IncrementAlerts(_ context.Context, ownerID id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := s.ensureLocked(ownerID, now)
	profile.TotalAlerts++
	profile.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.profiles)), nil
}

func (s *InMemoryStore) ensureLocked(ownerID id.UserID, now time.Time) *models.Profile {
	profile, ok := s.profiles[ownerID]
	if !ok {
		profile = &models.Profile{UserID: ownerID, CreatedAt: now, UpdatedAt: now}
		s.profiles[ownerID] = profile
	}
	return profile
}
