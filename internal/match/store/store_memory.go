package store

import (
	"context"
	"sort"
	"sync"

	"liaison/internal/match/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
)

// InMemoryStore stores matches in memory for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	matches map[id.MatchID]*models.Match
}

// New constructs an empty in-memory match store.
func New() *InMemoryStore {
	return &InMemoryStore{matches: make(map[id.MatchID]*models.Match)}
}

func (s *InMemoryStore) Save(_ context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.matches {
		if existing.DeclarationID1 == match.DeclarationID1 && existing.DeclarationID2 == match.DeclarationID2 {
			return sentinel.ErrAlreadyUsed
		}
	}
	copyMatch := *match
	s.matches[match.ID] = &copyMatch
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, matchID id.MatchID) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[matchID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyMatch := *match
	return &copyMatch, nil
}

func (s *InMemoryStore) ListByDeclarations(_ context.Context, declarationIDs []id.DeclarationID) ([]*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[id.DeclarationID]struct{}, len(declarationIDs))
	for _, declarationID := range declarationIDs {
		wanted[declarationID] = struct{}{}
	}
	var listed []*models.Match
	for _, match := range s.matches {
		if _, ok := wanted[match.DeclarationID1]; ok {
			copyMatch := *match
			listed = append(listed, &copyMatch)
			continue
		}
		if _, ok := wanted[match.DeclarationID2]; ok {
			copyMatch := *match
			listed = append(listed, &copyMatch)
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed, nil
}

func (s *InMemoryStore) MarkNotified(_ context.Context, matchID id.MatchID, side models.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[matchID]
	if !ok {
		return sentinel.ErrNotFound
	}
	match.SetNotified(side)
	return nil
}

func (s *InMemoryStore) CountUnreadByDeclarations(_ context.Context, declarationIDs []id.DeclarationID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[id.DeclarationID]struct{}, len(declarationIDs))
	for _, declarationID := range declarationIDs {
		wanted[declarationID] = struct{}{}
	}
	var count int64
	for _, match := range s.matches {
		if _, ok := wanted[match.DeclarationID1]; ok && !match.User1Notified {
			count++
			continue
		}
		if _, ok := wanted[match.DeclarationID2]; ok && !match.User2Notified {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matches)), nil
}
