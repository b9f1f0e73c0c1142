package store

import (
	"context"
	"sort"
	"sync"

	"liaison/internal/declaration/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
)

// InMemoryStore stores declarations in memory for tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	declarations map[id.DeclarationID]*models.Declaration
}

// New constructs an empty in-memory declaration store.
func New() *InMemoryStore {
	return &InMemoryStore{declarations: make(map[id.DeclarationID]*models.Declaration)}
}

func (s *InMemoryStore) Save(_ context.Context, declaration *models.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if declaration.Active {
		for _, existing := range s.declarations {
			if existing.Active && existing.OwnerID == declaration.OwnerID && existing.Fingerprint == declaration.Fingerprint {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	copyDecl := *declaration
	s.declarations[declaration.ID] = &copyDecl
	return nil
}

func (s *InMemoryStore) FindByOwnerAndID(_ context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*models.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	declaration, ok := s.declarations[declarationID]
	if !ok || declaration.OwnerID != ownerID {
		return nil, sentinel.ErrNotFound
	}
	copyDecl := *declaration
	return &copyDecl, nil
}

func (s *InMemoryStore) FindActiveByOwnerAndFingerprint(_ context.Context, ownerID id.UserID, fingerprint string) (*models.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, declaration := range s.declarations {
		if declaration.Active && declaration.OwnerID == ownerID && declaration.Fingerprint == fingerprint {
			copyDecl := *declaration
			return &copyDecl, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Declaration, error) {
	return s.listByOwner(ownerID, false), nil
}

func (s *InMemoryStore) ListActiveByOwner(_ context.Context, ownerID id.UserID) ([]*models.Declaration, error) {
	return s.listByOwner(ownerID, true), nil
}

func (s *InMemoryStore) listByOwner(ownerID id.UserID, activeOnly bool) []*models.Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listed []*models.Declaration
	for _, declaration := range s.declarations {
		if declaration.OwnerID != ownerID {
			continue
		}
		if activeOnly && !declaration.Active {
			continue
		}
		copyDecl := *declaration
		listed = append(listed, &copyDecl)
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed
}

func (s *InMemoryStore) ListActiveByFingerprint(_ context.Context, fingerprint string) ([]*models.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listed []*models.Declaration
	for _, declaration := range s.declarations {
		if declaration.Active && declaration.Fingerprint == fingerprint {
			copyDecl := *declaration
			listed = append(listed, &copyDecl)
		}
	}
	return listed, nil
}

func (s *InMemoryStore) Update(_ context.Context, declaration *models.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.declarations[declaration.ID]
	if !ok || existing.OwnerID != declaration.OwnerID {
		return sentinel.ErrNotFound
	}
	copyDecl := *declaration
	s.declarations[declaration.ID] = &copyDecl
	return nil
}

func (s *InMemoryStore) CountActive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, declaration := range s.declarations {
		if declaration.Active {
			count++
		}
	}
	return count, nil
}
