// Package access provides the in-process role and pause providers the
// lottery service consults on privileged and state-mutating operations.
// Both are plain in-memory maps guarded by a RWMutex; the service treats
// them as external collaborators behind interfaces, so a deployment can
// swap in a shared store without touching the escrow logic.
package access

import (
	"context"
	"sync"

	"raffler/service"

	"github.com/google/uuid"
)

type roleKey struct {
	lotteryID uuid.UUID
	role      service.Role
	address   string
}

// RoleStore is an in-memory AccessControl implementation.
type RoleStore struct {
	mu     sync.RWMutex
	grants map[roleKey]struct{}
}

// NewRoleStore creates an empty role store
func NewRoleStore() *RoleStore {
	return &RoleStore{
		grants: make(map[roleKey]struct{}),
	}
}

func (s *RoleStore) HasRole(ctx context.Context, lotteryID uuid.UUID, role service.Role, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[roleKey{lotteryID, role, address}]
	return ok, nil
}

func (s *RoleStore) GrantRole(ctx context.Context, lotteryID uuid.UUID, role service.Role, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[roleKey{lotteryID, role, address}] = struct{}{}
	return nil
}

// PauseStore is an in-memory PauseControl implementation. Rounds are
// unpaused by default.
type PauseStore struct {
	mu     sync.RWMutex
	paused map[uuid.UUID]bool
}

// NewPauseStore creates an empty pause store
func NewPauseStore() *PauseStore {
	return &PauseStore{
		paused: make(map[uuid.UUID]bool),
	}
}

func (s *PauseStore) IsPaused(ctx context.Context, lotteryID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused[lotteryID], nil
}

func (s *PauseStore) SetPaused(ctx context.Context, lotteryID uuid.UUID, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paused {
		s.paused[lotteryID] = true
	} else {
		delete(s.paused, lotteryID)
	}
	return nil
}
