package common

import (
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// OwnerAuthority is a single-owner Authority implementation.
type OwnerAuthority struct {
	owner ethcommon.Address
}

// NewOwnerAuthority constructs an authority recognising exactly one owner.
func NewOwnerAuthority(owner ethcommon.Address) *OwnerAuthority {
	return &OwnerAuthority{owner: owner}
}

// IsOwner implements the Authority interface.
func (a *OwnerAuthority) IsOwner(addr ethcommon.Address) bool {
	if a == nil {
		return false
	}
	return a.owner == addr
}

// PauseRegistry tracks the paused flag per module and gates mutation behind an
// Authority. It satisfies PauseView for the engines it protects.
type PauseRegistry struct {
	mu        sync.RWMutex
	authority Authority
	paused    map[string]bool
}

// NewPauseRegistry constructs a registry whose Pause/Unpause operations are
// restricted to the given authority's owner.
func NewPauseRegistry(authority Authority) *PauseRegistry {
	return &PauseRegistry{
		authority: authority,
		paused:    make(map[string]bool),
	}
}

// IsPaused implements the PauseView interface.
func (r *PauseRegistry) IsPaused(module string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused[module]
}

// Pause halts the named module's mutating operations.
func (r *PauseRegistry) Pause(caller ethcommon.Address, module string) error {
	if err := RequireOwner(r.authority, caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused[module] = true
	return nil
}

// Unpause resumes the named module's mutating operations.
func (r *PauseRegistry) Unpause(caller ethcommon.Address, module string) error {
	if err := RequireOwner(r.authority, caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paused, module)
	return nil
}
