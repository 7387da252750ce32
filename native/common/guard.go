package common

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrModulePaused  = errors.New("module paused")
	ErrNotAuthorized = errors.New("not authorized")
)

// PauseView reports whether a module's mutating operations are halted.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the named module is paused. A nil view or empty
// module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// Authority answers whether an address is the configured owner of a module's
// mutable configuration.
type Authority interface {
	IsOwner(addr ethcommon.Address) bool
}

// RequireOwner rejects the call when the caller is not the module owner. A nil
// authority denies everyone; configuration must be wired explicitly.
func RequireOwner(a Authority, caller ethcommon.Address) error {
	if a == nil || !a.IsOwner(caller) {
		return ErrNotAuthorized
	}
	return nil
}
