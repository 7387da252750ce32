// Package token defines the external asset collaborators consumed by the farm
// engines, plus in-memory ledgers implementing them for tests and local
// deployments. The engines never inspect balances directly; they only move
// value through these interfaces and treat any failure as a hard abort.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the fungible asset collaborator. Semantics follow the usual
// allowance model: TransferFrom spends the allowance the owner granted to the
// spender, Transfer moves the sender's own balance.
type Token interface {
	TransferFrom(spender, owner, recipient common.Address, amount *big.Int) error
	Transfer(sender, recipient common.Address, amount *big.Int) error
	BalanceOf(owner common.Address) *big.Int
}

// MultiToken is the non-fungible (multi-unit) asset collaborator. Transfers
// require the operator to be the owner or approved for all of the owner's
// units.
type MultiToken interface {
	SafeTransferFrom(operator, from, to common.Address, typeID, amount uint64, data []byte) error
	SafeBatchTransferFrom(operator, from, to common.Address, typeIDs, amounts []uint64, data []byte) error
	BalanceOf(owner common.Address, typeID uint64) uint64
}
