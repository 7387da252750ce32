package farm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Slot tracks one independent stake. Balance is the withdrawable amount and
// StakeDate the unix timestamp of the last balance-mutating event. A closed
// slot has both fields zeroed and never accrues or reopens; the owner's next
// stake allocates a fresh id.
type Slot struct {
	Balance   *big.Int `json:"balance"`
	StakeDate int64    `json:"stakeDate"`
}

// Clone produces a deep copy to protect internal references.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	clone := &Slot{StakeDate: s.StakeDate, Balance: big.NewInt(0)}
	if s.Balance != nil {
		clone.Balance = new(big.Int).Set(s.Balance)
	}
	return clone
}

// closed reports whether the slot has been fully unstaked.
func (s *Slot) closed() bool {
	return s == nil || s.Balance == nil || s.Balance.Sign() == 0
}

// State describes the persistence the farm engine needs from the surrounding
// storage substrate. Implementations return deep copies; the engine persists
// every mutation explicitly through the setters.
type State interface {
	Slot(owner common.Address, id uint64) (*Slot, bool, error)
	PutSlot(owner common.Address, id uint64, slot *Slot) error
	LastStakeID(owner common.Address) (uint64, error)
	SetLastStakeID(owner common.Address, id uint64) error
	TotalStaked() (*big.Int, error)
	SetTotalStaked(total *big.Int) error
	TotalFunding() (*big.Int, error)
	SetTotalFunding(total *big.Int) error
	FundingOf(addr common.Address) (*big.Int, error)
	SetFundingOf(addr common.Address, amount *big.Int) error
}
