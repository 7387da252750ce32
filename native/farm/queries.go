package farm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Balance returns the withdrawable amount of a slot. Unknown or closed slots
// report zero, mirroring the ledger-mapping semantics callers expect.
func (e *Engine) Balance(owner common.Address, id uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	slot, ok, err := e.state.Slot(owner, id)
	if err != nil {
		return nil, err
	}
	if !ok || slot.closed() {
		return big.NewInt(0), nil
	}
	return cloneBigInt(slot.Balance), nil
}

// StakeDate returns the accrual-clock timestamp of a slot, zero for unknown or
// closed slots.
func (e *Engine) StakeDate(owner common.Address, id uint64) (int64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	slot, ok, err := e.state.Slot(owner, id)
	if err != nil {
		return 0, err
	}
	if !ok || slot.closed() {
		return 0, nil
	}
	return slot.StakeDate, nil
}

// LastStakeID returns the owner's most recently allocated stake id; zero means
// the owner has never staked.
func (e *Engine) LastStakeID(owner common.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.LastStakeID(owner)
}

// TotalBalanceOf sums the live balances across all of the owner's slots.
func (e *Engine) TotalBalanceOf(owner common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	lastID, err := e.state.LastStakeID(owner)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for id := uint64(1); id <= lastID; id++ {
		slot, ok, err := e.state.Slot(owner, id)
		if err != nil {
			return nil, err
		}
		if !ok || slot.closed() {
			continue
		}
		total.Add(total, slot.Balance)
	}
	return total, nil
}

// TotalStaked returns the sum of all live slot balances across owners.
func (e *Engine) TotalStaked() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.TotalStaked()
}

// TotalFunding returns the spendable reward pool balance.
func (e *Engine) TotalFunding() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.TotalFunding()
}

// FundingOf returns the funder's lifetime contribution; it never decreases.
func (e *Engine) FundingOf(addr common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.FundingOf(addr)
}

// StakedTokenBalance reports the staked-token holdings of an address via the
// external collaborator.
func (e *Engine) StakedTokenBalance(addr common.Address) *big.Int {
	if e == nil || e.stakedToken == nil {
		return big.NewInt(0)
	}
	return e.stakedToken.BalanceOf(addr)
}

// RewardTokenBalance reports the reward-token holdings of an address via the
// external collaborator.
func (e *Engine) RewardTokenBalance(addr common.Address) *big.Int {
	if e == nil || e.rewardToken == nil {
		return big.NewInt(0)
	}
	return e.rewardToken.BalanceOf(addr)
}
