package nftfarm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PrincipalOf returns the raw deposited amount, exclusive of interest.
func (e *Engine) PrincipalOf(owner common.Address) (*big.Int, error) {
	acct, err := e.account(owner)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acct.Principal), nil
}

// BalanceOf returns the withdrawable amount as of the last rollup. It does not
// advance the accrual clock; use TotalAPYOf and the calculator to project.
func (e *Engine) BalanceOf(owner common.Address) (*big.Int, error) {
	acct, err := e.account(owner)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acct.Balance), nil
}

// StakeDateOf returns the owner's accrual-clock timestamp, zero when nothing
// is staked.
func (e *Engine) StakeDateOf(owner common.Address) (int64, error) {
	acct, err := e.account(owner)
	if err != nil {
		return 0, err
	}
	return acct.StakeDate, nil
}

// TotalAPYOf returns the owner's effective rate: zero while nothing is staked,
// otherwise base APY plus every staked booster's contribution.
func (e *Engine) TotalAPYOf(owner common.Address) (uint64, error) {
	acct, err := e.account(owner)
	if err != nil {
		return 0, err
	}
	return e.totalAPY(owner, acct)
}

// BoosterIDsOf lists the owner's staked booster types in first-insertion
// order.
func (e *Engine) BoosterIDsOf(owner common.Address) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	ids, err := e.state.BoosterIDs(owner)
	if err != nil {
		return nil, err
	}
	return append([]uint64(nil), ids...), nil
}

// BoosterCountOf returns the staked unit count for one booster type.
func (e *Engine) BoosterCountOf(owner common.Address, typeID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.BoosterCount(owner, typeID)
}

// IsBoosterStaked reports whether the owner has any units of a type staked.
func (e *Engine) IsBoosterStaked(owner common.Address, typeID uint64) (bool, error) {
	count, err := e.BoosterCountOf(owner, typeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// APYByTokenID returns the configured additive rate of a booster type, zero
// when the type is not whitelisted.
func (e *Engine) APYByTokenID(typeID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.APYByTokenID(typeID)
}

// TotalStaked returns the sum of all principals across owners.
func (e *Engine) TotalStaked() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.TotalStaked()
}

// TotalNFTStaked returns the total staked booster units across owners and
// types.
func (e *Engine) TotalNFTStaked() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.TotalNFTStaked()
}

// TotalFunding returns the spendable reward pool balance.
func (e *Engine) TotalFunding() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.TotalFunding()
}

// FundingOf returns the funder's lifetime contribution.
func (e *Engine) FundingOf(addr common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.FundingOf(addr)
}

func (e *Engine) account(owner common.Address) (*Account, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	acct, err := e.state.Account(owner)
	if err != nil {
		return nil, err
	}
	return acct.Clone(), nil
}
