package nftfarm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account is the single compounding slot kept per owner. Principal is the sum
// of raw deposits; Balance additionally carries interest rolled up on every
// mutating call, so Balance >= Principal always holds. A zero principal
// implies a fully zeroed account.
type Account struct {
	Principal *big.Int `json:"principal"`
	Balance   *big.Int `json:"balance"`
	StakeDate int64    `json:"stakeDate"`
}

// Clone produces a deep copy to protect internal references.
func (a *Account) Clone() *Account {
	clone := &Account{Principal: big.NewInt(0), Balance: big.NewInt(0)}
	if a == nil {
		return clone
	}
	clone.StakeDate = a.StakeDate
	if a.Principal != nil {
		clone.Principal = new(big.Int).Set(a.Principal)
	}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return clone
}

func (a *Account) staked() bool {
	return a != nil && a.Principal != nil && a.Principal.Sign() > 0
}

// State describes the persistence the NFT farm engine needs. Account reads
// return a zeroed record for owners that never staked; booster id lists keep
// first-insertion order.
type State interface {
	Account(owner common.Address) (*Account, error)
	PutAccount(owner common.Address, account *Account) error
	BoosterCount(owner common.Address, typeID uint64) (uint64, error)
	SetBoosterCount(owner common.Address, typeID, count uint64) error
	BoosterIDs(owner common.Address) ([]uint64, error)
	SetBoosterIDs(owner common.Address, ids []uint64) error
	APYByTokenID(typeID uint64) (uint64, error)
	SetAPYByTokenID(typeID, apy uint64) error
	TotalStaked() (*big.Int, error)
	SetTotalStaked(total *big.Int) error
	TotalNFTStaked() (uint64, error)
	SetTotalNFTStaked(total uint64) error
	TotalFunding() (*big.Int, error)
	SetTotalFunding(total *big.Int) error
	FundingOf(addr common.Address) (*big.Int, error)
	SetFundingOf(addr common.Address, amount *big.Int) error
}
