package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"tokenfarm/core/types"
)

const (
	TypeNFTFarmStaked          = "nftfarm.staked"
	TypeNFTFarmUnstaked        = "nftfarm.unstaked"
	TypeNFTFarmBoosterStaked   = "nftfarm.booster.staked"
	TypeNFTFarmBoosterUnstaked = "nftfarm.booster.unstaked"
	TypeNFTFarmBoosterAPYSet   = "nftfarm.booster.apy.set"
)

// NFTFarmStaked records a deposit into an owner's single compounding slot.
type NFTFarmStaked struct {
	Farm      string
	Owner     common.Address
	Amount    *big.Int
	Principal *big.Int
	Balance   *big.Int
}

func (NFTFarmStaked) EventType() string { return TypeNFTFarmStaked }

func (e NFTFarmStaked) Event() *types.Event {
	return &types.Event{
		Type: TypeNFTFarmStaked,
		Attributes: map[string]string{
			"farm":      e.Farm,
			"owner":     e.Owner.Hex(),
			"amount":    formatAmount(e.Amount),
			"principal": formatAmount(e.Principal),
			"balance":   formatAmount(e.Balance),
		},
	}
}

// NFTFarmUnstaked records the full exit of an owner's slot. Interest beyond
// principal is forfeited when the reward pool cannot cover it.
type NFTFarmUnstaked struct {
	Farm         string
	Owner        common.Address
	Principal    *big.Int
	Interest     *big.Int
	InterestPaid bool
}

func (NFTFarmUnstaked) EventType() string { return TypeNFTFarmUnstaked }

func (e NFTFarmUnstaked) Event() *types.Event {
	return &types.Event{
		Type: TypeNFTFarmUnstaked,
		Attributes: map[string]string{
			"farm":         e.Farm,
			"owner":        e.Owner.Hex(),
			"principal":    formatAmount(e.Principal),
			"interest":     formatAmount(e.Interest),
			"interestPaid": strconv.FormatBool(e.InterestPaid),
		},
	}
}

// NFTFarmBoosterStaked records booster units entering an owner's booster set.
type NFTFarmBoosterStaked struct {
	Farm   string
	Owner  common.Address
	TypeID uint64
	Amount uint64
	Count  uint64
}

func (NFTFarmBoosterStaked) EventType() string { return TypeNFTFarmBoosterStaked }

func (e NFTFarmBoosterStaked) Event() *types.Event {
	return &types.Event{
		Type: TypeNFTFarmBoosterStaked,
		Attributes: map[string]string{
			"farm":   e.Farm,
			"owner":  e.Owner.Hex(),
			"typeId": strconv.FormatUint(e.TypeID, 10),
			"amount": strconv.FormatUint(e.Amount, 10),
			"count":  strconv.FormatUint(e.Count, 10),
		},
	}
}

// NFTFarmBoosterUnstaked records booster units leaving an owner's booster set.
type NFTFarmBoosterUnstaked struct {
	Farm   string
	Owner  common.Address
	TypeID uint64
	Amount uint64
	Count  uint64
}

func (NFTFarmBoosterUnstaked) EventType() string { return TypeNFTFarmBoosterUnstaked }

func (e NFTFarmBoosterUnstaked) Event() *types.Event {
	return &types.Event{
		Type: TypeNFTFarmBoosterUnstaked,
		Attributes: map[string]string{
			"farm":   e.Farm,
			"owner":  e.Owner.Hex(),
			"typeId": strconv.FormatUint(e.TypeID, 10),
			"amount": strconv.FormatUint(e.Amount, 10),
			"count":  strconv.FormatUint(e.Count, 10),
		},
	}
}

// NFTFarmBoosterAPYSet records an owner update to the booster APY table.
type NFTFarmBoosterAPYSet struct {
	Farm   string
	TypeID uint64
	APY    uint64
}

func (NFTFarmBoosterAPYSet) EventType() string { return TypeNFTFarmBoosterAPYSet }

func (e NFTFarmBoosterAPYSet) Event() *types.Event {
	return &types.Event{
		Type: TypeNFTFarmBoosterAPYSet,
		Attributes: map[string]string{
			"farm":   e.Farm,
			"typeId": strconv.FormatUint(e.TypeID, 10),
			"apy":    strconv.FormatUint(e.APY, 10),
		},
	}
}
