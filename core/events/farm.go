package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"tokenfarm/core/types"
)

const (
	TypeFarmFunded     = "farm.funded"
	TypeFarmStaked     = "farm.staked"
	TypeFarmUnstaked   = "farm.unstaked"
	TypeFarmClaimed    = "farm.claimed"
	TypeFarmAPYUpdated = "farm.apy.updated"
)

// FarmFunded records a contribution to a farm's shared reward pool.
type FarmFunded struct {
	Farm         string
	Funder       common.Address
	Amount       *big.Int
	TotalFunding *big.Int
}

func (FarmFunded) EventType() string { return TypeFarmFunded }

func (e FarmFunded) Event() *types.Event {
	return &types.Event{
		Type: TypeFarmFunded,
		Attributes: map[string]string{
			"farm":         e.Farm,
			"funder":       e.Funder.Hex(),
			"amount":       formatAmount(e.Amount),
			"totalFunding": formatAmount(e.TotalFunding),
		},
	}
}

// FarmStaked records the creation of a new stake slot.
type FarmStaked struct {
	Farm      string
	Owner     common.Address
	StakeID   uint64
	Amount    *big.Int
	StakeDate int64
}

func (FarmStaked) EventType() string { return TypeFarmStaked }

func (e FarmStaked) Event() *types.Event {
	return &types.Event{
		Type: TypeFarmStaked,
		Attributes: map[string]string{
			"farm":      e.Farm,
			"owner":     e.Owner.Hex(),
			"stakeId":   strconv.FormatUint(e.StakeID, 10),
			"amount":    formatAmount(e.Amount),
			"stakeDate": strconv.FormatInt(e.StakeDate, 10),
		},
	}
}

// FarmUnstaked records a partial or full withdrawal from a stake slot. When
// the reward pool could not cover the accrued interest the principal is still
// returned and InterestPaid reports false.
type FarmUnstaked struct {
	Farm         string
	Owner        common.Address
	StakeID      uint64
	Amount       *big.Int
	Interest     *big.Int
	InterestPaid bool
	Closed       bool
}

func (FarmUnstaked) EventType() string { return TypeFarmUnstaked }

func (e FarmUnstaked) Event() *types.Event {
	return &types.Event{
		Type: TypeFarmUnstaked,
		Attributes: map[string]string{
			"farm":         e.Farm,
			"owner":        e.Owner.Hex(),
			"stakeId":      strconv.FormatUint(e.StakeID, 10),
			"amount":       formatAmount(e.Amount),
			"interest":     formatAmount(e.Interest),
			"interestPaid": strconv.FormatBool(e.InterestPaid),
			"closed":       strconv.FormatBool(e.Closed),
		},
	}
}

// FarmClaimed records an interest-only payout against a live stake slot.
type FarmClaimed struct {
	Farm     string
	Owner    common.Address
	StakeID  uint64
	Interest *big.Int
}

func (FarmClaimed) EventType() string { return TypeFarmClaimed }

func (e FarmClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeFarmClaimed,
		Attributes: map[string]string{
			"farm":     e.Farm,
			"owner":    e.Owner.Hex(),
			"stakeId":  strconv.FormatUint(e.StakeID, 10),
			"interest": formatAmount(e.Interest),
		},
	}
}

// FarmAPYUpdated records an owner change to a farm's base rate.
type FarmAPYUpdated struct {
	Farm string
	APY  uint64
}

func (FarmAPYUpdated) EventType() string { return TypeFarmAPYUpdated }

func (e FarmAPYUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeFarmAPYUpdated,
		Attributes: map[string]string{
			"farm": e.Farm,
			"apy":  strconv.FormatUint(e.APY, 10),
		},
	}
}
