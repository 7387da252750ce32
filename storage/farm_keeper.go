package storage

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"tokenfarm/native/farm"
)

// FarmKeeper persists multi-slot farm state in a key-value database under a
// per-instance prefix. It implements farm.State.
type FarmKeeper struct {
	db     Database
	prefix string
}

// NewFarmKeeper wires a keeper for one farm instance. The prefix isolates the
// instance's keys; use the farm name.
func NewFarmKeeper(db Database, prefix string) *FarmKeeper {
	return &FarmKeeper{db: db, prefix: prefix}
}

func (k *FarmKeeper) slotKey(owner common.Address, id uint64) []byte {
	return key(k.prefix, "slot", owner.Hex(), strconv.FormatUint(id, 10))
}

// Slot loads one stake slot, reporting absence through the bool.
func (k *FarmKeeper) Slot(owner common.Address, id uint64) (*farm.Slot, bool, error) {
	slotKey := k.slotKey(owner, id)
	ok, err := k.db.Has(slotKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	raw, err := k.db.Get(slotKey)
	if err != nil {
		return nil, false, err
	}
	var slot farm.Slot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return nil, false, fmt.Errorf("storage: corrupt slot at %q: %w", slotKey, err)
	}
	return &slot, true, nil
}

// PutSlot writes one stake slot.
func (k *FarmKeeper) PutSlot(owner common.Address, id uint64, slot *farm.Slot) error {
	raw, err := json.Marshal(slot.Clone())
	if err != nil {
		return err
	}
	return k.db.Put(k.slotKey(owner, id), raw)
}

// LastStakeID returns the owner's highest allocated slot id, zero when the
// owner never staked.
func (k *FarmKeeper) LastStakeID(owner common.Address) (uint64, error) {
	return getUint64(k.db, key(k.prefix, "lastStakeId", owner.Hex()))
}

// SetLastStakeID records the owner's highest allocated slot id.
func (k *FarmKeeper) SetLastStakeID(owner common.Address, id uint64) error {
	return putUint64(k.db, key(k.prefix, "lastStakeId", owner.Hex()), id)
}

// TotalStaked returns the instance-wide staked total.
func (k *FarmKeeper) TotalStaked() (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "totalStaked"))
}

// SetTotalStaked writes the instance-wide staked total.
func (k *FarmKeeper) SetTotalStaked(total *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "totalStaked"), total)
}

// TotalFunding returns the spendable reward pool balance.
func (k *FarmKeeper) TotalFunding() (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "totalFunding"))
}

// SetTotalFunding writes the spendable reward pool balance.
func (k *FarmKeeper) SetTotalFunding(total *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "totalFunding"), total)
}

// FundingOf returns a funder's lifetime contribution.
func (k *FarmKeeper) FundingOf(addr common.Address) (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "funding", addr.Hex()))
}

// SetFundingOf writes a funder's lifetime contribution.
func (k *FarmKeeper) SetFundingOf(addr common.Address, amount *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "funding", addr.Hex()), amount)
}
