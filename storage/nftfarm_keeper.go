package storage

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"tokenfarm/native/nftfarm"
)

// NFTFarmKeeper persists single-slot compounding farm state in a key-value
// database under a per-instance prefix. It implements nftfarm.State.
type NFTFarmKeeper struct {
	db     Database
	prefix string
}

// NewNFTFarmKeeper wires a keeper for one NFT farm instance.
func NewNFTFarmKeeper(db Database, prefix string) *NFTFarmKeeper {
	return &NFTFarmKeeper{db: db, prefix: prefix}
}

// Account loads the owner's compounding record, zeroed when the owner never
// staked.
func (k *NFTFarmKeeper) Account(owner common.Address) (*nftfarm.Account, error) {
	acctKey := key(k.prefix, "account", owner.Hex())
	ok, err := k.db.Has(acctKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return (&nftfarm.Account{}).Clone(), nil
	}
	raw, err := k.db.Get(acctKey)
	if err != nil {
		return nil, err
	}
	var acct nftfarm.Account
	if err := json.Unmarshal(raw, &acct); err != nil {
		return nil, fmt.Errorf("storage: corrupt account at %q: %w", acctKey, err)
	}
	return acct.Clone(), nil
}

// PutAccount writes the owner's compounding record.
func (k *NFTFarmKeeper) PutAccount(owner common.Address, account *nftfarm.Account) error {
	raw, err := json.Marshal(account.Clone())
	if err != nil {
		return err
	}
	return k.db.Put(key(k.prefix, "account", owner.Hex()), raw)
}

// BoosterCount returns the staked unit count for one booster type.
func (k *NFTFarmKeeper) BoosterCount(owner common.Address, typeID uint64) (uint64, error) {
	return getUint64(k.db, key(k.prefix, "boosterCount", owner.Hex(), strconv.FormatUint(typeID, 10)))
}

// SetBoosterCount writes the staked unit count for one booster type.
func (k *NFTFarmKeeper) SetBoosterCount(owner common.Address, typeID, count uint64) error {
	return putUint64(k.db, key(k.prefix, "boosterCount", owner.Hex(), strconv.FormatUint(typeID, 10)), count)
}

// BoosterIDs returns the owner's staked booster types in first-insertion
// order.
func (k *NFTFarmKeeper) BoosterIDs(owner common.Address) ([]uint64, error) {
	idsKey := key(k.prefix, "boosterIds", owner.Hex())
	ok, err := k.db.Has(idsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	raw, err := k.db.Get(idsKey)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("storage: corrupt booster set at %q: %w", idsKey, err)
	}
	return ids, nil
}

// SetBoosterIDs writes the owner's staked booster type list.
func (k *NFTFarmKeeper) SetBoosterIDs(owner common.Address, ids []uint64) error {
	if ids == nil {
		ids = []uint64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return k.db.Put(key(k.prefix, "boosterIds", owner.Hex()), raw)
}

// APYByTokenID returns the configured additive rate of a booster type.
func (k *NFTFarmKeeper) APYByTokenID(typeID uint64) (uint64, error) {
	return getUint64(k.db, key(k.prefix, "apyByTokenId", strconv.FormatUint(typeID, 10)))
}

// SetAPYByTokenID writes the configured additive rate of a booster type.
func (k *NFTFarmKeeper) SetAPYByTokenID(typeID, apy uint64) error {
	return putUint64(k.db, key(k.prefix, "apyByTokenId", strconv.FormatUint(typeID, 10)), apy)
}

// TotalStaked returns the sum of principals across owners.
func (k *NFTFarmKeeper) TotalStaked() (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "totalStaked"))
}

// SetTotalStaked writes the sum of principals across owners.
func (k *NFTFarmKeeper) SetTotalStaked(total *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "totalStaked"), total)
}

// TotalNFTStaked returns the total staked booster units.
func (k *NFTFarmKeeper) TotalNFTStaked() (uint64, error) {
	return getUint64(k.db, key(k.prefix, "totalNftStaked"))
}

// SetTotalNFTStaked writes the total staked booster units.
func (k *NFTFarmKeeper) SetTotalNFTStaked(total uint64) error {
	return putUint64(k.db, key(k.prefix, "totalNftStaked"), total)
}

// TotalFunding returns the spendable reward pool balance.
func (k *NFTFarmKeeper) TotalFunding() (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "totalFunding"))
}

// SetTotalFunding writes the spendable reward pool balance.
func (k *NFTFarmKeeper) SetTotalFunding(total *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "totalFunding"), total)
}

// FundingOf returns a funder's lifetime contribution.
func (k *NFTFarmKeeper) FundingOf(addr common.Address) (*big.Int, error) {
	return getBigInt(k.db, key(k.prefix, "funding", addr.Hex()))
}

// SetFundingOf writes a funder's lifetime contribution.
func (k *NFTFarmKeeper) SetFundingOf(addr common.Address, amount *big.Int) error {
	return putBigInt(k.db, key(k.prefix, "funding", addr.Hex()), amount)
}
