package nftfarm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "tokenfarm/native/common"
	"tokenfarm/native/rewards"
	"tokenfarm/native/token"
)

var (
	farmAddr = common.HexToAddress("0x00000000000000000000000000000000000000f2")
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

type mockState struct {
	accounts       map[common.Address]*Account
	boosterCounts  map[common.Address]map[uint64]uint64
	boosterIDs     map[common.Address][]uint64
	apyByTokenID   map[uint64]uint64
	totalStaked    *big.Int
	totalNFTStaked uint64
	totalFunding   *big.Int
	funding        map[common.Address]*big.Int
}

func newMockState() *mockState {
	return &mockState{
		accounts:      make(map[common.Address]*Account),
		boosterCounts: make(map[common.Address]map[uint64]uint64),
		boosterIDs:    make(map[common.Address][]uint64),
		apyByTokenID:  make(map[uint64]uint64),
		totalStaked:   big.NewInt(0),
		totalFunding:  big.NewInt(0),
		funding:       make(map[common.Address]*big.Int),
	}
}

func (m *mockState) Account(owner common.Address) (*Account, error) {
	if acct, ok := m.accounts[owner]; ok {
		return acct.Clone(), nil
	}
	return (&Account{}).Clone(), nil
}

func (m *mockState) PutAccount(owner common.Address, account *Account) error {
	m.accounts[owner] = account.Clone()
	return nil
}

func (m *mockState) BoosterCount(owner common.Address, typeID uint64) (uint64, error) {
	return m.boosterCounts[owner][typeID], nil
}

func (m *mockState) SetBoosterCount(owner common.Address, typeID, count uint64) error {
	counts, ok := m.boosterCounts[owner]
	if !ok {
		counts = make(map[uint64]uint64)
		m.boosterCounts[owner] = counts
	}
	if count == 0 {
		delete(counts, typeID)
		return nil
	}
	counts[typeID] = count
	return nil
}

func (m *mockState) BoosterIDs(owner common.Address) ([]uint64, error) {
	return append([]uint64(nil), m.boosterIDs[owner]...), nil
}

func (m *mockState) SetBoosterIDs(owner common.Address, ids []uint64) error {
	m.boosterIDs[owner] = append([]uint64(nil), ids...)
	return nil
}

func (m *mockState) APYByTokenID(typeID uint64) (uint64, error) {
	return m.apyByTokenID[typeID], nil
}

func (m *mockState) SetAPYByTokenID(typeID, apy uint64) error {
	m.apyByTokenID[typeID] = apy
	return nil
}

func (m *mockState) TotalStaked() (*big.Int, error) {
	return new(big.Int).Set(m.totalStaked), nil
}

func (m *mockState) SetTotalStaked(total *big.Int) error {
	m.totalStaked = new(big.Int).Set(total)
	return nil
}

func (m *mockState) TotalNFTStaked() (uint64, error) { return m.totalNFTStaked, nil }

func (m *mockState) SetTotalNFTStaked(total uint64) error {
	m.totalNFTStaked = total
	return nil
}

func (m *mockState) TotalFunding() (*big.Int, error) {
	return new(big.Int).Set(m.totalFunding), nil
}

func (m *mockState) SetTotalFunding(total *big.Int) error {
	m.totalFunding = new(big.Int).Set(total)
	return nil
}

func (m *mockState) FundingOf(addr common.Address) (*big.Int, error) {
	if amount, ok := m.funding[addr]; ok {
		return new(big.Int).Set(amount), nil
	}
	return big.NewInt(0), nil
}

func (m *mockState) SetFundingOf(addr common.Address, amount *big.Int) error {
	m.funding[addr] = new(big.Int).Set(amount)
	return nil
}

type fixture struct {
	engine *Engine
	state  *mockState
	ledger *token.Ledger
	nfts   *token.MultiLedger
	pauses *nativecommon.PauseRegistry
	now    int64
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := token.NewLedger()
	nfts := token.NewMultiLedger()
	authority := nativecommon.NewOwnerAuthority(owner)
	pauses := nativecommon.NewPauseRegistry(authority)
	engine := NewEngine("nftfarm", farmAddr, ledger, ledger, nfts, authority)
	state := newMockState()
	engine.SetState(state)
	engine.SetPauses(pauses)
	f := &fixture{engine: engine, state: state, ledger: ledger, nfts: nfts, pauses: pauses, now: 1_700_000_000}
	engine.SetNowFunc(func() int64 { return f.now })
	return f
}

func (f *fixture) advanceDays(days int64) {
	f.now += days * rewards.SecondsPerDay
}

func (f *fixture) fund(t *testing.T, from common.Address, amount *big.Int) {
	t.Helper()
	f.ledger.Mint(from, amount)
	f.ledger.Approve(from, farmAddr, amount)
	if err := f.engine.Fund(from, amount); err != nil {
		t.Fatalf("fund: %v", err)
	}
}

func (f *fixture) stake(t *testing.T, staker common.Address, amount *big.Int) {
	t.Helper()
	f.ledger.Mint(staker, amount)
	f.ledger.Approve(staker, farmAddr, amount)
	if err := f.engine.Stake(staker, amount); err != nil {
		t.Fatalf("stake: %v", err)
	}
}

func (f *fixture) whitelist(t *testing.T, typeID, apy uint64) {
	t.Helper()
	if err := f.engine.SetAPYByTokenID(owner, typeID, apy); err != nil {
		t.Fatalf("setAPYByTokenID: %v", err)
	}
}

func (f *fixture) stakeNFT(t *testing.T, staker common.Address, typeID, amount uint64) {
	t.Helper()
	f.nfts.Mint(staker, typeID, amount)
	f.nfts.SetApprovalForAll(staker, farmAddr, true)
	if err := f.engine.StakeNFT(staker, typeID, amount, nil); err != nil {
		t.Fatalf("stakeNFT: %v", err)
	}
}

func compound(t *testing.T, principal *big.Int, days, apy uint64) *big.Int {
	t.Helper()
	out, err := rewards.Calculate(principal, days, apy)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	return out
}

func requireAmount(t *testing.T, got, want *big.Int, what string) {
	t.Helper()
	if got.Cmp(want) != 0 {
		t.Fatalf("%s: expected %s, got %s", what, want, got)
	}
}

func TestStakeCreatesAccount(t *testing.T) {
	f := newFixture(t)
	f.stake(t, alice, ether(1000))

	principal, _ := f.engine.PrincipalOf(alice)
	requireAmount(t, principal, ether(1000), "principal")
	balance, _ := f.engine.BalanceOf(alice)
	requireAmount(t, balance, ether(1000), "balance")
	date, _ := f.engine.StakeDateOf(alice)
	if date != f.now {
		t.Fatalf("expected stakeDate %d, got %d", f.now, date)
	}
	total, _ := f.engine.TotalStaked()
	requireAmount(t, total, ether(1000), "totalStaked")
}

func TestStakeRollsUpBeforeAddingPrincipal(t *testing.T) {
	f := newFixture(t)
	f.stake(t, alice, ether(1000))
	f.advanceDays(10)
	f.stake(t, alice, ether(500))

	wantBalance := new(big.Int).Add(compound(t, ether(1000), 10, DefaultAPY), ether(500))
	balance, _ := f.engine.BalanceOf(alice)
	requireAmount(t, balance, wantBalance, "balance after rollup + deposit")
	principal, _ := f.engine.PrincipalOf(alice)
	requireAmount(t, principal, ether(1500), "principal excludes interest")
	if balance.Cmp(principal) < 0 {
		t.Fatalf("balance %s fell below principal %s", balance, principal)
	}
	date, _ := f.engine.StakeDateOf(alice)
	if date != f.now {
		t.Fatalf("expected accrual clock reset to %d, got %d", f.now, date)
	}
}

func TestStakeRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Stake(alice, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTotalAPYZeroWithoutPrincipal(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	// Boosters held while nothing is staked contribute no rate at all.
	apy, _ := f.engine.TotalAPYOf(alice)
	if apy != 0 {
		t.Fatalf("expected APY 0 for empty account, got %d", apy)
	}

	f.stake(t, alice, ether(10))
	apy, _ = f.engine.TotalAPYOf(alice)
	if apy != DefaultAPY {
		t.Fatalf("expected base APY %d, got %d", DefaultAPY, apy)
	}

	f.stakeNFT(t, alice, 1, 3)
	apy, _ = f.engine.TotalAPYOf(alice)
	if want := DefaultAPY + 3*20; apy != want {
		t.Fatalf("expected boosted APY %d, got %d", want, apy)
	}
}

func TestStakeNFTRequiresWhitelist(t *testing.T) {
	f := newFixture(t)
	f.stake(t, alice, ether(10))
	f.nfts.Mint(alice, 7, 1)
	f.nfts.SetApprovalForAll(alice, farmAddr, true)
	if err := f.engine.StakeNFT(alice, 7, 1, nil); !errors.Is(err, ErrNotWhitelisted) {
		t.Fatalf("expected ErrNotWhitelisted, got %v", err)
	}
	if err := f.engine.UnstakeNFT(alice, 7, 1, nil); !errors.Is(err, ErrNotWhitelisted) {
		t.Fatalf("expected ErrNotWhitelisted on unstake, got %v", err)
	}
}

func TestSetAPYByTokenIDValidation(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.SetAPYByTokenID(alice, 1, 20); !errors.Is(err, nativecommon.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := f.engine.SetAPYByTokenID(owner, 0, 20); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero type id, got %v", err)
	}
	if err := f.engine.SetAPYByTokenID(owner, 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero apy, got %v", err)
	}
	if err := f.engine.SetAPYByTokenID(owner, 1, 20); err != nil {
		t.Fatalf("owner set: %v", err)
	}
	apy, _ := f.engine.APYByTokenID(1)
	if apy != 20 {
		t.Fatalf("expected configured apy 20, got %d", apy)
	}
}

func TestBoosterChangesRateProspectively(t *testing.T) {
	f := newFixture(t)
	f.fund(t, owner, ether(10_000))
	f.whitelist(t, 1, 20)

	f.stake(t, alice, ether(1000))
	f.advanceDays(10)
	// The booster arriving now must not re-rate the elapsed ten days.
	f.stakeNFT(t, alice, 1, 1)
	f.advanceDays(5)
	if err := f.engine.Unstake(alice); err != nil {
		t.Fatalf("unstake: %v", err)
	}

	segment1 := compound(t, ether(1000), 10, DefaultAPY)
	wantBalance := compound(t, segment1, 5, DefaultAPY+20)
	requireAmount(t, f.ledger.BalanceOf(alice), wantBalance, "piecewise payout")
}

func TestRollupCountsOnlyElapsedTimePerBoundary(t *testing.T) {
	// Staking and immediately unstaking a booster must leave the balance
	// exactly where a single rollup would: rate changes at the same instant
	// accrue nothing extra regardless of how many there are.
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.whitelist(t, 2, 30)
	f.stake(t, alice, ether(1000))
	f.advanceDays(10)

	f.stakeNFT(t, alice, 1, 1)
	f.stakeNFT(t, alice, 2, 2)
	if err := f.engine.UnstakeNFT(alice, 1, 1, nil); err != nil {
		t.Fatalf("unstakeNFT: %v", err)
	}
	if err := f.engine.UnstakeNFT(alice, 2, 2, nil); err != nil {
		t.Fatalf("unstakeNFT: %v", err)
	}

	balance, _ := f.engine.BalanceOf(alice)
	requireAmount(t, balance, compound(t, ether(1000), 10, DefaultAPY), "single-rollup balance")
}

func TestUnstakePaysPrincipalAndInterest(t *testing.T) {
	f := newFixture(t)
	f.fund(t, owner, ether(3000))
	f.stake(t, alice, ether(1000))
	f.advanceDays(10)

	if err := f.engine.Unstake(alice); err != nil {
		t.Fatalf("unstake: %v", err)
	}
	gross := compound(t, ether(1000), 10, DefaultAPY)
	interest := new(big.Int).Sub(gross, ether(1000))
	requireAmount(t, f.ledger.BalanceOf(alice), gross, "principal plus interest")
	totalFunding, _ := f.engine.TotalFunding()
	requireAmount(t, totalFunding, new(big.Int).Sub(ether(3000), interest), "pool drained by interest")

	principal, _ := f.engine.PrincipalOf(alice)
	requireAmount(t, principal, big.NewInt(0), "account zeroed")
	date, _ := f.engine.StakeDateOf(alice)
	if date != 0 {
		t.Fatalf("expected stakeDate 0, got %d", date)
	}
	total, _ := f.engine.TotalStaked()
	requireAmount(t, total, big.NewInt(0), "totalStaked")
}

func TestUnderfundedUnstakeForfeitsInterest(t *testing.T) {
	f := newFixture(t)
	f.fund(t, owner, ether(3))
	f.stake(t, alice, ether(1_000_000))
	f.advanceDays(730)

	if err := f.engine.Unstake(alice); err != nil {
		t.Fatalf("unstake: %v", err)
	}
	requireAmount(t, f.ledger.BalanceOf(alice), ether(1_000_000), "principal returned in full")
	totalFunding, _ := f.engine.TotalFunding()
	requireAmount(t, totalFunding, ether(3), "pool untouched")
}

func TestUnstakeEmptyAccount(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Unstake(alice); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestUnstakeLeavesBoostersStaked(t *testing.T) {
	f := newFixture(t)
	f.fund(t, owner, ether(100))
	f.whitelist(t, 1, 20)
	f.stake(t, alice, ether(100))
	f.stakeNFT(t, alice, 1, 2)

	if err := f.engine.Unstake(alice); err != nil {
		t.Fatalf("unstake: %v", err)
	}
	count, _ := f.engine.BoosterCountOf(alice, 1)
	if count != 2 {
		t.Fatalf("expected boosters untouched, got count %d", count)
	}
	totalNFT, _ := f.engine.TotalNFTStaked()
	if totalNFT != 2 {
		t.Fatalf("expected totalNFTStaked 2, got %d", totalNFT)
	}
}

func TestBoosterSetKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 3, 10)
	f.whitelist(t, 1, 20)
	f.whitelist(t, 2, 30)
	f.stake(t, alice, ether(10))

	f.stakeNFT(t, alice, 3, 1)
	f.stakeNFT(t, alice, 1, 2)
	f.stakeNFT(t, alice, 2, 1)

	ids, _ := f.engine.BoosterIDsOf(alice)
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Fatalf("expected insertion order [3 1 2], got %v", ids)
	}

	if err := f.engine.UnstakeNFT(alice, 1, 2, nil); err != nil {
		t.Fatalf("unstakeNFT: %v", err)
	}
	ids, _ = f.engine.BoosterIDsOf(alice)
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 2 {
		t.Fatalf("expected order [3 2] after removal, got %v", ids)
	}
	staked, _ := f.engine.IsBoosterStaked(alice, 1)
	if staked {
		t.Fatalf("expected type 1 no longer staked")
	}
	if got := f.nfts.BalanceOf(alice, 1); got != 2 {
		t.Fatalf("expected units returned to alice, got %d", got)
	}
}

func TestUnstakeNFTMoreThanStaked(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.stake(t, alice, ether(10))
	f.stakeNFT(t, alice, 1, 1)
	if err := f.engine.UnstakeNFT(alice, 1, 2, nil); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestBatchStakeNFTIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.stake(t, alice, ether(10))
	f.nfts.Mint(alice, 1, 2)
	f.nfts.Mint(alice, 9, 2)
	f.nfts.SetApprovalForAll(alice, farmAddr, true)

	// Type 9 is not whitelisted: the whole batch must be rejected untouched.
	err := f.engine.BatchStakeNFT(alice, []uint64{1, 9}, []uint64{2, 2}, nil)
	if !errors.Is(err, ErrNotWhitelisted) {
		t.Fatalf("expected ErrNotWhitelisted, got %v", err)
	}
	count, _ := f.engine.BoosterCountOf(alice, 1)
	if count != 0 {
		t.Fatalf("batch partially applied: count %d", count)
	}
	totalNFT, _ := f.engine.TotalNFTStaked()
	if totalNFT != 0 {
		t.Fatalf("batch partially applied: totalNFTStaked %d", totalNFT)
	}
	if got := f.nfts.BalanceOf(alice, 1); got != 2 {
		t.Fatalf("units moved despite rejected batch: %d", got)
	}
}

func TestBatchUnstakeNFTDuplicateTypeIDs(t *testing.T) {
	// A batch repeating one type id must be checked against the aggregate, or
	// it could drain units staked by other owners and wrap the stored count.
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.stake(t, alice, ether(10))
	f.stakeNFT(t, alice, 1, 3)
	f.stakeNFT(t, bob, 1, 3)

	err := f.engine.BatchUnstakeNFT(alice, []uint64{1, 1}, []uint64{2, 2}, nil)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	count, _ := f.engine.BoosterCountOf(alice, 1)
	if count != 3 {
		t.Fatalf("expected count untouched at 3, got %d", count)
	}
	totalNFT, _ := f.engine.TotalNFTStaked()
	if totalNFT != 6 {
		t.Fatalf("expected totalNFTStaked untouched at 6, got %d", totalNFT)
	}
	if got := f.nfts.BalanceOf(alice, 1); got != 0 {
		t.Fatalf("expected no units returned, got %d", got)
	}
	if got := f.nfts.BalanceOf(farmAddr, 1); got != 6 {
		t.Fatalf("expected custody intact at 6, got %d", got)
	}

	// Duplicates summing within the staked count remain fine.
	if err := f.engine.BatchUnstakeNFT(alice, []uint64{1, 1}, []uint64{1, 2}, nil); err != nil {
		t.Fatalf("batch unstake within count: %v", err)
	}
	count, _ = f.engine.BoosterCountOf(alice, 1)
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}
	ids, _ := f.engine.BoosterIDsOf(alice)
	if len(ids) != 0 {
		t.Fatalf("expected empty booster set, got %v", ids)
	}
	if got := f.nfts.BalanceOf(alice, 1); got != 3 {
		t.Fatalf("expected 3 units returned, got %d", got)
	}
	totalNFT, _ = f.engine.TotalNFTStaked()
	if totalNFT != 3 {
		t.Fatalf("expected totalNFTStaked 3, got %d", totalNFT)
	}
}

func TestBatchStakeAndUnstakeNFT(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.whitelist(t, 2, 30)
	f.stake(t, alice, ether(10))
	f.nfts.Mint(alice, 1, 2)
	f.nfts.Mint(alice, 2, 3)
	f.nfts.SetApprovalForAll(alice, farmAddr, true)

	if err := f.engine.BatchStakeNFT(alice, []uint64{1, 2}, []uint64{2, 3}, nil); err != nil {
		t.Fatalf("batch stake: %v", err)
	}
	totalNFT, _ := f.engine.TotalNFTStaked()
	if totalNFT != 5 {
		t.Fatalf("expected totalNFTStaked 5, got %d", totalNFT)
	}
	apy, _ := f.engine.TotalAPYOf(alice)
	if want := DefaultAPY + 2*20 + 3*30; apy != want {
		t.Fatalf("expected APY %d, got %d", want, apy)
	}

	if err := f.engine.BatchUnstakeNFT(alice, []uint64{1, 2}, []uint64{2, 3}, nil); err != nil {
		t.Fatalf("batch unstake: %v", err)
	}
	totalNFT, _ = f.engine.TotalNFTStaked()
	if totalNFT != 0 {
		t.Fatalf("expected totalNFTStaked 0, got %d", totalNFT)
	}
	ids, _ := f.engine.BoosterIDsOf(alice)
	if len(ids) != 0 {
		t.Fatalf("expected empty booster set, got %v", ids)
	}
}

func TestBatchLengthMismatch(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.BatchStakeNFT(alice, []uint64{1}, []uint64{1, 2}, nil); !errors.Is(err, ErrBatchMismatch) {
		t.Fatalf("expected ErrBatchMismatch, got %v", err)
	}
	if err := f.engine.BatchStakeNFT(alice, nil, nil, nil); !errors.Is(err, ErrBatchMismatch) {
		t.Fatalf("expected ErrBatchMismatch for empty batch, got %v", err)
	}
}

func TestPauseGatesNFTFarmMutations(t *testing.T) {
	f := newFixture(t)
	f.whitelist(t, 1, 20)
	f.stake(t, alice, ether(100))
	f.nfts.Mint(alice, 1, 1)
	f.nfts.SetApprovalForAll(alice, farmAddr, true)

	if err := f.pauses.Pause(owner, f.engine.Name()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := f.engine.Stake(alice, ether(1)); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused stake, got %v", err)
	}
	if err := f.engine.Unstake(alice); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused unstake, got %v", err)
	}
	if err := f.engine.StakeNFT(alice, 1, 1, nil); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused stakeNFT, got %v", err)
	}
	if err := f.engine.UnstakeNFT(alice, 1, 1, nil); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused unstakeNFT, got %v", err)
	}
	// Funding the pool stays open.
	f.fund(t, bob, ether(5))

	if err := f.pauses.Unpause(owner, f.engine.Name()); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := f.engine.StakeNFT(alice, 1, 1, nil); err != nil {
		t.Fatalf("stakeNFT after unpause: %v", err)
	}
}

func TestFundTracksLifetimeContributions(t *testing.T) {
	f := newFixture(t)
	f.fund(t, alice, ether(1000))
	f.fund(t, alice, ether(1000))
	f.fund(t, bob, ether(1000))

	total, _ := f.engine.TotalFunding()
	requireAmount(t, total, ether(3000), "totalFunding")
	fromAlice, _ := f.engine.FundingOf(alice)
	requireAmount(t, fromAlice, ether(2000), "alice lifetime funding")
	fromBob, _ := f.engine.FundingOf(bob)
	requireAmount(t, fromBob, ether(1000), "bob lifetime funding")
}
