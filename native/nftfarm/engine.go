package nftfarm

import (
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tokenfarm/core/events"
	nativecommon "tokenfarm/native/common"
	"tokenfarm/native/rewards"
	"tokenfarm/native/token"
)

// DefaultAPY is the base rate applied until the owner configures another one.
const DefaultAPY uint64 = 12

// Engine orchestrates the single-slot compounding farm. Each owner holds one
// principal/balance record; staked booster NFTs raise the effective APY by
// their configured per-type rates times the staked unit count. Interest is
// rolled into the balance at the old rate before any rate-affecting mutation
// takes effect, so rate changes never apply retroactively.
type Engine struct {
	name        string
	farmAddr    common.Address
	stakedToken token.Token
	rewardToken token.Token
	nfts        token.MultiToken
	authority   nativecommon.Authority
	state       State
	pauses      nativecommon.PauseView
	apy         uint64
	emitter     events.Emitter
	nowFn       func() int64
	log         *slog.Logger
}

// NewEngine constructs an NFT farm engine. The name doubles as the pause-gate
// module key; farmAddr is the custody account for principal, funding and
// staked boosters.
func NewEngine(name string, farmAddr common.Address, staked, reward token.Token, nfts token.MultiToken, authority nativecommon.Authority) *Engine {
	return &Engine{
		name:        name,
		farmAddr:    farmAddr,
		stakedToken: staked,
		rewardToken: reward,
		nfts:        nfts,
		authority:   authority,
		apy:         DefaultAPY,
		emitter:     events.NoopEmitter{},
		nowFn:       func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state State) { e.state = state }

// SetPauses wires the pause gate consulted by every mutating operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if e == nil {
		return
	}
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetLogger attaches a structured logger for degraded-outcome reporting.
func (e *Engine) SetLogger(log *slog.Logger) {
	if e == nil {
		return
	}
	e.log = log
}

// Name returns the farm instance name.
func (e *Engine) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

// APY returns the base rate in integer percent, exclusive of boosters.
func (e *Engine) APY() uint64 {
	if e == nil {
		return 0
	}
	return e.apy
}

// SetAPY updates the base rate. Owner only.
func (e *Engine) SetAPY(caller common.Address, apy uint64) error {
	if err := nativecommon.RequireOwner(e.authority, caller); err != nil {
		return err
	}
	e.apy = apy
	e.emit(events.FarmAPYUpdated{Farm: e.name, APY: apy})
	return nil
}

// SetAPYByTokenID configures the additive APY contributed by one staked unit
// of an NFT type. Owner only; both the type id and the rate must be positive.
func (e *Engine) SetAPYByTokenID(caller common.Address, typeID, apy uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.RequireOwner(e.authority, caller); err != nil {
		return err
	}
	if typeID == 0 || apy == 0 {
		return ErrInvalidAmount
	}
	if err := e.state.SetAPYByTokenID(typeID, apy); err != nil {
		return err
	}
	e.emit(events.NFTFarmBoosterAPYSet{Farm: e.name, TypeID: typeID, APY: apy})
	return nil
}

// Fund pulls amount of the reward token from the contributor into custody and
// grows the shared reward pool. Funding is not pause-gated.
func (e *Engine) Fund(from common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.rewardToken.TransferFrom(e.farmAddr, from, e.farmAddr, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	totalFunding, err := e.state.TotalFunding()
	if err != nil {
		return err
	}
	totalFunding = new(big.Int).Add(totalFunding, amount)
	if err := e.state.SetTotalFunding(totalFunding); err != nil {
		return err
	}
	contributed, err := e.state.FundingOf(from)
	if err != nil {
		return err
	}
	if err := e.state.SetFundingOf(from, new(big.Int).Add(contributed, amount)); err != nil {
		return err
	}
	e.emit(events.FarmFunded{Farm: e.name, Funder: from, Amount: new(big.Int).Set(amount), TotalFunding: totalFunding})
	return nil
}

// Stake rolls up accrued interest at the pre-stake rate, then pulls amount of
// the staked token into custody and adds it to both principal and balance.
func (e *Engine) Stake(owner common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	acct, err := e.rolledUpAccount(owner)
	if err != nil {
		return err
	}
	if err := e.stakedToken.TransferFrom(e.farmAddr, owner, e.farmAddr, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	acct.Principal.Add(acct.Principal, amount)
	acct.Balance.Add(acct.Balance, amount)
	acct.StakeDate = e.now()
	if err := e.state.PutAccount(owner, acct); err != nil {
		return err
	}
	total, err := e.state.TotalStaked()
	if err != nil {
		return err
	}
	if err := e.state.SetTotalStaked(new(big.Int).Add(total, amount)); err != nil {
		return err
	}
	e.emit(events.NFTFarmStaked{
		Farm:      e.name,
		Owner:     owner,
		Amount:    new(big.Int).Set(amount),
		Principal: new(big.Int).Set(acct.Principal),
		Balance:   new(big.Int).Set(acct.Balance),
	})
	return nil
}

// Unstake rolls up interest and exits the owner's entire position. Principal
// always comes back; the interest differential is paid from the reward pool
// only when the pool can cover it and is otherwise forfeited. Staked boosters
// remain staked.
func (e *Engine) Unstake(owner common.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	acct, err := e.rolledUpAccount(owner)
	if err != nil {
		return err
	}
	if !acct.staked() {
		return ErrInsufficientBalance
	}
	principal := new(big.Int).Set(acct.Principal)
	interest := new(big.Int).Sub(acct.Balance, acct.Principal)

	if err := e.stakedToken.Transfer(e.farmAddr, owner, principal); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	interestPaid := false
	if interest.Sign() > 0 {
		paid, err := e.payInterest(owner, interest)
		if err != nil {
			return err
		}
		interestPaid = paid
		if !paid {
			e.warn("interest payout skipped, reward pool underfunded",
				slog.String("farm", e.name),
				slog.String("owner", owner.Hex()),
				slog.String("interest", interest.String()))
		}
	}

	if err := e.state.PutAccount(owner, &Account{Principal: big.NewInt(0), Balance: big.NewInt(0)}); err != nil {
		return err
	}
	total, err := e.state.TotalStaked()
	if err != nil {
		return err
	}
	if err := e.state.SetTotalStaked(new(big.Int).Sub(total, principal)); err != nil {
		return err
	}
	e.emit(events.NFTFarmUnstaked{
		Farm:         e.name,
		Owner:        owner,
		Principal:    principal,
		Interest:     interest,
		InterestPaid: interestPaid,
	})
	return nil
}

// StakeNFT moves booster units into custody and raises the owner's effective
// APY prospectively. The type must carry a configured APY.
func (e *Engine) StakeNFT(owner common.Address, typeID, amount uint64, data []byte) error {
	return e.batchStakeNFT(owner, []uint64{typeID}, []uint64{amount}, data, true)
}

// BatchStakeNFT stakes several booster types at once. The whole batch is
// validated before any unit moves; one unknown type rejects everything.
func (e *Engine) BatchStakeNFT(owner common.Address, typeIDs, amounts []uint64, data []byte) error {
	return e.batchStakeNFT(owner, typeIDs, amounts, data, false)
}

// UnstakeNFT returns booster units to the owner and lowers the effective APY
// prospectively.
func (e *Engine) UnstakeNFT(owner common.Address, typeID, amount uint64, data []byte) error {
	return e.batchUnstakeNFT(owner, []uint64{typeID}, []uint64{amount}, data, true)
}

// BatchUnstakeNFT unstakes several booster types at once, atomically.
func (e *Engine) BatchUnstakeNFT(owner common.Address, typeIDs, amounts []uint64, data []byte) error {
	return e.batchUnstakeNFT(owner, typeIDs, amounts, data, false)
}

func (e *Engine) batchStakeNFT(owner common.Address, typeIDs, amounts []uint64, data []byte, single bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	if err := e.validateBatch(typeIDs, amounts); err != nil {
		return err
	}

	// Roll up at the pre-stake rate; the boosters joining below only affect
	// future accrual.
	acct, err := e.rolledUpAccount(owner)
	if err != nil {
		return err
	}

	if single {
		if err := e.nfts.SafeTransferFrom(e.farmAddr, owner, e.farmAddr, typeIDs[0], amounts[0], data); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferRejected, err)
		}
	} else {
		if err := e.nfts.SafeBatchTransferFrom(e.farmAddr, owner, e.farmAddr, typeIDs, amounts, data); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferRejected, err)
		}
	}
	if err := e.state.PutAccount(owner, acct); err != nil {
		return err
	}

	for i, typeID := range typeIDs {
		count, err := e.state.BoosterCount(owner, typeID)
		if err != nil {
			return err
		}
		if count == 0 {
			ids, err := e.state.BoosterIDs(owner)
			if err != nil {
				return err
			}
			if err := e.state.SetBoosterIDs(owner, append(ids, typeID)); err != nil {
				return err
			}
		}
		count += amounts[i]
		if err := e.state.SetBoosterCount(owner, typeID, count); err != nil {
			return err
		}
		totalNFT, err := e.state.TotalNFTStaked()
		if err != nil {
			return err
		}
		if err := e.state.SetTotalNFTStaked(totalNFT + amounts[i]); err != nil {
			return err
		}
		e.emit(events.NFTFarmBoosterStaked{Farm: e.name, Owner: owner, TypeID: typeID, Amount: amounts[i], Count: count})
	}
	return nil
}

func (e *Engine) batchUnstakeNFT(owner common.Address, typeIDs, amounts []uint64, data []byte, single bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	if err := e.validateBatch(typeIDs, amounts); err != nil {
		return err
	}
	// Amounts are aggregated per type id before checking the stored counts so
	// a batch repeating one id cannot slip past the precheck and withdraw
	// more units than the owner staked.
	required := make(map[uint64]uint64, len(typeIDs))
	for i, typeID := range typeIDs {
		sum := required[typeID] + amounts[i]
		if sum < required[typeID] {
			return ErrInvalidAmount
		}
		required[typeID] = sum
	}
	for typeID, amount := range required {
		count, err := e.state.BoosterCount(owner, typeID)
		if err != nil {
			return err
		}
		if count < amount {
			return ErrInsufficientBalance
		}
	}

	// Roll up while the departing boosters still count toward the rate; they
	// boosted the elapsed period and only stop accruing from now on.
	acct, err := e.rolledUpAccount(owner)
	if err != nil {
		return err
	}

	if single {
		if err := e.nfts.SafeTransferFrom(e.farmAddr, e.farmAddr, owner, typeIDs[0], amounts[0], data); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferRejected, err)
		}
	} else {
		if err := e.nfts.SafeBatchTransferFrom(e.farmAddr, e.farmAddr, owner, typeIDs, amounts, data); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferRejected, err)
		}
	}
	if err := e.state.PutAccount(owner, acct); err != nil {
		return err
	}

	for i, typeID := range typeIDs {
		count, err := e.state.BoosterCount(owner, typeID)
		if err != nil {
			return err
		}
		count -= amounts[i]
		if err := e.state.SetBoosterCount(owner, typeID, count); err != nil {
			return err
		}
		if count == 0 {
			ids, err := e.state.BoosterIDs(owner)
			if err != nil {
				return err
			}
			if err := e.state.SetBoosterIDs(owner, removeID(ids, typeID)); err != nil {
				return err
			}
		}
		totalNFT, err := e.state.TotalNFTStaked()
		if err != nil {
			return err
		}
		if err := e.state.SetTotalNFTStaked(totalNFT - amounts[i]); err != nil {
			return err
		}
		e.emit(events.NFTFarmBoosterUnstaked{Farm: e.name, Owner: owner, TypeID: typeID, Amount: amounts[i], Count: count})
	}
	return nil
}

// validateBatch checks shape, positivity and whitelist membership for every
// entry before anything mutates.
func (e *Engine) validateBatch(typeIDs, amounts []uint64) error {
	if len(typeIDs) == 0 || len(typeIDs) != len(amounts) {
		return ErrBatchMismatch
	}
	for i, typeID := range typeIDs {
		if amounts[i] == 0 {
			return ErrInvalidAmount
		}
		apy, err := e.state.APYByTokenID(typeID)
		if err != nil {
			return err
		}
		if apy == 0 {
			return ErrNotWhitelisted
		}
	}
	return nil
}

// rolledUpAccount loads the owner's account with interest folded in at the
// current effective rate and the accrual clock reset. Callers persist the
// returned record once their own mutation is applied.
func (e *Engine) rolledUpAccount(owner common.Address) (*Account, error) {
	acct, err := e.state.Account(owner)
	if err != nil {
		return nil, err
	}
	acct = acct.Clone()
	if !acct.staked() {
		return acct, nil
	}
	now := e.now()
	days := rewards.WholeDays(acct.StakeDate, now)
	if days > 0 {
		apy, err := e.totalAPY(owner, acct)
		if err != nil {
			return nil, err
		}
		balance, err := rewards.Calculate(acct.Balance, days, apy)
		if err != nil {
			return nil, err
		}
		acct.Balance = balance
	}
	acct.StakeDate = now
	return acct, nil
}

// totalAPY computes base plus booster contributions for a staked account.
func (e *Engine) totalAPY(owner common.Address, acct *Account) (uint64, error) {
	if !acct.staked() {
		return 0, nil
	}
	apy := e.apy
	ids, err := e.state.BoosterIDs(owner)
	if err != nil {
		return 0, err
	}
	for _, typeID := range ids {
		count, err := e.state.BoosterCount(owner, typeID)
		if err != nil {
			return 0, err
		}
		rate, err := e.state.APYByTokenID(typeID)
		if err != nil {
			return 0, err
		}
		apy += count * rate
	}
	return apy, nil
}

// payInterest settles interest against the shared reward pool, all or nothing.
func (e *Engine) payInterest(recipient common.Address, interest *big.Int) (bool, error) {
	totalFunding, err := e.state.TotalFunding()
	if err != nil {
		return false, err
	}
	if interest.Cmp(totalFunding) > 0 {
		return false, nil
	}
	if err := e.rewardToken.Transfer(e.farmAddr, recipient, interest); err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	if err := e.state.SetTotalFunding(new(big.Int).Sub(totalFunding, interest)); err != nil {
		return false, err
	}
	return true, nil
}

func removeID(ids []uint64, typeID uint64) []uint64 {
	out := ids[:0]
	for _, id := range ids {
		if id != typeID {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) warn(msg string, args ...any) {
	if e == nil || e.log == nil {
		return
	}
	e.log.Warn(msg, args...)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}
