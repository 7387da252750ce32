package farm

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

// Engine orchestrates the multi-stake farm state transitions. Each stake call
// opens an independent slot accruing daily compound interest at the farm's
// base APY; interest is paid from a shared, owner-funded reward pool held in
// the reward token. The staked and reward tokens are the same ledger for the
// primary farm and differ for the LP variant.
type Engine struct {
	name             string
	farmAddr         common.Address
	stakedToken      token.Token
	rewardToken      token.Token
	authority        nativecommon.Authority
	state            State
	pauses           nativecommon.PauseView
	pauseBlocksClaim bool
	apy              uint64
	emitter          events.Emitter
	nowFn            func() int64
	log              *slog.Logger
}

// NewEngine constructs a farm engine. The name doubles as the pause-gate
// module key; farmAddr is the custody account holding staked principal and
// reward funding.
func NewEngine(name string, farmAddr common.Address, staked, reward token.Token, authority nativecommon.Authority) *Engine {
	return &Engine{
		name:        name,
		farmAddr:    farmAddr,
		stakedToken: staked,
		rewardToken: reward,
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

// SetPauseBlocksClaim controls whether Claim honours the pause gate. The
// default leaves claims open while deposits are halted.
func (e *Engine) SetPauseBlocksClaim(blocked bool) {
	if e == nil {
		return
	}
	e.pauseBlocksClaim = blocked
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

// APY returns the current base rate in integer percent.
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

// Fund pulls amount of the reward token from the contributor into custody and
// grows the shared reward pool. Contributions are tracked per funder for their
// lifetime and never decremented. Funding is not pause-gated.
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
	e.emit(events.FarmFunded{Farm: e.name, Funder: from, Amount: cloneBigInt(amount), TotalFunding: totalFunding})
	return nil
}

// Stake pulls amount of the staked token into custody and opens a fresh slot
// for the owner. Returns the allocated stake id.
func (e *Engine) Stake(owner common.Address, amount *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return 0, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if err := e.stakedToken.TransferFrom(e.farmAddr, owner, e.farmAddr, amount); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}

	lastID, err := e.state.LastStakeID(owner)
	if err != nil {
		return 0, err
	}
	id := lastID + 1
	now := e.now()
	if err := e.state.PutSlot(owner, id, &Slot{Balance: new(big.Int).Set(amount), StakeDate: now}); err != nil {
		return 0, err
	}
	if err := e.state.SetLastStakeID(owner, id); err != nil {
		return 0, err
	}
	if err := e.addTotalStaked(amount); err != nil {
		return 0, err
	}
	e.emit(events.FarmStaked{Farm: e.name, Owner: owner, StakeID: id, Amount: cloneBigInt(amount), StakeDate: now})
	return id, nil
}

// Unstake withdraws the slot's entire balance plus any payable interest and
// closes the slot.
func (e *Engine) Unstake(owner common.Address, id uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	slot, err := e.activeSlot(owner, id)
	if err != nil {
		return err
	}
	return e.unstake(owner, id, slot, slot.Balance)
}

// UnstakeCertainAmount withdraws amount from the slot. Interest accrued on the
// full slot balance is paid when the reward pool can cover it; the principal
// portion is returned regardless. A partial withdrawal restarts the slot's
// accrual clock.
func (e *Engine) UnstakeCertainAmount(owner common.Address, id uint64, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, e.name); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	slot, err := e.activeSlot(owner, id)
	if err != nil {
		return err
	}
	if amount.Cmp(slot.Balance) > 0 {
		return ErrInsufficientBalance
	}
	return e.unstake(owner, id, slot, amount)
}

func (e *Engine) unstake(owner common.Address, id uint64, slot *Slot, amount *big.Int) error {
	now := e.now()
	interest, err := e.accruedInterest(slot, now)
	if err != nil {
		return err
	}

	if err := e.stakedToken.Transfer(e.farmAddr, owner, amount); err != nil {
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
				slog.Uint64("stakeId", id),
				slog.String("interest", interest.String()))
		}
	}

	remaining := new(big.Int).Sub(slot.Balance, amount)
	updated := &Slot{Balance: remaining, StakeDate: now}
	closed := remaining.Sign() == 0
	if closed {
		updated = &Slot{Balance: big.NewInt(0), StakeDate: 0}
	}
	if err := e.state.PutSlot(owner, id, updated); err != nil {
		return err
	}
	if err := e.subTotalStaked(amount); err != nil {
		return err
	}
	e.emit(events.FarmUnstaked{
		Farm:         e.name,
		Owner:        owner,
		StakeID:      id,
		Amount:       cloneBigInt(amount),
		Interest:     interest,
		InterestPaid: interestPaid,
		Closed:       closed,
	})
	return nil
}

// Claim pays out the interest accrued on a live slot and restarts its accrual
// clock, leaving the staked balance untouched. Unlike unstake, an underfunded
// reward pool fails the whole claim: there is no principal component to fall
// back on.
func (e *Engine) Claim(owner common.Address, id uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.pauseBlocksClaim {
		if err := nativecommon.Guard(e.pauses, e.name); err != nil {
			return err
		}
	}
	slot, err := e.activeSlot(owner, id)
	if err != nil {
		return err
	}
	now := e.now()
	interest, err := e.accruedInterest(slot, now)
	if err != nil {
		return err
	}
	if interest.Sign() == 0 {
		// Less than one whole day elapsed; nothing to pay, clock untouched.
		return nil
	}
	paid, err := e.payInterest(owner, interest)
	if err != nil {
		return err
	}
	if !paid {
		return ErrInsufficientFunding
	}
	if err := e.state.PutSlot(owner, id, &Slot{Balance: slot.Balance, StakeDate: now}); err != nil {
		return err
	}
	e.emit(events.FarmClaimed{Farm: e.name, Owner: owner, StakeID: id, Interest: interest})
	return nil
}

// activeSlot validates the stake id and loads its live slot.
func (e *Engine) activeSlot(owner common.Address, id uint64) (*Slot, error) {
	lastID, err := e.state.LastStakeID(owner)
	if err != nil {
		return nil, err
	}
	if id == 0 || id > lastID {
		return nil, ErrUnknownStake
	}
	slot, ok, err := e.state.Slot(owner, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownStake
	}
	if slot.closed() {
		return nil, ErrInsufficientBalance
	}
	return slot, nil
}

// accruedInterest computes the interest owed on the slot's full balance over
// the elapsed whole days.
func (e *Engine) accruedInterest(slot *Slot, now int64) (*big.Int, error) {
	days := rewards.WholeDays(slot.StakeDate, now)
	gross, err := rewards.Calculate(slot.Balance, days, e.apy)
	if err != nil {
		return nil, err
	}
	return gross.Sub(gross, slot.Balance), nil
}

// payInterest settles interest against the shared reward pool. The payment is
// all-or-nothing: when the pool cannot cover the full amount nothing moves and
// the caller decides whether that degrades or aborts the operation.
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

func (e *Engine) addTotalStaked(amount *big.Int) error {
	total, err := e.state.TotalStaked()
	if err != nil {
		return err
	}
	return e.state.SetTotalStaked(new(big.Int).Add(total, amount))
}

func (e *Engine) subTotalStaked(amount *big.Int) error {
	total, err := e.state.TotalStaked()
	if err != nil {
		return err
	}
	return e.state.SetTotalStaked(new(big.Int).Sub(total, amount))
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

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
