package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAmount         = errors.New("token: amount must be positive")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrNotApproved           = errors.New("token: operator not approved")
)

// Ledger is an in-memory fungible token implementing the Token interface with
// allowance bookkeeping, used by the engine tests and local wiring.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

// NewLedger constructs an empty fungible ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Mint credits freshly created units to an account.
func (l *Ledger) Mint(to common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
}

// Approve grants the spender an allowance over the owner's balance. The
// allowance replaces any previous grant, matching ERC-20 approve semantics.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[common.Address]*big.Int)
		l.allowances[owner] = grants
	}
	if amount == nil || amount.Sign() <= 0 {
		delete(grants, spender)
		return
	}
	grants[spender] = new(big.Int).Set(amount)
}

// Allowance reports the remaining grant from owner to spender.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if grant, ok := l.allowances[owner][spender]; ok {
		return new(big.Int).Set(grant)
	}
	return big.NewInt(0)
}

// BalanceOf implements the Token interface.
func (l *Ledger) BalanceOf(owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[owner]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Transfer implements the Token interface.
func (l *Ledger) Transfer(sender, recipient common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(sender, recipient, amount)
}

// TransferFrom implements the Token interface, consuming the spender's
// allowance unless the spender moves their own funds.
func (l *Ledger) TransferFrom(spender, owner, recipient common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if spender != owner {
		grant, ok := l.allowances[owner][spender]
		if !ok || grant.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if err := l.move(owner, recipient, amount); err != nil {
			return err
		}
		grant.Sub(grant, amount)
		if grant.Sign() == 0 {
			delete(l.allowances[owner], spender)
		}
		return nil
	}
	return l.move(owner, recipient, amount)
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	if bal, ok := l.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}
