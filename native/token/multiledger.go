package token

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MultiLedger is an in-memory multi-unit token implementing the MultiToken
// interface with operator approvals.
type MultiLedger struct {
	mu        sync.RWMutex
	balances  map[common.Address]map[uint64]uint64
	operators map[common.Address]map[common.Address]bool
}

// NewMultiLedger constructs an empty multi-token ledger.
func NewMultiLedger() *MultiLedger {
	return &MultiLedger{
		balances:  make(map[common.Address]map[uint64]uint64),
		operators: make(map[common.Address]map[common.Address]bool),
	}
}

// Mint credits freshly created units of a type to an account.
func (l *MultiLedger) Mint(to common.Address, typeID, amount uint64) {
	if amount == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, typeID, amount)
}

// SetApprovalForAll grants or revokes an operator over all of owner's units.
func (l *MultiLedger) SetApprovalForAll(owner, operator common.Address, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ops, ok := l.operators[owner]
	if !ok {
		ops = make(map[common.Address]bool)
		l.operators[owner] = ops
	}
	if approved {
		ops[operator] = true
		return
	}
	delete(ops, operator)
}

// IsApprovedForAll reports whether operator may move owner's units.
func (l *MultiLedger) IsApprovedForAll(owner, operator common.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.operators[owner][operator]
}

// BalanceOf implements the MultiToken interface.
func (l *MultiLedger) BalanceOf(owner common.Address, typeID uint64) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[owner][typeID]
}

// SafeTransferFrom implements the MultiToken interface.
func (l *MultiLedger) SafeTransferFrom(operator, from, to common.Address, typeID, amount uint64, _ []byte) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.authorize(operator, from); err != nil {
		return err
	}
	return l.move(from, to, typeID, amount)
}

// SafeBatchTransferFrom implements the MultiToken interface. The whole batch
// is validated before any unit moves.
func (l *MultiLedger) SafeBatchTransferFrom(operator, from, to common.Address, typeIDs, amounts []uint64, _ []byte) error {
	if len(typeIDs) == 0 || len(typeIDs) != len(amounts) {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.authorize(operator, from); err != nil {
		return err
	}
	// Aggregate per type id: a batch repeating one id must be checked against
	// the sum, or validation would pass and the sequential moves below could
	// apply a partial transfer.
	need := make(map[uint64]uint64, len(typeIDs))
	for i, typeID := range typeIDs {
		if amounts[i] == 0 {
			return ErrInvalidAmount
		}
		sum := need[typeID] + amounts[i]
		if sum < need[typeID] {
			return ErrInvalidAmount
		}
		need[typeID] = sum
	}
	for typeID, amount := range need {
		if l.balances[from][typeID] < amount {
			return ErrInsufficientBalance
		}
	}
	for i, typeID := range typeIDs {
		if err := l.move(from, to, typeID, amounts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (l *MultiLedger) authorize(operator, from common.Address) error {
	if operator == from || l.operators[from][operator] {
		return nil
	}
	return ErrNotApproved
}

func (l *MultiLedger) move(from, to common.Address, typeID, amount uint64) error {
	held := l.balances[from][typeID]
	if held < amount {
		return ErrInsufficientBalance
	}
	l.balances[from][typeID] = held - amount
	if l.balances[from][typeID] == 0 {
		delete(l.balances[from], typeID)
	}
	l.credit(to, typeID, amount)
	return nil
}

func (l *MultiLedger) credit(to common.Address, typeID, amount uint64) {
	units, ok := l.balances[to]
	if !ok {
		units = make(map[uint64]uint64)
		l.balances[to] = units
	}
	units[typeID] += amount
}
