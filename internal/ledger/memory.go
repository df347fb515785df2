// internal/ledger/memory.go
package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryLedger is an in-process AssetLedger for development and tests.
type MemoryLedger struct {
	mu        sync.RWMutex
	owners    map[uint64]string
	approvals map[uint64]map[string]bool

	// FailTransferFor makes Transfer refuse moves of the given asset ids.
	failTransfer map[uint64]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		owners:       make(map[uint64]string),
		approvals:    make(map[uint64]map[string]bool),
		failTransfer: make(map[uint64]bool),
	}
}

func (l *MemoryLedger) Mint(owner string, assetID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owners[assetID] = owner
}

func (l *MemoryLedger) Approve(assetID uint64, spender string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.approvals[assetID] == nil {
		l.approvals[assetID] = make(map[string]bool)
	}
	l.approvals[assetID][spender] = true
}

func (l *MemoryLedger) FailTransferFor(assetID uint64, fail bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failTransfer[assetID] = fail
}

func (l *MemoryLedger) OwnerOf(assetID uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, ok := l.owners[assetID]
	if !ok {
		return "", fmt.Errorf("asset %d does not exist", assetID)
	}
	return owner, nil
}

func (l *MemoryLedger) IsApprovedForTransfer(assetID uint64, spender string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.owners[assetID]; !ok {
		return false, fmt.Errorf("asset %d does not exist", assetID)
	}
	return l.approvals[assetID][spender], nil
}

func (l *MemoryLedger) Transfer(from, to string, assetID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failTransfer[assetID] {
		return fmt.Errorf("transfer of asset %d refused", assetID)
	}

	owner, ok := l.owners[assetID]
	if !ok {
		return fmt.Errorf("asset %d does not exist", assetID)
	}
	if owner != from {
		return fmt.Errorf("asset %d is not held by %s", assetID, from)
	}

	l.owners[assetID] = to
	// A transfer voids previous approvals.
	delete(l.approvals, assetID)
	return nil
}

// MemoryPayments is an in-process PaymentProvider for development and tests.
// It keeps per-recipient running balances and can be told to reject specific
// recipients to exercise the pull-payment path.
type MemoryPayments struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	rejected map[string]bool
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{
		balances: make(map[string]decimal.Decimal),
		rejected: make(map[string]bool),
	}
}

func (p *MemoryPayments) RejectRecipient(recipient string, reject bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejected[recipient] = reject
}

func (p *MemoryPayments) Pay(recipient string, amount decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rejected[recipient] {
		return fmt.Errorf("recipient %s refuses payment", recipient)
	}
	if amount.IsNegative() {
		return fmt.Errorf("negative payment amount %s", amount)
	}

	p.balances[recipient] = p.balances[recipient].Add(amount)
	return nil
}

func (p *MemoryPayments) BalanceOf(recipient string) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balances[recipient]
}
