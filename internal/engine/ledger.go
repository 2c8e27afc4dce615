// Package engine implements the scenario projection core: a pure,
// synchronous fold of transformation actions over portfolio ledgers.
// It holds no state and performs no I/O; callers supply a graph, the
// per-node action parameters, and a base ledger, and receive derived
// ledgers back.
package engine

import (
	"math"
	"sort"
)

// Epsilon is the threshold below which a position's magnitude is treated
// as zero and the position is removed from its ledger.
const Epsilon = 1e-6

// CashTicker is the sentinel ticker for the cash position. Its implicit
// price is always 1 and its value always equals its amount.
const CashTicker = "USD"

// AssetClass categorizes a position for lookup routing and display.
type AssetClass string

const (
	AssetCrypto  AssetClass = "crypto"
	AssetStock   AssetClass = "stock"
	AssetCash    AssetClass = "cash"
	AssetUnknown AssetClass = "unknown"
)

// Position is one holding within a ledger. Price is nil while the market
// price is not yet known; Value is derived and recomputed after every
// mutation, never trusted as input.
type Position struct {
	Ticker string
	Amount float64
	Price  *float64
	Class  AssetClass
	Value  float64
}

// Ledger is the ordered set of positions of one portfolio at one point in
// a chain. All operations return a new ledger; the receiver is never
// mutated, so any prefix snapshot stays valid after further folding.
type Ledger []Position

// positionValue derives a position's value: amount for the cash sentinel,
// zero while the price is unknown, amount*price otherwise.
func positionValue(p Position) float64 {
	if p.Ticker == CashTicker {
		return p.Amount
	}
	if p.Price == nil {
		return 0
	}
	return p.Amount * *p.Price
}

// Clone returns a deep copy of the ledger. Price pointers are copied so
// the clone shares nothing with the receiver.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for i, p := range l {
		if p.Price != nil {
			price := *p.Price
			p.Price = &price
		}
		out[i] = p
	}
	return out
}

// Position returns the position with the given ticker, if present.
func (l Ledger) Position(ticker string) (Position, bool) {
	for _, p := range l {
		if p.Ticker == ticker {
			return p, true
		}
	}
	return Position{}, false
}

// TotalValue sums the derived value of every position.
func (l Ledger) TotalValue() float64 {
	var total float64
	for _, p := range l {
		total += p.Value
	}
	return total
}

// Debit subtracts amount from the position with the given ticker. Unknown
// tickers are a silent no-op: this is a what-if tool, not an execution
// engine, so there is nothing useful to fail with. The position is
// removed once its magnitude falls to Epsilon or below; negative
// overshoot beyond that is allowed to flow through.
func (l Ledger) Debit(ticker string, amount float64) Ledger {
	out := l.Clone()
	for i, p := range out {
		if p.Ticker != ticker {
			continue
		}
		p.Amount -= amount
		if math.Abs(p.Amount) <= Epsilon {
			return append(out[:i], out[i+1:]...)
		}
		p.Value = positionValue(p)
		out[i] = p
		return out
	}
	return out
}

// Credit adds amount to the position with the given ticker, appending a
// new position when none exists. An existing position keeps its own
// last-known price; the supplied price and class only seed new positions.
func (l Ledger) Credit(ticker string, amount, price float64, class AssetClass) Ledger {
	out := l.Clone()
	for i, p := range out {
		if p.Ticker != ticker {
			continue
		}
		p.Amount += amount
		p.Value = positionValue(p)
		out[i] = p
		return out
	}
	p := Position{Ticker: ticker, Amount: amount, Price: &price, Class: class}
	p.Value = positionValue(p)
	return append(out, p)
}

// OverridePrice replaces the stored price of the position with the given
// ticker and recomputes its value. Unknown tickers are a silent no-op.
func (l Ledger) OverridePrice(ticker string, price float64) Ledger {
	out := l.Clone()
	for i, p := range out {
		if p.Ticker != ticker {
			continue
		}
		p.Price = &price
		p.Value = positionValue(p)
		out[i] = p
		return out
	}
	return out
}

// ReconcileCash folds an accumulated cash delta into the USD position,
// creating it at price 1 when needed and removing it when depleted to
// Epsilon or below. A zero delta is a no-op.
func (l Ledger) ReconcileCash(delta float64) Ledger {
	if delta == 0 {
		return l
	}
	out := l.Clone()
	for i, p := range out {
		if p.Ticker != CashTicker {
			continue
		}
		p.Amount += delta
		if math.Abs(p.Amount) <= Epsilon {
			return append(out[:i], out[i+1:]...)
		}
		p.Value = positionValue(p)
		out[i] = p
		return out
	}
	if math.Abs(delta) <= Epsilon {
		return out
	}
	one := 1.0
	p := Position{Ticker: CashTicker, Amount: delta, Price: &one, Class: AssetCash}
	p.Value = positionValue(p)
	return append(out, p)
}

// Revalue returns a copy with every position's derived value recomputed
// from its amount and price. Use it when positions were assembled from
// stored records whose value column is not trusted.
func (l Ledger) Revalue() Ledger {
	out := l.Clone()
	for i, p := range out {
		p.Value = positionValue(p)
		out[i] = p
	}
	return out
}

// SortByValueDesc returns the ledger stably sorted by value descending;
// positions with equal value keep their prior relative order.
func (l Ledger) SortByValueDesc() Ledger {
	out := l.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	return out
}
