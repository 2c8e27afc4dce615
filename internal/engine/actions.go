package engine

import "math"

// Action is the single polymorphic parameter set attached to an action
// node. Each variant carries everything needed to re-evaluate the node
// against whatever upstream ledger snapshot the resolver supplies.
type Action interface {
	Kind() NodeKind
}

// Rotate moves value from one asset into another: debit FromTicker by
// SellAmount, credit ToTicker with sellAmount*fromPrice/toPrice.
type Rotate struct {
	FromTicker string
	SellAmount float64
	ToTicker   string
	ToPrice    *float64
	ToClass    AssetClass
}

func (Rotate) Kind() NodeKind { return KindRotate }

// Sell liquidates SellAmount of FromTicker into the cash accumulator.
type Sell struct {
	FromTicker string
	SellAmount float64
}

func (Sell) Kind() NodeKind { return KindSell }

// Buy spends CashAmount of accumulated cash on ToTicker at ToPrice.
type Buy struct {
	CashAmount float64
	ToTicker   string
	ToPrice    *float64
	ToClass    AssetClass
}

func (Buy) Kind() NodeKind { return KindBuy }

// PriceTarget substitutes a hypothetical price for Ticker, effective for
// this node's snapshot and for every action downstream of it in the
// chain. It never mutates amounts.
type PriceTarget struct {
	Ticker      string
	TargetPrice *float64
}

func (PriceTarget) Kind() NodeKind { return KindPriceTarget }

// AllIn liquidates the whole ledger and puts the entire portfolio value
// into ToTicker.
type AllIn struct {
	ToTicker string
	ToPrice  *float64
	ToClass  AssetClass
}

func (AllIn) Kind() NodeKind { return KindAllIn }

// DurationUnit is the unit of a yield projection's duration.
type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitWeeks  DurationUnit = "weeks"
	UnitMonths DurationUnit = "months"
	UnitYears  DurationUnit = "years"
)

// YieldMode selects how a yield projection is denominated.
type YieldMode string

const (
	// ModeStaking expresses the projected yield in units of the asset.
	ModeStaking YieldMode = "staking"
	// ModeDividend expresses the projected yield in cash.
	ModeDividend YieldMode = "dividend"
)

// Yield is a read-only projection of accrued yield on a held position.
// It is informational only and is never folded into the ledger.
type Yield struct {
	Ticker        string
	AnnualRatePct float64
	Duration      float64
	Unit          DurationUnit
	Mode          YieldMode
}

func (Yield) Kind() NodeKind { return KindYield }

// effectivePrice resolves the price to use for a credit target: a chain
// override for the ticker wins over the price captured on the action.
// The second return is false when no positive price is available, which
// renders the action inactive.
func effectivePrice(overrides map[string]float64, ticker string, captured *float64) (float64, bool) {
	if v, ok := overrides[ticker]; ok && v > 0 {
		return v, true
	}
	if captured != nil && *captured > 0 {
		return *captured, true
	}
	return 0, false
}

// ledgerPrice resolves the unit price of a held position: 1 for the cash
// sentinel, the stored price otherwise. False when the price is unknown.
func ledgerPrice(p Position) (float64, bool) {
	if p.Ticker == CashTicker {
		return 1, true
	}
	if p.Price == nil || *p.Price <= 0 {
		return 0, false
	}
	return *p.Price, true
}

// Apply executes one action against a ledger snapshot and returns the new
// snapshot plus the action's cash delta. An action whose required inputs
// are missing (zero sell amount, unknown price, absent position)
// contributes nothing: it is inactive, not an error. Yield nodes are
// read-only and always pass the ledger through unchanged; use
// ComputeYield for their side-output.
func Apply(l Ledger, act Action, overrides map[string]float64) (Ledger, float64) {
	switch a := act.(type) {
	case Rotate:
		return applyRotate(l, a, overrides), 0
	case Sell:
		return applySell(l, a)
	case Buy:
		return applyBuy(l, a, overrides)
	case PriceTarget:
		return applyPriceTarget(l, a), 0
	case AllIn:
		return applyAllIn(l, a, overrides), 0
	case Yield:
		return l, 0
	}
	return l, 0
}

func applyRotate(l Ledger, a Rotate, overrides map[string]float64) Ledger {
	if a.SellAmount <= 0 {
		return l
	}
	toPrice, ok := effectivePrice(overrides, a.ToTicker, a.ToPrice)
	if !ok {
		return l
	}
	from, ok := l.Position(a.FromTicker)
	if !ok {
		return l
	}
	fromPrice, ok := ledgerPrice(from)
	if !ok {
		return l
	}
	buyAmount := a.SellAmount * fromPrice / toPrice
	l = l.Debit(a.FromTicker, a.SellAmount)
	return l.Credit(a.ToTicker, buyAmount, toPrice, a.ToClass)
}

func applySell(l Ledger, a Sell) (Ledger, float64) {
	if a.SellAmount <= 0 {
		return l, 0
	}
	from, ok := l.Position(a.FromTicker)
	if !ok {
		return l, 0
	}
	fromPrice, ok := ledgerPrice(from)
	if !ok {
		return l, 0
	}
	// Value and amount stay consistent regardless of which unit the user
	// typed: sellValue is always sellAmount * price.
	sellValue := a.SellAmount * fromPrice
	return l.Debit(a.FromTicker, a.SellAmount), sellValue
}

func applyBuy(l Ledger, a Buy, overrides map[string]float64) (Ledger, float64) {
	if a.CashAmount <= 0 {
		return l, 0
	}
	toPrice, ok := effectivePrice(overrides, a.ToTicker, a.ToPrice)
	if !ok {
		return l, 0
	}
	buyAmount := a.CashAmount / toPrice
	return l.Credit(a.ToTicker, buyAmount, toPrice, a.ToClass), -a.CashAmount
}

func applyPriceTarget(l Ledger, a PriceTarget) Ledger {
	if a.TargetPrice == nil || *a.TargetPrice <= 0 {
		return l
	}
	return l.OverridePrice(a.Ticker, *a.TargetPrice)
}

// applyAllIn liquidates every position and credits the target with the
// pre-action total. The total is computed once upfront so the result does
// not depend on the order positions are liquidated in.
func applyAllIn(l Ledger, a AllIn, overrides map[string]float64) Ledger {
	toPrice, ok := effectivePrice(overrides, a.ToTicker, a.ToPrice)
	if !ok {
		return l
	}
	total := l.TotalValue()
	out := l
	for _, p := range l {
		out = out.Debit(p.Ticker, p.Amount)
	}
	buyAmount := total / toPrice
	if math.Abs(buyAmount) <= Epsilon {
		return out
	}
	return out.Credit(a.ToTicker, buyAmount, toPrice, a.ToClass)
}

// YieldResult is the informational side-output of a yield node.
type YieldResult struct {
	Years float64
	// Value is the projected yield in cash terms.
	Value float64
	// Amount is the projected yield in units of the asset; set only in
	// staking mode.
	Amount *float64
}

// yearsDivisor converts a duration amount in the given unit to years.
var yearsDivisor = map[DurationUnit]float64{
	UnitDays:   365,
	UnitWeeks:  52,
	UnitMonths: 12,
	UnitYears:  1,
}

// ComputeYield evaluates a yield node against a ledger snapshot. It
// reports false when the node cannot be evaluated: unknown duration unit,
// non-positive rate or duration, or (in staking mode) an unresolvable
// asset price.
func ComputeYield(l Ledger, a Yield) (YieldResult, bool) {
	div, ok := yearsDivisor[a.Unit]
	if !ok || a.Duration <= 0 || a.AnnualRatePct <= 0 {
		return YieldResult{}, false
	}
	pos, ok := l.Position(a.Ticker)
	if !ok {
		return YieldResult{}, false
	}
	years := a.Duration / div
	value := positionValue(pos) * (a.AnnualRatePct / 100) * years
	res := YieldResult{Years: years, Value: value}
	if a.Mode == ModeStaking {
		price, ok := ledgerPrice(pos)
		if !ok {
			return YieldResult{}, false
		}
		amount := value / price
		res.Amount = &amount
	}
	return res, true
}
