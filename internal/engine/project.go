package engine

// Project folds every chain of the given portfolio into its final
// projected ledger:
//
//  1. every price target across all chains is applied to the base clone,
//  2. actions are folded in chain order with per-chain override scoping
//     and a running cash accumulator,
//  3. the accumulator is reconciled into the USD position,
//  4. the result is stably sorted by value descending.
//
// The fold is deterministic: identical graph shape and parameters always
// produce an identical ledger.
func Project(g *Graph, portfolioID string, base Ledger, actions map[string]Action) (Ledger, error) {
	chains, err := g.ChainsFrom(portfolioID)
	if err != nil {
		return nil, err
	}
	out := base.Clone()
	targets := allPriceTargets(chains, actions)
	for _, p := range out {
		if price, ok := targets[p.Ticker]; ok {
			out = out.OverridePrice(p.Ticker, price)
		}
	}
	var cash float64
	for _, chain := range chains {
		overrides := make(map[string]float64)
		for _, id := range chain {
			act, ok := actions[id]
			if !ok {
				continue
			}
			var delta float64
			out, delta = Apply(out, act, overrides)
			cash += delta
			if pt, ok := act.(PriceTarget); ok && pt.Ticker != "" && pt.TargetPrice != nil && *pt.TargetPrice > 0 {
				overrides[pt.Ticker] = *pt.TargetPrice
			}
		}
	}
	out = out.ReconcileCash(cash)
	return out.SortByValueDesc(), nil
}

// LedgerBefore computes the intermediate ledger a node's editing panel
// shows: the base holdings with every action strictly before the node
// applied, plus the cash accumulated so far. The node's own action is not
// applied; price overrides are scoped to the prefix.
func LedgerBefore(g *Graph, portfolioID string, base Ledger, actions map[string]Action, nodeID string) (Ledger, float64, error) {
	prefix, err := g.PrefixBefore(portfolioID, nodeID)
	if err != nil {
		return nil, 0, err
	}
	out := base.Clone()
	overrides := make(map[string]float64)
	var cash float64
	for _, id := range prefix {
		act, ok := actions[id]
		if !ok {
			continue
		}
		var delta float64
		out, delta = Apply(out, act, overrides)
		cash += delta
		if pt, ok := act.(PriceTarget); ok && pt.Ticker != "" && pt.TargetPrice != nil && *pt.TargetPrice > 0 {
			overrides[pt.Ticker] = *pt.TargetPrice
		}
	}
	return out, cash, nil
}

// OverridesFor exposes the substitution map a node sees, so callers can
// mark "(from target)" prices in per-node displays.
func OverridesFor(g *Graph, portfolioID, nodeID string, actions map[string]Action) (map[string]float64, error) {
	prefix, err := g.PrefixBefore(portfolioID, nodeID)
	if err != nil {
		return nil, err
	}
	return OverridesUpTo(prefix, actions), nil
}
