package engine

// OverridesUpTo builds the ticker→price substitution map visible to a
// node: every valid price target in the chain prefix before it, with
// later targets for the same ticker overwriting earlier ones. An empty
// prefix yields an empty map.
func OverridesUpTo(prefix []string, actions map[string]Action) map[string]float64 {
	overrides := make(map[string]float64)
	for _, id := range prefix {
		pt, ok := actions[id].(PriceTarget)
		if !ok {
			continue
		}
		if pt.Ticker == "" || pt.TargetPrice == nil || *pt.TargetPrice <= 0 {
			continue
		}
		overrides[pt.Ticker] = *pt.TargetPrice
	}
	return overrides
}

// allPriceTargets scans every chain for valid price targets without
// position scoping. The terminal projection applies each target
// unconditionally to the base ledger, unlike the per-node prefix view.
func allPriceTargets(chains [][]string, actions map[string]Action) map[string]float64 {
	overrides := make(map[string]float64)
	for _, chain := range chains {
		for ticker, price := range OverridesUpTo(chain, actions) {
			overrides[ticker] = price
		}
	}
	return overrides
}
