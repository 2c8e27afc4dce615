package engine

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

// assertLedgerInvariants checks the invariants every ledger must hold
// after any operation: ticker uniqueness, epsilon removal, and value
// consistency (value == amount*price, or amount for the cash sentinel).
func assertLedgerInvariants(t *testing.T, l Ledger) {
	t.Helper()

	seen := make(map[string]bool)
	for _, p := range l {
		if seen[p.Ticker] {
			t.Errorf("Duplicate ticker %s in ledger", p.Ticker)
		}
		seen[p.Ticker] = true

		if math.Abs(p.Amount) <= Epsilon {
			t.Errorf("Position %s with amount %v should have been removed", p.Ticker, p.Amount)
		}

		switch {
		case p.Ticker == CashTicker:
			if !approxEqual(p.Value, p.Amount) {
				t.Errorf("USD value %v does not equal amount %v", p.Value, p.Amount)
			}
		case p.Price == nil:
			if p.Value != 0 {
				t.Errorf("Position %s without price has value %v, expected 0", p.Ticker, p.Value)
			}
		default:
			if !approxEqual(p.Value, p.Amount**p.Price) {
				t.Errorf("Position %s value %v does not equal amount*price %v", p.Ticker, p.Value, p.Amount**p.Price)
			}
		}
	}
}

func TestLedgerDebit(t *testing.T) {
	t.Run("subtracts amount and recomputes value", func(t *testing.T) {
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)

		got := base.Debit("BTC", 0.5)

		pos, ok := got.Position("BTC")
		if !ok {
			t.Fatal("Expected BTC position to remain")
		}
		if !approxEqual(pos.Amount, 0.5) {
			t.Errorf("Expected amount 0.5, got %v", pos.Amount)
		}
		if !approxEqual(pos.Value, 25000) {
			t.Errorf("Expected value 25000, got %v", pos.Value)
		}
		assertLedgerInvariants(t, got)
	})

	t.Run("unknown ticker is a silent no-op", func(t *testing.T) {
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)

		got := base.Debit("ETH", 3)

		if len(got) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(got))
		}
		if !approxEqual(got[0].Amount, 1) {
			t.Errorf("Expected BTC untouched at amount 1, got %v", got[0].Amount)
		}
	})

	t.Run("removes position depleted to zero", func(t *testing.T) {
		base := Ledger{}.Credit("SOL", 10, 100, AssetCrypto)

		got := base.Debit("SOL", 10)

		if _, ok := got.Position("SOL"); ok {
			t.Error("Expected SOL position to be removed at zero")
		}
		assertLedgerInvariants(t, got)
	})

	t.Run("removes position within epsilon of zero", func(t *testing.T) {
		base := Ledger{}.Credit("SOL", 10, 100, AssetCrypto)

		got := base.Debit("SOL", 10-5e-7)

		if _, ok := got.Position("SOL"); ok {
			t.Error("Expected SOL position within epsilon to be removed")
		}
	})

	t.Run("negative overshoot beyond epsilon flows through", func(t *testing.T) {
		base := Ledger{}.Credit("SOL", 10, 100, AssetCrypto)

		got := base.Debit("SOL", 12)

		pos, ok := got.Position("SOL")
		if !ok {
			t.Fatal("Expected negative SOL position to remain")
		}
		if !approxEqual(pos.Amount, -2) {
			t.Errorf("Expected amount -2, got %v", pos.Amount)
		}
		if !approxEqual(pos.Value, -200) {
			t.Errorf("Expected value -200, got %v", pos.Value)
		}
	})

	t.Run("does not mutate the input ledger", func(t *testing.T) {
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)

		base.Debit("BTC", 0.5)

		if !approxEqual(base[0].Amount, 1) {
			t.Errorf("Input ledger mutated: amount %v", base[0].Amount)
		}
	})
}

func TestLedgerCredit(t *testing.T) {
	t.Run("appends new position with supplied price and class", func(t *testing.T) {
		got := Ledger{}.Credit("ETH", 10, 2500, AssetCrypto)

		pos, ok := got.Position("ETH")
		if !ok {
			t.Fatal("Expected ETH position")
		}
		if !approxEqual(pos.Value, 25000) {
			t.Errorf("Expected value 25000, got %v", pos.Value)
		}
		if pos.Class != AssetCrypto {
			t.Errorf("Expected class crypto, got %s", pos.Class)
		}
		assertLedgerInvariants(t, got)
	})

	t.Run("existing position keeps its own price", func(t *testing.T) {
		base := Ledger{}.Credit("ETH", 10, 2500, AssetCrypto)

		got := base.Credit("ETH", 10, 9999, AssetCrypto)

		pos, _ := got.Position("ETH")
		if !approxEqual(pos.Amount, 20) {
			t.Errorf("Expected amount 20, got %v", pos.Amount)
		}
		if pos.Price == nil || !approxEqual(*pos.Price, 2500) {
			t.Errorf("Expected stored price 2500 to be kept, got %v", pos.Price)
		}
		if !approxEqual(pos.Value, 50000) {
			t.Errorf("Expected value 50000 at stored price, got %v", pos.Value)
		}
	})
}

func TestLedgerOverridePrice(t *testing.T) {
	t.Run("sets price and recomputes value", func(t *testing.T) {
		base := Ledger{}.Credit("AAPL", 100, 150, AssetStock)

		got := base.OverridePrice("AAPL", 200)

		pos, _ := got.Position("AAPL")
		if pos.Price == nil || !approxEqual(*pos.Price, 200) {
			t.Errorf("Expected price 200, got %v", pos.Price)
		}
		if !approxEqual(pos.Value, 20000) {
			t.Errorf("Expected value 20000, got %v", pos.Value)
		}
	})

	t.Run("unknown ticker is a silent no-op", func(t *testing.T) {
		base := Ledger{}.Credit("AAPL", 100, 150, AssetStock)

		got := base.OverridePrice("MSFT", 400)

		if len(got) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(got))
		}
		if !approxEqual(got[0].Value, 15000) {
			t.Errorf("Expected AAPL value unchanged at 15000, got %v", got[0].Value)
		}
	})
}

func TestLedgerReconcileCash(t *testing.T) {
	t.Run("creates USD position at price 1", func(t *testing.T) {
		got := Ledger{}.ReconcileCash(30000)

		pos, ok := got.Position(CashTicker)
		if !ok {
			t.Fatal("Expected USD position")
		}
		if !approxEqual(pos.Amount, 30000) || !approxEqual(pos.Value, 30000) {
			t.Errorf("Expected amount and value 30000, got %v / %v", pos.Amount, pos.Value)
		}
		if pos.Class != AssetCash {
			t.Errorf("Expected class cash, got %s", pos.Class)
		}
		assertLedgerInvariants(t, got)
	})

	t.Run("adds delta to existing USD position", func(t *testing.T) {
		base := Ledger{}.ReconcileCash(1000)

		got := base.ReconcileCash(-400)

		pos, _ := got.Position(CashTicker)
		if !approxEqual(pos.Amount, 600) {
			t.Errorf("Expected amount 600, got %v", pos.Amount)
		}
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)

		got := base.ReconcileCash(0)

		if len(got) != 1 {
			t.Errorf("Expected no USD position for zero delta, got %d positions", len(got))
		}
	})

	t.Run("removes USD position depleted below epsilon", func(t *testing.T) {
		base := Ledger{}.ReconcileCash(1000)

		got := base.ReconcileCash(-1000)

		if _, ok := got.Position(CashTicker); ok {
			t.Error("Expected depleted USD position to be removed")
		}
	})
}

func TestLedgerSortByValueDesc(t *testing.T) {
	t.Run("sorts descending by value", func(t *testing.T) {
		l := Ledger{}.
			Credit("ETH", 5, 2000, AssetCrypto).
			Credit("BTC", 1, 50000, AssetCrypto).
			Credit("SOL", 10, 100, AssetCrypto)

		got := l.SortByValueDesc()

		want := []string{"BTC", "ETH", "SOL"}
		for i, ticker := range want {
			if got[i].Ticker != ticker {
				t.Errorf("Position %d: expected %s, got %s", i, ticker, got[i].Ticker)
			}
		}
	})

	t.Run("unknown prices sort as zero value and ties keep order", func(t *testing.T) {
		l := Ledger{
			{Ticker: "AAA", Amount: 1},
			{Ticker: "BBB", Amount: 2},
		}
		l = append(l, Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)...)

		got := l.SortByValueDesc()

		if got[0].Ticker != "BTC" {
			t.Errorf("Expected BTC first, got %s", got[0].Ticker)
		}
		if got[1].Ticker != "AAA" || got[2].Ticker != "BBB" {
			t.Errorf("Expected stable order AAA,BBB for zero-value ties, got %s,%s", got[1].Ticker, got[2].Ticker)
		}
	})
}
