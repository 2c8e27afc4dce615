package engine

import (
	"reflect"
	"testing"
)

func TestProject(t *testing.T) {
	t.Run("sell then buy accumulates cash into USD", func(t *testing.T) {
		g := NewGraph(
			[]Node{
				{ID: "p1", Kind: KindPortfolio},
				{ID: "sell", Kind: KindSell},
				{ID: "buy", Kind: KindBuy},
				{ID: "proj", Kind: KindProjection},
			},
			[]Edge{
				{From: "p1", To: "sell"},
				{From: "sell", To: "buy"},
				{From: "buy", To: "proj"},
			},
		)
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)
		actions := map[string]Action{
			"sell": Sell{FromTicker: "BTC", SellAmount: 1},
			"buy":  Buy{CashAmount: 20000, ToTicker: "ETH", ToPrice: fptr(2000), ToClass: AssetCrypto},
		}

		got, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("Expected 2 positions, got %d: %+v", len(got), got)
		}
		// Sorted by value descending: USD 30000 first, then ETH 20000.
		if got[0].Ticker != CashTicker || !approxEqual(got[0].Amount, 30000) {
			t.Errorf("Expected USD 30000 first, got %s %v", got[0].Ticker, got[0].Amount)
		}
		if got[1].Ticker != "ETH" || !approxEqual(got[1].Amount, 10) || !approxEqual(got[1].Value, 20000) {
			t.Errorf("Expected ETH 10/20000, got %s %v/%v", got[1].Ticker, got[1].Amount, got[1].Value)
		}
		assertLedgerInvariants(t, got)
	})

	t.Run("price target only affects downstream actions", func(t *testing.T) {
		base := Ledger{}.Credit("AAA", 10, 100, AssetCrypto)
		nodes := []Node{
			{ID: "p1", Kind: KindPortfolio},
			{ID: "n1", Kind: KindPriceTarget},
			{ID: "n2", Kind: KindRotate},
			{ID: "proj", Kind: KindProjection},
		}
		rotate := Rotate{FromTicker: "AAA", SellAmount: 10, ToTicker: "XXX", ToPrice: fptr(100), ToClass: AssetCrypto}
		target := PriceTarget{Ticker: "XXX", TargetPrice: fptr(200)}

		t.Run("target before rotate governs the rotate price", func(t *testing.T) {
			g := NewGraph(nodes, []Edge{
				{From: "p1", To: "n1"},
				{From: "n1", To: "n2"},
				{From: "n2", To: "proj"},
			})
			actions := map[string]Action{"n1": target, "n2": rotate}

			got, err := Project(g, "p1", base, actions)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			xxx, _ := got.Position("XXX")
			// 10*100 of value at the 200 target price buys 5 units.
			if !approxEqual(xxx.Amount, 5) {
				t.Errorf("Expected 5 XXX at target price 200, got %v", xxx.Amount)
			}
		})

		t.Run("target after rotate leaves the rotate unaffected", func(t *testing.T) {
			g := NewGraph(nodes, []Edge{
				{From: "p1", To: "n2"},
				{From: "n2", To: "n1"},
				{From: "n1", To: "proj"},
			})
			actions := map[string]Action{"n1": target, "n2": rotate}

			got, err := Project(g, "p1", base, actions)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			xxx, _ := got.Position("XXX")
			if !approxEqual(xxx.Amount, 10) {
				t.Errorf("Expected 10 XXX at captured price 100, got %v", xxx.Amount)
			}
			// The projection still applies the target to the resulting
			// position's price for display.
			if xxx.Price == nil || !approxEqual(*xxx.Price, 100) {
				t.Errorf("Expected XXX credited at price 100, got %v", xxx.Price)
			}
		})
	})

	t.Run("later price targets for the same ticker win", func(t *testing.T) {
		g := NewGraph(
			[]Node{
				{ID: "p1", Kind: KindPortfolio},
				{ID: "t1", Kind: KindPriceTarget},
				{ID: "t2", Kind: KindPriceTarget},
				{ID: "rot", Kind: KindRotate},
				{ID: "proj", Kind: KindProjection},
			},
			[]Edge{
				{From: "p1", To: "t1"},
				{From: "t1", To: "t2"},
				{From: "t2", To: "rot"},
				{From: "rot", To: "proj"},
			},
		)
		base := Ledger{}.Credit("AAA", 1, 1000, AssetCrypto)
		actions := map[string]Action{
			"t1":  PriceTarget{Ticker: "XXX", TargetPrice: fptr(100)},
			"t2":  PriceTarget{Ticker: "XXX", TargetPrice: fptr(500)},
			"rot": Rotate{FromTicker: "AAA", SellAmount: 1, ToTicker: "XXX", ToPrice: fptr(50), ToClass: AssetCrypto},
		}

		got, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		xxx, _ := got.Position("XXX")
		if !approxEqual(xxx.Amount, 2) {
			t.Errorf("Expected last target (500) to govern: 2 XXX, got %v", xxx.Amount)
		}
	})

	t.Run("price targets apply to matching base positions unconditionally", func(t *testing.T) {
		g := NewGraph(
			[]Node{
				{ID: "p1", Kind: KindPortfolio},
				{ID: "t1", Kind: KindPriceTarget},
				{ID: "proj", Kind: KindProjection},
			},
			[]Edge{
				{From: "p1", To: "t1"},
				{From: "t1", To: "proj"},
			},
		)
		base := Ledger{}.Credit("BTC", 2, 50000, AssetCrypto)
		actions := map[string]Action{
			"t1": PriceTarget{Ticker: "BTC", TargetPrice: fptr(100000)},
		}

		got, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		btc, _ := got.Position("BTC")
		if !approxEqual(btc.Value, 200000) {
			t.Errorf("Expected BTC valued at the target, got %v", btc.Value)
		}
	})

	t.Run("cash from parallel chains reconciles once", func(t *testing.T) {
		g := NewGraph(
			[]Node{
				{ID: "p1", Kind: KindPortfolio},
				{ID: "s1", Kind: KindSell},
				{ID: "s2", Kind: KindSell},
				{ID: "proj", Kind: KindProjection},
			},
			[]Edge{
				{From: "p1", To: "s1"},
				{From: "p1", To: "s2"},
				{From: "s1", To: "proj"},
				{From: "s2", To: "proj"},
			},
		)
		base := Ledger{}.
			Credit("BTC", 1, 50000, AssetCrypto).
			Credit("ETH", 10, 2000, AssetCrypto)
		actions := map[string]Action{
			"s1": Sell{FromTicker: "BTC", SellAmount: 1},
			"s2": Sell{FromTicker: "ETH", SellAmount: 10},
		}

		got, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(got) != 1 {
			t.Fatalf("Expected single USD position, got %d", len(got))
		}
		if got[0].Ticker != CashTicker || !approxEqual(got[0].Amount, 70000) {
			t.Errorf("Expected USD 70000, got %s %v", got[0].Ticker, got[0].Amount)
		}
	})

	t.Run("actions without stored parameters are skipped", func(t *testing.T) {
		g := buildChainGraph()
		base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)

		got, err := Project(g, "p1", base, map[string]Action{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(got) != 1 || !approxEqual(got[0].Amount, 1) {
			t.Errorf("Expected base ledger unchanged, got %+v", got)
		}
	})

	t.Run("projection is deterministic and idempotent", func(t *testing.T) {
		g := NewGraph(
			[]Node{
				{ID: "p1", Kind: KindPortfolio},
				{ID: "t1", Kind: KindPriceTarget},
				{ID: "rot", Kind: KindRotate},
				{ID: "sell", Kind: KindSell},
				{ID: "proj", Kind: KindProjection},
			},
			[]Edge{
				{From: "p1", To: "t1"},
				{From: "t1", To: "rot"},
				{From: "rot", To: "sell"},
				{From: "sell", To: "proj"},
			},
		)
		base := Ledger{}.
			Credit("BTC", 1, 50000, AssetCrypto).
			Credit("ETH", 10, 2000, AssetCrypto)
		actions := map[string]Action{
			"t1":   PriceTarget{Ticker: "SOL", TargetPrice: fptr(200)},
			"rot":  Rotate{FromTicker: "BTC", SellAmount: 0.5, ToTicker: "SOL", ToPrice: fptr(150), ToClass: AssetCrypto},
			"sell": Sell{FromTicker: "ETH", SellAmount: 4},
		}

		first, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		second, err := Project(g, "p1", base, actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Errorf("Projection not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
		}
		assertLedgerInvariants(t, first)
	})
}

func TestLedgerBefore(t *testing.T) {
	g := NewGraph(
		[]Node{
			{ID: "p1", Kind: KindPortfolio},
			{ID: "sell", Kind: KindSell},
			{ID: "buy", Kind: KindBuy},
			{ID: "proj", Kind: KindProjection},
		},
		[]Edge{
			{From: "p1", To: "sell"},
			{From: "sell", To: "buy"},
			{From: "buy", To: "proj"},
		},
	)
	base := Ledger{}.Credit("BTC", 1, 50000, AssetCrypto)
	actions := map[string]Action{
		"sell": Sell{FromTicker: "BTC", SellAmount: 0.4},
		"buy":  Buy{CashAmount: 10000, ToTicker: "ETH", ToPrice: fptr(2000), ToClass: AssetCrypto},
	}

	t.Run("first node sees the untouched base", func(t *testing.T) {
		got, cash, err := LedgerBefore(g, "p1", base, actions, "sell")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cash != 0 {
			t.Errorf("Expected no cash before the first node, got %v", cash)
		}
		if len(got) != 1 || !approxEqual(got[0].Amount, 1) {
			t.Errorf("Expected base ledger, got %+v", got)
		}
	})

	t.Run("later node sees prior actions and accumulated cash", func(t *testing.T) {
		got, cash, err := LedgerBefore(g, "p1", base, actions, "buy")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !approxEqual(cash, 20000) {
			t.Errorf("Expected cash 20000 from the upstream sell, got %v", cash)
		}
		btc, _ := got.Position("BTC")
		if !approxEqual(btc.Amount, 0.6) {
			t.Errorf("Expected BTC 0.6 after upstream sell, got %v", btc.Amount)
		}
		if _, ok := got.Position("ETH"); ok {
			t.Error("The node's own buy must not be applied to its snapshot")
		}
	})
}

func TestOverridesFor(t *testing.T) {
	g := NewGraph(
		[]Node{
			{ID: "p1", Kind: KindPortfolio},
			{ID: "t1", Kind: KindPriceTarget},
			{ID: "rot", Kind: KindRotate},
			{ID: "proj", Kind: KindProjection},
		},
		[]Edge{
			{From: "p1", To: "t1"},
			{From: "t1", To: "rot"},
			{From: "rot", To: "proj"},
		},
	)
	actions := map[string]Action{
		"t1": PriceTarget{Ticker: "SOL", TargetPrice: fptr(200)},
	}

	t.Run("downstream node sees the override", func(t *testing.T) {
		ov, err := OverridesFor(g, "p1", "rot", actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !approxEqual(ov["SOL"], 200) {
			t.Errorf("Expected SOL override 200, got %v", ov)
		}
	})

	t.Run("the target node itself does not see its own override", func(t *testing.T) {
		ov, err := OverridesFor(g, "p1", "t1", actions)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(ov) != 0 {
			t.Errorf("Expected empty override map, got %v", ov)
		}
	})
}
