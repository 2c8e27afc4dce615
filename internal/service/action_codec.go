package service

import (
	"encoding/json"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/engine"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// decodeAction converts a stored parameter record into its engine action
// variant. The payload shape is dictated by the record's kind.
func decodeAction(p model.ActionParams) (engine.Action, error) {
	kind, err := engine.ParseNodeKind(p.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case engine.KindRotate:
		var params model.RotateParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode rotate params for node %s: %w", p.NodeID, err)
		}
		return engine.Rotate{
			FromTicker: params.FromTicker,
			SellAmount: params.SellAmount,
			ToTicker:   params.ToTicker,
			ToPrice:    params.ToPrice,
			ToClass:    assetClass(params.ToAssetClass),
		}, nil

	case engine.KindSell:
		var params model.SellParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode sell params for node %s: %w", p.NodeID, err)
		}
		return engine.Sell{
			FromTicker: params.FromTicker,
			SellAmount: params.SellAmount,
		}, nil

	case engine.KindBuy:
		var params model.BuyParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode buy params for node %s: %w", p.NodeID, err)
		}
		return engine.Buy{
			CashAmount: params.CashAmount,
			ToTicker:   params.ToTicker,
			ToPrice:    params.ToPrice,
			ToClass:    assetClass(params.ToAssetClass),
		}, nil

	case engine.KindPriceTarget:
		var params model.PriceTargetParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode price target params for node %s: %w", p.NodeID, err)
		}
		return engine.PriceTarget{
			Ticker:      params.Ticker,
			TargetPrice: params.TargetPrice,
		}, nil

	case engine.KindAllIn:
		var params model.AllInParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode all-in params for node %s: %w", p.NodeID, err)
		}
		return engine.AllIn{
			ToTicker: params.ToTicker,
			ToPrice:  params.ToPrice,
			ToClass:  assetClass(params.ToAssetClass),
		}, nil

	case engine.KindYield:
		var params model.YieldParams
		if err := json.Unmarshal(p.Payload, &params); err != nil {
			return nil, fmt.Errorf("failed to decode yield params for node %s: %w", p.NodeID, err)
		}
		return engine.Yield{
			Ticker:        params.Ticker,
			AnnualRatePct: params.AnnualRatePct,
			Duration:      params.Duration,
			Unit:          engine.DurationUnit(params.DurationUnit),
			Mode:          engine.YieldMode(params.Mode),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrNotAnAction, p.Kind)
}

// validateActionPayload checks that a raw payload decodes as the typed
// params of the given action kind. Called before persisting so malformed
// payloads never reach the store.
func validateActionPayload(kind engine.NodeKind, payload json.RawMessage) error {
	_, err := decodeAction(model.ActionParams{
		NodeID:  "pending",
		Kind:    kind.String(),
		Payload: payload,
	})
	return err
}

// assetClass maps a stored class name to the engine's asset class,
// defaulting to unknown for anything unrecognized.
func assetClass(name string) engine.AssetClass {
	switch engine.AssetClass(name) {
	case engine.AssetCrypto, engine.AssetStock, engine.AssetCash:
		return engine.AssetClass(name)
	}
	return engine.AssetUnknown
}
