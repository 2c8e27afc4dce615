package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/handlers"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/testutil"
)

func TestScenarioHandler_CreateScenario(t *testing.T) {
	t.Run("creates a scenario and returns the graph", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		body := strings.NewReader(`{"name": "Rotation plan", "description": "move into ETH"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/scenario", body)
		w := httptest.NewRecorder()

		handler.CreateScenario(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var graph service.ScenarioGraph
		if err := json.NewDecoder(w.Body).Decode(&graph); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if graph.Scenario.Name != "Rotation plan" {
			t.Errorf("Expected name 'Rotation plan', got %q", graph.Scenario.Name)
		}
		if len(graph.Nodes) != 1 || graph.Nodes[0].Kind != "portfolio" {
			t.Errorf("Expected one portfolio node, got %+v", graph.Nodes)
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/scenario", strings.NewReader(`{`))
		w := httptest.NewRecorder()

		handler.CreateScenario(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestScenarioHandler_GetScenario(t *testing.T) {
	t.Run("returns 404 for an unknown scenario", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/scenario/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.GetScenario(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("returns the full graph", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		scenario := testutil.CreateScenario(t, db, "Graph")
		portfolio := testutil.CreatePortfolioNode(t, db, scenario.ID)
		testutil.NewHolding(portfolio.ID, "BTC", 1).WithPrice(50000).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/scenario/"+scenario.ID, map[string]string{"uuid": scenario.ID})
		w := httptest.NewRecorder()

		handler.GetScenario(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var graph service.ScenarioGraph
		if err := json.NewDecoder(w.Body).Decode(&graph); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(graph.Holdings) != 1 || graph.Holdings[0].Ticker != "BTC" {
			t.Errorf("Expected one BTC holding, got %+v", graph.Holdings)
		}
	})
}

func TestScenarioHandler_Projection(t *testing.T) {
	t.Run("requires a valid portfolio_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		scenario := testutil.CreateScenario(t, db, "Projection")
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/scenario/"+scenario.ID+"/projection",
			map[string]string{"uuid": scenario.ID},
		)
		w := httptest.NewRecorder()

		handler.Projection(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("returns the projected ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		scenario := testutil.CreateScenario(t, db, "Projection")
		portfolio := testutil.CreatePortfolioNode(t, db, scenario.ID)
		testutil.NewHolding(portfolio.ID, "BTC", 1).WithPrice(50000).WithAssetClass("crypto").Build(t, db)

		sell, err := svc.AddActionNode(scenario.ID, portfolio.ID, "sell", "")
		if err != nil {
			t.Fatalf("AddActionNode() returned unexpected error: %v", err)
		}
		testutil.SetActionParams(t, db, sell.ID, "sell", model.SellParams{
			FromTicker: "BTC",
			SellAmount: 0.5,
		})

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/scenario/"+scenario.ID+"/projection?portfolio_id="+portfolio.ID,
			map[string]string{"uuid": scenario.ID},
		)
		w := httptest.NewRecorder()

		handler.Projection(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result service.ProjectionResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(result.Projected) != 2 {
			t.Fatalf("Expected 2 projected positions, got %+v", result.Projected)
		}
		if result.ProjectedTotal != 50000 {
			t.Errorf("Expected total 50000, got %v", result.ProjectedTotal)
		}
	})
}

func TestScenarioHandler_DeleteScenario(t *testing.T) {
	t.Run("deletes an existing scenario", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestScenarioService(t, db)
		handler := handlers.NewScenarioHandler(svc)

		scenario := testutil.CreateScenario(t, db, "Doomed")
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/scenario/"+scenario.ID, map[string]string{"uuid": scenario.ID})
		w := httptest.NewRecorder()

		handler.DeleteScenario(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}

		if _, err := svc.GetScenario(scenario.ID); err == nil {
			t.Error("Expected scenario to be gone")
		}
	})
}
