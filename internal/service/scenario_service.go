package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/engine"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/metrics"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
)

// ScenarioService handles scenario and graph-editing business logic: it
// owns all graph surgery (splicing action nodes in and out of chains,
// keeping the terminal projection node consistent) so the engine only
// ever sees a finished graph.
type ScenarioService struct {
	scenarioRepo *repository.ScenarioRepository
	graphRepo    *repository.GraphRepository
	holdingRepo  *repository.HoldingRepository
	paramsRepo   *repository.ParamsRepository
	resolver     *pricing.Resolver
}

// NewScenarioService creates a new ScenarioService with the provided dependencies.
func NewScenarioService(
	scenarioRepo *repository.ScenarioRepository,
	graphRepo *repository.GraphRepository,
	holdingRepo *repository.HoldingRepository,
	paramsRepo *repository.ParamsRepository,
	resolver *pricing.Resolver,
) *ScenarioService {
	return &ScenarioService{
		scenarioRepo: scenarioRepo,
		graphRepo:    graphRepo,
		holdingRepo:  holdingRepo,
		paramsRepo:   paramsRepo,
		resolver:     resolver,
	}
}

// ScenarioGraph is one scenario with its full graph contents: nodes,
// edges, the holdings of each portfolio node, and the parameter payloads
// of each action node.
type ScenarioGraph struct {
	Scenario model.Scenario       `json:"scenario"`
	Nodes    []model.Node         `json:"nodes"`
	Edges    []model.Edge         `json:"edges"`
	Holdings []model.Holding      `json:"holdings"`
	Params   []model.ActionParams `json:"params"`
}

// CreateScenario creates a new scenario seeded with one empty portfolio
// node, which is the minimum a scenario needs to be useful.
func (s *ScenarioService) CreateScenario(name, description string) (ScenarioGraph, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled scenario"
	}

	scenario := model.Scenario{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.scenarioRepo.CreateScenario(scenario); err != nil {
		return ScenarioGraph{}, err
	}

	if _, err := s.AddPortfolioNode(scenario.ID, "Portfolio"); err != nil {
		return ScenarioGraph{}, err
	}

	return s.GetScenario(scenario.ID)
}

// GetScenarios retrieves all scenarios in creation order.
func (s *ScenarioService) GetScenarios() ([]model.Scenario, error) {
	return s.scenarioRepo.GetScenarios()
}

// GetScenario retrieves one scenario with its full graph contents.
func (s *ScenarioService) GetScenario(scenarioID string) (ScenarioGraph, error) {
	scenario, err := s.scenarioRepo.GetScenarioOnID(scenarioID)
	if err != nil {
		return ScenarioGraph{}, err
	}

	nodes, err := s.graphRepo.GetNodesOnScenarioID(scenarioID)
	if err != nil {
		return ScenarioGraph{}, err
	}
	edges, err := s.graphRepo.GetEdgesOnScenarioID(scenarioID)
	if err != nil {
		return ScenarioGraph{}, err
	}
	params, err := s.paramsRepo.GetActionParamsOnScenarioID(scenarioID)
	if err != nil {
		return ScenarioGraph{}, err
	}

	holdings := []model.Holding{}
	for _, n := range nodes {
		if n.Kind != engine.KindPortfolio.String() {
			continue
		}
		nodeHoldings, err := s.holdingRepo.GetHoldingsOnNodeID(n.ID)
		if err != nil {
			return ScenarioGraph{}, err
		}
		holdings = append(holdings, nodeHoldings...)
	}

	return ScenarioGraph{
		Scenario: scenario,
		Nodes:    nodes,
		Edges:    edges,
		Holdings: holdings,
		Params:   params,
	}, nil
}

// DeleteScenario removes a scenario and, through cascades, everything
// hanging off it.
func (s *ScenarioService) DeleteScenario(scenarioID string) error {
	return s.scenarioRepo.DeleteScenario(scenarioID)
}

// AddPortfolioNode adds a new empty portfolio node to a scenario.
func (s *ScenarioService) AddPortfolioNode(scenarioID, label string) (model.Node, error) {
	if _, err := s.scenarioRepo.GetScenarioOnID(scenarioID); err != nil {
		return model.Node{}, err
	}
	if strings.TrimSpace(label) == "" {
		label = "Portfolio"
	}

	node := model.Node{
		ID:         uuid.NewString(),
		ScenarioID: scenarioID,
		Kind:       engine.KindPortfolio.String(),
		Label:      label,
	}
	if err := s.graphRepo.CreateNode(node); err != nil {
		return model.Node{}, err
	}
	return node, nil
}

// AddActionNode adds an action node of the given kind chained after an
// existing node. When the predecessor already has an action successor the
// new node is spliced between them, preserving the single-successor
// shape. The portfolio's terminal projection node is created or rewired
// as needed.
func (s *ScenarioService) AddActionNode(scenarioID, afterNodeID, kindName, label string) (model.Node, error) {
	kind, err := engine.ParseNodeKind(kindName)
	if err != nil {
		return model.Node{}, err
	}
	if !kind.IsAction() {
		return model.Node{}, fmt.Errorf("%w: %s", apperrors.ErrNotAnAction, kindName)
	}

	after, err := s.graphRepo.GetNodeOnID(afterNodeID)
	if err != nil {
		return model.Node{}, err
	}
	if after.ScenarioID != scenarioID {
		return model.Node{}, apperrors.ErrNodeNotFound
	}
	if after.Kind == engine.KindProjection.String() {
		return model.Node{}, fmt.Errorf("%w: cannot chain after the projection node", apperrors.ErrStructuralInconsistency)
	}

	g, _, err := s.loadEngineGraph(scenarioID)
	if err != nil {
		return model.Node{}, err
	}

	portfolioID := after.ID
	if after.Kind != engine.KindPortfolio.String() {
		var ok bool
		portfolioID, ok = g.SourcePortfolioOf(after.ID)
		if !ok {
			return model.Node{}, fmt.Errorf("%w: node %s is not connected to a portfolio", apperrors.ErrStructuralInconsistency, after.ID)
		}
	}

	successorEdge, err := s.actionSuccessorEdge(after.ID)
	if err != nil {
		return model.Node{}, err
	}

	node := model.Node{
		ID:         uuid.NewString(),
		ScenarioID: scenarioID,
		Kind:       kind.String(),
		Label:      label,
	}
	if err := s.graphRepo.CreateNode(node); err != nil {
		return model.Node{}, err
	}

	if successorEdge != nil {
		if err := s.graphRepo.DeleteEdge(successorEdge.ID); err != nil {
			return model.Node{}, err
		}
		if err := s.createEdge(scenarioID, node.ID, successorEdge.ToNodeID); err != nil {
			return model.Node{}, err
		}
	}
	if err := s.createEdge(scenarioID, after.ID, node.ID); err != nil {
		return model.Node{}, err
	}

	if err := s.syncProjectionNode(scenarioID, portfolioID); err != nil {
		return model.Node{}, err
	}

	return node, nil
}

// DeleteNode removes a node. Deleting an action node splices its
// predecessor to its successor so the rest of the chain survives; the
// projection node is dropped when a portfolio's last action goes away.
func (s *ScenarioService) DeleteNode(nodeID string) error {
	node, err := s.graphRepo.GetNodeOnID(nodeID)
	if err != nil {
		return err
	}
	kind, err := engine.ParseNodeKind(node.Kind)
	if err != nil {
		return err
	}

	if !kind.IsAction() {
		// Portfolio and projection nodes carry no chain to splice. A
		// deleted portfolio takes its orphaned projection node with it.
		if kind == engine.KindPortfolio {
			if err := s.deleteProjectionNodeOf(node.ScenarioID, node.ID); err != nil {
				return err
			}
		}
		return s.graphRepo.DeleteNode(nodeID)
	}

	g, _, err := s.loadEngineGraph(node.ScenarioID)
	if err != nil {
		return err
	}
	portfolioID, hasPortfolio := g.SourcePortfolioOf(nodeID)

	incoming, err := s.graphRepo.GetIncomingEdges(nodeID)
	if err != nil {
		return err
	}
	successorEdge, err := s.actionSuccessorEdge(nodeID)
	if err != nil {
		return err
	}

	if err := s.graphRepo.DeleteNode(nodeID); err != nil {
		return err
	}

	if len(incoming) > 0 && successorEdge != nil {
		if err := s.createEdge(node.ScenarioID, incoming[0].FromNodeID, successorEdge.ToNodeID); err != nil {
			return err
		}
	}

	if hasPortfolio {
		return s.syncProjectionNode(node.ScenarioID, portfolioID)
	}
	return nil
}

// UpdateActionParams validates and stores the parameter payload of an
// action node. The payload must decode as the typed params of the node's
// kind; anything else never reaches the store.
func (s *ScenarioService) UpdateActionParams(nodeID string, payload json.RawMessage) error {
	node, err := s.graphRepo.GetNodeOnID(nodeID)
	if err != nil {
		return err
	}
	kind, err := engine.ParseNodeKind(node.Kind)
	if err != nil {
		return err
	}
	if !kind.IsAction() {
		return fmt.Errorf("%w: %s", apperrors.ErrNotAnAction, node.Kind)
	}
	if err := validateActionPayload(kind, payload); err != nil {
		return err
	}

	return s.paramsRepo.UpsertActionParams(model.ActionParams{
		NodeID:  nodeID,
		Kind:    kind.String(),
		Payload: payload,
	})
}

// AddHolding adds a holding to a portfolio node, resolving its market
// price through the pricing resolver. A failed lookup is tolerated: the
// holding is stored with a nil price and dependent actions stay inactive
// until a later refresh finds one.
func (s *ScenarioService) AddHolding(nodeID, ticker string, amount float64) (model.Holding, error) {
	node, err := s.graphRepo.GetNodeOnID(nodeID)
	if err != nil {
		return model.Holding{}, err
	}
	if node.Kind != engine.KindPortfolio.String() {
		return model.Holding{}, fmt.Errorf("%w: %s", apperrors.ErrNotAPortfolio, node.Kind)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return model.Holding{}, apperrors.ErrInvalidTicker
	}

	holding := model.Holding{
		ID:         uuid.NewString(),
		NodeID:     nodeID,
		Ticker:     ticker,
		Amount:     amount,
		AssetClass: string(engine.AssetUnknown),
	}
	if quote, err := s.resolver.Lookup(ticker); err == nil {
		holding.Price = quote.Price
		holding.AssetClass = string(quote.Class)
	} else {
		log.Printf("price lookup failed for %s, storing without price: %v", ticker, err)
	}

	if err := s.holdingRepo.CreateHolding(holding); err != nil {
		return model.Holding{}, err
	}
	return holding, nil
}

// UpdateHolding updates a holding's ticker and amount. A changed ticker
// is re-resolved through the pricing resolver.
func (s *ScenarioService) UpdateHolding(holdingID, ticker string, amount float64) (model.Holding, error) {
	holding, err := s.holdingRepo.GetHoldingOnID(holdingID)
	if err != nil {
		return model.Holding{}, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return model.Holding{}, apperrors.ErrInvalidTicker
	}

	if ticker != holding.Ticker {
		holding.Ticker = ticker
		holding.Price = nil
		holding.AssetClass = string(engine.AssetUnknown)
		if quote, err := s.resolver.Lookup(ticker); err == nil {
			holding.Price = quote.Price
			holding.AssetClass = string(quote.Class)
		} else {
			log.Printf("price lookup failed for %s, storing without price: %v", ticker, err)
		}
	}
	holding.Amount = amount

	if err := s.holdingRepo.UpdateHolding(holding); err != nil {
		return model.Holding{}, err
	}
	return holding, nil
}

// DeleteHolding removes a holding.
func (s *ScenarioService) DeleteHolding(holdingID string) error {
	return s.holdingRepo.DeleteHolding(holdingID)
}

// NodeSnapshot is the intermediate state an action node's editing panel
// shows: the ledger and accumulated cash entering the node, the same
// after its own action, the price substitutions visible to it, and the
// yield read-out for yield nodes.
type NodeSnapshot struct {
	NodeID      string              `json:"nodeId"`
	PortfolioID string              `json:"portfolioId"`
	Before      []engine.Position   `json:"before"`
	CashBefore  float64             `json:"cashBefore"`
	After       []engine.Position   `json:"after"`
	CashAfter   float64             `json:"cashAfter"`
	Overrides   map[string]float64  `json:"overrides"`
	Yield       *engine.YieldResult `json:"yield,omitempty"`
}

// GetNodeSnapshot computes the intermediate ledger around one action
// node. A node disconnected from any portfolio yields an empty snapshot
// rather than an error; half-built graphs are a normal editing state.
func (s *ScenarioService) GetNodeSnapshot(nodeID string) (NodeSnapshot, error) {
	node, err := s.graphRepo.GetNodeOnID(nodeID)
	if err != nil {
		return NodeSnapshot{}, err
	}
	kind, err := engine.ParseNodeKind(node.Kind)
	if err != nil {
		return NodeSnapshot{}, err
	}
	if !kind.IsAction() {
		return NodeSnapshot{}, fmt.Errorf("%w: %s", apperrors.ErrNotAnAction, node.Kind)
	}

	g, _, err := s.loadEngineGraph(node.ScenarioID)
	if err != nil {
		return NodeSnapshot{}, err
	}
	actions, err := s.actionsFor(node.ScenarioID)
	if err != nil {
		return NodeSnapshot{}, err
	}

	snapshot := NodeSnapshot{
		NodeID:    nodeID,
		Before:    []engine.Position{},
		After:     []engine.Position{},
		Overrides: map[string]float64{},
	}

	portfolioID, ok := g.SourcePortfolioOf(nodeID)
	if !ok {
		return snapshot, nil
	}
	snapshot.PortfolioID = portfolioID

	base, err := s.ledgerOf(portfolioID)
	if err != nil {
		return NodeSnapshot{}, err
	}

	before, cash, err := engine.LedgerBefore(g, portfolioID, base, actions, nodeID)
	if err != nil {
		return NodeSnapshot{}, err
	}
	overrides, err := engine.OverridesFor(g, portfolioID, nodeID, actions)
	if err != nil {
		return NodeSnapshot{}, err
	}

	after := before
	cashAfter := cash
	if act, ok := actions[nodeID]; ok {
		var delta float64
		after, delta = engine.Apply(before, act, overrides)
		cashAfter += delta

		if y, ok := act.(engine.Yield); ok {
			if res, ok := engine.ComputeYield(before, y); ok {
				snapshot.Yield = &res
			}
		}
	}

	snapshot.Before = before
	snapshot.CashBefore = cash
	snapshot.After = after
	snapshot.CashAfter = cashAfter
	snapshot.Overrides = overrides
	return snapshot, nil
}

// PositionView is one position prepared for display: the raw ledger
// fields plus the allocation percentage.
type PositionView struct {
	Ticker     string   `json:"ticker"`
	Amount     float64  `json:"amount"`
	Price      *float64 `json:"price"`
	AssetClass string   `json:"assetClass"`
	Value      float64  `json:"value"`
	Percent    float64  `json:"percent"`
}

// ProjectionResult is the final projected state of one portfolio next to
// its unmodified base, both sorted by value descending.
type ProjectionResult struct {
	PortfolioID    string         `json:"portfolioId"`
	Base           []PositionView `json:"base"`
	BaseTotal      float64        `json:"baseTotal"`
	Projected      []PositionView `json:"projected"`
	ProjectedTotal float64        `json:"projectedTotal"`
}

// GetProjection folds every chain of a portfolio into its projected
// ledger and pairs it with the base holdings for side-by-side display.
func (s *ScenarioService) GetProjection(scenarioID, portfolioID string) (ProjectionResult, error) {
	node, err := s.graphRepo.GetNodeOnID(portfolioID)
	if err != nil {
		return ProjectionResult{}, err
	}
	if node.ScenarioID != scenarioID {
		return ProjectionResult{}, apperrors.ErrNodeNotFound
	}
	if node.Kind != engine.KindPortfolio.String() {
		return ProjectionResult{}, fmt.Errorf("%w: %s", apperrors.ErrNotAPortfolio, node.Kind)
	}

	g, _, err := s.loadEngineGraph(scenarioID)
	if err != nil {
		return ProjectionResult{}, err
	}
	actions, err := s.actionsFor(scenarioID)
	if err != nil {
		return ProjectionResult{}, err
	}
	base, err := s.ledgerOf(portfolioID)
	if err != nil {
		return ProjectionResult{}, err
	}

	projected, err := engine.Project(g, portfolioID, base, actions)
	if err != nil {
		return ProjectionResult{}, err
	}
	metrics.ProjectionsTotal.Inc()

	baseSorted := base.SortByValueDesc()
	return ProjectionResult{
		PortfolioID:    portfolioID,
		Base:           allocationViews(baseSorted),
		BaseTotal:      baseSorted.TotalValue(),
		Projected:      allocationViews(projected),
		ProjectedTotal: projected.TotalValue(),
	}, nil
}

// allocationViews computes display percentages over a ledger. A negative
// cash position is clamped to zero for the percentage math only, so a
// margin-like state cannot push other allocations past 100%; the raw
// value column still shows the negative number.
func allocationViews(l engine.Ledger) []PositionView {
	var total float64
	for _, p := range l {
		total += clampedValue(p)
	}

	views := make([]PositionView, len(l))
	for i, p := range l {
		v := PositionView{
			Ticker:     p.Ticker,
			Amount:     p.Amount,
			Price:      p.Price,
			AssetClass: string(p.Class),
			Value:      p.Value,
		}
		if total > 0 {
			v.Percent = clampedValue(p) / total * 100
		}
		views[i] = v
	}
	return views
}

func clampedValue(p engine.Position) float64 {
	if p.Ticker == engine.CashTicker && p.Value < 0 {
		return 0
	}
	return p.Value
}

// ledgerOf loads the stored holdings of a portfolio node as an engine
// ledger.
func (s *ScenarioService) ledgerOf(portfolioID string) (engine.Ledger, error) {
	holdings, err := s.holdingRepo.GetHoldingsOnNodeID(portfolioID)
	if err != nil {
		return nil, err
	}
	ledger := make(engine.Ledger, 0, len(holdings))
	for _, h := range holdings {
		p := engine.Position{
			Ticker: h.Ticker,
			Amount: h.Amount,
			Price:  h.Price,
			Class:  assetClass(h.AssetClass),
		}
		ledger = append(ledger, p)
	}
	return ledger.Revalue(), nil
}

// loadEngineGraph loads a scenario's nodes and edges and builds the
// engine's graph over them.
func (s *ScenarioService) loadEngineGraph(scenarioID string) (*engine.Graph, []model.Node, error) {
	nodes, err := s.graphRepo.GetNodesOnScenarioID(scenarioID)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.graphRepo.GetEdgesOnScenarioID(scenarioID)
	if err != nil {
		return nil, nil, err
	}

	engineNodes := make([]engine.Node, 0, len(nodes))
	for _, n := range nodes {
		kind, err := engine.ParseNodeKind(n.Kind)
		if err != nil {
			return nil, nil, err
		}
		engineNodes = append(engineNodes, engine.Node{ID: n.ID, Kind: kind})
	}
	engineEdges := make([]engine.Edge, 0, len(edges))
	for _, e := range edges {
		engineEdges = append(engineEdges, engine.Edge{From: e.FromNodeID, To: e.ToNodeID})
	}

	return engine.NewGraph(engineNodes, engineEdges), nodes, nil
}

// actionsFor loads and decodes every action parameter payload of a
// scenario. Rows that fail to decode are skipped: the node simply stays
// inactive, matching how the engine treats missing parameters.
func (s *ScenarioService) actionsFor(scenarioID string) (map[string]engine.Action, error) {
	params, err := s.paramsRepo.GetActionParamsOnScenarioID(scenarioID)
	if err != nil {
		return nil, err
	}

	actions := make(map[string]engine.Action, len(params))
	for _, p := range params {
		act, err := decodeAction(p)
		if err != nil {
			log.Printf("skipping undecodable action params for node %s: %v", p.NodeID, err)
			continue
		}
		actions[p.NodeID] = act
	}
	return actions, nil
}

// actionSuccessorEdge finds the outgoing edge of a node that points at an
// action node, or nil when the chain ends there. Two such edges are the
// unsupported fan-out shape.
func (s *ScenarioService) actionSuccessorEdge(nodeID string) (*model.Edge, error) {
	outgoing, err := s.graphRepo.GetOutgoingEdges(nodeID)
	if err != nil {
		return nil, err
	}

	var successor *model.Edge
	for i, e := range outgoing {
		target, err := s.graphRepo.GetNodeOnID(e.ToNodeID)
		if err != nil {
			return nil, err
		}
		kind, err := engine.ParseNodeKind(target.Kind)
		if err != nil {
			return nil, err
		}
		if !kind.IsAction() {
			continue
		}
		if successor != nil {
			return nil, fmt.Errorf("%w: node %s has multiple action successors", apperrors.ErrStructuralInconsistency, nodeID)
		}
		successor = &outgoing[i]
	}
	return successor, nil
}

func (s *ScenarioService) createEdge(scenarioID, from, to string) error {
	return s.graphRepo.CreateEdge(model.Edge{
		ID:         uuid.NewString(),
		ScenarioID: scenarioID,
		FromNodeID: from,
		ToNodeID:   to,
	})
}

// deleteProjectionNodeOf removes the projection node fed by the given
// portfolio, if one exists. Called before the portfolio itself is
// deleted, while the graph still links the two.
func (s *ScenarioService) deleteProjectionNodeOf(scenarioID, portfolioID string) error {
	g, nodes, err := s.loadEngineGraph(scenarioID)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if n.Kind != engine.KindProjection.String() {
			continue
		}
		if src, ok := g.SourcePortfolioOf(n.ID); ok && src == portfolioID {
			return s.graphRepo.DeleteNode(n.ID)
		}
	}
	return nil
}

// syncProjectionNode reconciles a portfolio's terminal projection node
// with its chains: the node exists exactly when the portfolio has at
// least one action, and every chain tail feeds into it.
func (s *ScenarioService) syncProjectionNode(scenarioID, portfolioID string) error {
	g, nodes, err := s.loadEngineGraph(scenarioID)
	if err != nil {
		return err
	}
	chains, err := g.ChainsFrom(portfolioID)
	if err != nil {
		return err
	}

	projectionID := ""
	for _, n := range nodes {
		if n.Kind != engine.KindProjection.String() {
			continue
		}
		if src, ok := g.SourcePortfolioOf(n.ID); ok && src == portfolioID {
			projectionID = n.ID
			break
		}
	}

	if len(chains) == 0 {
		if projectionID != "" {
			return s.graphRepo.DeleteNode(projectionID)
		}
		return nil
	}

	if projectionID == "" {
		node := model.Node{
			ID:         uuid.NewString(),
			ScenarioID: scenarioID,
			Kind:       engine.KindProjection.String(),
			Label:      "Projection",
		}
		if err := s.graphRepo.CreateNode(node); err != nil {
			return err
		}
		projectionID = node.ID
	}

	tails := make(map[string]bool, len(chains))
	for _, chain := range chains {
		tails[chain[len(chain)-1]] = true
	}

	incoming, err := s.graphRepo.GetIncomingEdges(projectionID)
	if err != nil {
		return err
	}
	for _, e := range incoming {
		if tails[e.FromNodeID] {
			delete(tails, e.FromNodeID)
			continue
		}
		if err := s.graphRepo.DeleteEdge(e.ID); err != nil {
			return err
		}
	}
	// Walk chains in order so edge creation stays deterministic.
	for _, chain := range chains {
		tail := chain[len(chain)-1]
		if !tails[tail] {
			continue
		}
		delete(tails, tail)
		if err := s.createEdge(scenarioID, tail, projectionID); err != nil {
			return err
		}
	}
	return nil
}
