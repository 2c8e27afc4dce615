package engine

import (
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
)

// NodeKind identifies what a graph node is. The kind is carried as data;
// it is never inferred from the shape of a node's identifier.
type NodeKind int

const (
	KindPortfolio NodeKind = iota
	KindRotate
	KindSell
	KindBuy
	KindPriceTarget
	KindAllIn
	KindYield
	KindProjection
)

var kindNames = map[NodeKind]string{
	KindPortfolio:   "portfolio",
	KindRotate:      "rotate",
	KindSell:        "sell",
	KindBuy:         "buy",
	KindPriceTarget: "price_target",
	KindAllIn:       "all_in",
	KindYield:       "yield",
	KindProjection:  "projection",
}

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("node_kind(%d)", int(k))
}

// IsAction reports whether the kind is one of the six transformation
// actions, as opposed to a portfolio or the terminal projection node.
func (k NodeKind) IsAction() bool {
	switch k {
	case KindRotate, KindSell, KindBuy, KindPriceTarget, KindAllIn, KindYield:
		return true
	}
	return false
}

// ParseNodeKind converts a stored kind name back to its NodeKind.
func ParseNodeKind(name string) (NodeKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownNodeKind, name)
}

// Node is one vertex of a scenario graph.
type Node struct {
	ID   string
	Kind NodeKind
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From string
	To   string
}

// Graph is an immutable directed node/edge structure over which chains of
// action nodes are resolved. Edge order is preserved so chain enumeration
// is deterministic.
type Graph struct {
	nodes map[string]Node
	out   map[string][]string
	in    map[string][]string
	order []string
}

// NewGraph builds a graph from nodes and edges. Edges that reference an
// unknown node are dropped rather than rejected: a half-deleted node must
// not make the whole scenario unresolvable.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes: make(map[string]Node, len(nodes)),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
	for _, n := range nodes {
		if _, ok := g.nodes[n.ID]; ok {
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for _, e := range edges {
		if _, ok := g.nodes[e.From]; !ok {
			continue
		}
		if _, ok := g.nodes[e.To]; !ok {
			continue
		}
		g.out[e.From] = append(g.out[e.From], e.To)
		g.in[e.To] = append(g.in[e.To], e.From)
	}
	return g
}

// Node returns the node with the given id, if present.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// actionSuccessor returns the single action node that follows id, or ""
// when the chain ends there. Edges into the terminal projection node are
// ignored. Two outgoing action edges are not a supported shape; rather
// than silently picking one, the walk reports a structural inconsistency.
func (g *Graph) actionSuccessor(id string) (string, error) {
	var next string
	for _, to := range g.out[id] {
		n, ok := g.nodes[to]
		if !ok || !n.Kind.IsAction() {
			continue
		}
		if next != "" {
			return "", fmt.Errorf("%w: node %s has multiple action successors", apperrors.ErrStructuralInconsistency, id)
		}
		next = to
	}
	return next, nil
}

// ChainsFrom derives, in edge order, every ordered chain of action nodes
// reachable from the given portfolio node. Each chain starts at a
// first-level action directly connected from the portfolio and follows
// the unique action successor until the chain ends. A node revisited
// within one walk stops that walk (cycle guard).
func (g *Graph) ChainsFrom(portfolioID string) ([][]string, error) {
	var chains [][]string
	for _, head := range g.out[portfolioID] {
		n, ok := g.nodes[head]
		if !ok || !n.Kind.IsAction() {
			continue
		}
		visited := map[string]bool{head: true}
		chain := []string{head}
		cur := head
		for {
			next, err := g.actionSuccessor(cur)
			if err != nil {
				return nil, err
			}
			if next == "" || visited[next] {
				break
			}
			visited[next] = true
			chain = append(chain, next)
			cur = next
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

// SourcePortfolioOf walks backward through single-parent edges until a
// portfolio node is reached. It reports false for a node disconnected
// from any portfolio.
func (g *Graph) SourcePortfolioOf(nodeID string) (string, bool) {
	visited := map[string]bool{nodeID: true}
	cur := nodeID
	for {
		parents := g.in[cur]
		if len(parents) == 0 {
			return "", false
		}
		parent := parents[0]
		if visited[parent] {
			return "", false
		}
		visited[parent] = true
		if n, ok := g.nodes[parent]; ok && n.Kind == KindPortfolio {
			return parent, true
		}
		cur = parent
	}
}

// PrefixBefore returns the ordered sub-sequence of action nodes strictly
// before targetID within its chain under the given portfolio. The result
// is empty when the target is first in its chain or not found at all.
func (g *Graph) PrefixBefore(portfolioID, targetID string) ([]string, error) {
	chains, err := g.ChainsFrom(portfolioID)
	if err != nil {
		return nil, err
	}
	for _, chain := range chains {
		for i, id := range chain {
			if id == targetID {
				return chain[:i], nil
			}
		}
	}
	return nil, nil
}
