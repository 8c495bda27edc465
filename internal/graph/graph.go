package graph

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/links"
	"github.com/starford/echonotes/internal/models"
)

// Extent bounds node coordinates: positions fall in [0, Extent).
const Extent = 500.0

// Position is a node's 2-D placement.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node wraps a note in the graph.
type Node struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Note     models.Note `json:"note"`
	Position Position    `json:"position"`
	Style    NodeStyle   `json:"style"`
}

// Edge is a typed, directed connection between two notes.
type Edge struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Type   ConnectionType `json:"type"`
	// Manual marks edges the user created or retyped. They survive rebuilds.
	Manual bool `json:"manual"`
	Style
}

// EdgeID returns the identifier of the edge from source to target.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e-%s-%s", source, target)
}

// Layout remembers node positions by note id so rebuilding the graph does not
// reshuffle it. New ids get a random position.
type Layout struct {
	rng       *rand.Rand
	positions map[string]Position
}

// NewLayout creates a layout drawing from rng, or from the global source when
// rng is nil.
func NewLayout(rng *rand.Rand) *Layout {
	return &Layout{rng: rng, positions: make(map[string]Position)}
}

func (l *Layout) float() float64 {
	if l.rng == nil {
		return rand.Float64()
	}
	return l.rng.Float64()
}

// Position returns the position of id, placing it first if needed.
func (l *Layout) Position(id string) Position {
	if p, ok := l.positions[id]; ok {
		return p
	}
	p := Position{X: l.float() * Extent, Y: l.float() * Extent}
	l.positions[id] = p
	return p
}

// Move pins id at p.
func (l *Layout) Move(id string, p Position) {
	l.positions[id] = p
}

func (l *Layout) retain(ids map[string]struct{}) {
	for id := range l.positions {
		if _, ok := ids[id]; !ok {
			delete(l.positions, id)
		}
	}
}

// Extractor derives reference links from a set of notes.
type Extractor func([]models.Note) []links.Link

// Graph is the node and edge state of the graph view.
type Graph struct {
	layout  *Layout
	extract Extractor
	nodes   []Node
	edges   []Edge
}

// Option configures a Graph.
type Option func(*Graph)

// WithLayout sets the position memory.
func WithLayout(l *Layout) Option {
	return func(g *Graph) {
		g.layout = l
	}
}

// WithExtractor sets the link extractor used by Rebuild.
func WithExtractor(fn Extractor) Option {
	return func(g *Graph) {
		g.extract = fn
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{extract: links.Extract}
	for _, opt := range opts {
		opt(g)
	}
	if g.layout == nil {
		g.layout = NewLayout(nil)
	}
	return g
}

// Rebuild replaces the nodes with one per note and the edges with the
// extracted reference links. Manual edges whose endpoints are still present
// are kept, overriding an extracted edge with the same id.
func (g *Graph) Rebuild(notes []models.Note) {
	ids := make(map[string]struct{}, len(notes))
	nodes := make([]Node, 0, len(notes))
	for _, n := range notes {
		ids[n.ID] = struct{}{}
		nodes = append(nodes, Node{
			ID:       n.ID,
			Label:    n.Title,
			Note:     n.Clone(),
			Position: g.layout.Position(n.ID),
			Style:    DefaultNodeStyle,
		})
	}
	g.layout.retain(ids)

	defaultStyle, _ := StyleFor(Default)
	extracted := g.extract(notes)
	edges := make([]Edge, 0, len(extracted))
	for _, l := range extracted {
		edges = append(edges, Edge{
			ID:     EdgeID(l.Source, l.Target),
			Source: l.Source,
			Target: l.Target,
			Type:   Default,
			Style:  defaultStyle,
		})
	}

	for _, e := range g.edges {
		if !e.Manual {
			continue
		}
		_, okSrc := ids[e.Source]
		_, okDst := ids[e.Target]
		if !okSrc || !okDst {
			continue
		}
		if i := slices.IndexFunc(edges, func(x Edge) bool { return x.ID == e.ID }); i >= 0 {
			edges[i] = e
		} else {
			edges = append(edges, e)
		}
	}

	g.nodes = nodes
	g.edges = edges
}

// Nodes returns a copy of the nodes.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Edges returns a copy of the edges.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// HasNode reports whether a node with id exists.
func (g *Graph) HasNode(id string) bool {
	return slices.ContainsFunc(g.nodes, func(n Node) bool { return n.ID == id })
}

// Node returns the node with id.
func (g *Graph) Node(id string) (Node, bool) {
	i := slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge with id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i := g.edgeIndex(id)
	if i < 0 {
		return Edge{}, false
	}
	return g.edges[i], true
}

func (g *Graph) edgeIndex(id string) int {
	return slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
}

// Connect appends an edge from source to target styled per t. An existing
// edge with the same id is rejected with apperr.ErrAlreadyExists.
func (g *Graph) Connect(source, target string, t ConnectionType) (Edge, error) {
	style, err := StyleFor(t)
	if err != nil {
		return Edge{}, err
	}
	if source == target {
		return Edge{}, fmt.Errorf("%w: a note cannot connect to itself", apperr.ErrValidation)
	}
	if !g.HasNode(source) || !g.HasNode(target) {
		return Edge{}, fmt.Errorf("graph: connect %s -> %s: %w", source, target, apperr.ErrNotFound)
	}
	id := EdgeID(source, target)
	if g.edgeIndex(id) >= 0 {
		return Edge{}, fmt.Errorf("graph: edge %s: %w", id, apperr.ErrAlreadyExists)
	}
	e := Edge{ID: id, Source: source, Target: target, Type: t, Manual: true, Style: style}
	g.edges = append(g.edges, e)
	return e, nil
}

// ChangeType restyles the edge with id, leaving its identity and endpoints
// unchanged. found is false when no such edge exists.
func (g *Graph) ChangeType(id string, t ConnectionType) (e Edge, found bool, err error) {
	style, err := StyleFor(t)
	if err != nil {
		return Edge{}, false, err
	}
	i := g.edgeIndex(id)
	if i < 0 {
		return Edge{}, false, nil
	}
	g.edges[i].Type = t
	g.edges[i].Style = style
	g.edges[i].Manual = true
	return g.edges[i], true, nil
}

// Remove deletes the edge with id.
func (g *Graph) Remove(id string) bool {
	i := g.edgeIndex(id)
	if i < 0 {
		return false
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	return true
}

// MoveNode pins a node at p. The position outlives rebuilds.
func (g *Graph) MoveNode(id string, p Position) bool {
	i := slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	g.nodes[i].Position = p
	g.layout.Move(id, p)
	return true
}
