package dashboard

import (
	"errors"
	"fmt"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/graph"
)

// GraphState is a snapshot of the graph view.
type GraphState struct {
	Nodes     []graph.Node         `json:"nodes"`
	Edges     []graph.Edge         `json:"edges"`
	Connector graph.ConnectorState `json:"connector"`
}

func errEdgeNotFound(id string) error {
	return fmt.Errorf("edge %s: %w", id, apperr.ErrNotFound)
}

func errNodeNotFound(id string) error {
	return fmt.Errorf("node %s: %w", id, apperr.ErrNotFound)
}

// Graph returns the current graph, rebuilt from the active notes when they
// changed since the last call.
func (s *Shell) Graph() GraphState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()
	return GraphState{Nodes: s.graph.Nodes(), Edges: s.graph.Edges(), Connector: s.conn.State()}
}

// StartConnecting enters connect mode from node id.
func (s *Shell) StartConnecting(id string, t graph.ConnectionType) (graph.ConnectorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	if !s.graph.HasNode(id) {
		return s.conn.State(), s.reject("Note not found", errNodeNotFound(id))
	}
	if err := s.conn.Start(id, t); err != nil {
		return s.conn.State(), s.reject("Unknown connection type", err)
	}
	s.info("Select another note to connect to",
		"Click on a note to create a connection, or press Escape to cancel")
	return s.conn.State(), nil
}

// CancelConnecting leaves connect mode. It reports whether connect mode was
// active.
func (s *Shell) CancelConnecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.conn.Cancel() {
		return false
	}
	s.info("Connection cancelled", "")
	return true
}

// ClickNode handles a click on a graph node: it completes a pending
// connection, or selects the node's note when none is pending.
func (s *Shell) ClickNode(id string) (graph.ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	if !s.graph.HasNode(id) {
		err := errNodeNotFound(id)
		if s.conn.State().Connecting {
			return graph.ClickResult{}, s.reject("Note not found", err)
		}
		return graph.ClickResult{}, err
	}

	typ := s.conn.State().Type
	res, err := s.conn.Click(s.graph, id)
	if err != nil {
		return res, s.rejectConnect(err)
	}
	if res.Select != "" {
		s.store.Select(res.Select)
		return res, nil
	}
	s.events.GraphChanged()
	s.success(fmt.Sprintf("Connection created (%s)", typ))
	return res, nil
}

// Connect creates an edge from source to target directly.
func (s *Shell) Connect(source, target string, t graph.ConnectionType) (graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	e, err := s.graph.Connect(source, target, t)
	if err != nil {
		return graph.Edge{}, s.rejectConnect(err)
	}
	s.events.GraphChanged()
	s.success(fmt.Sprintf("Connection created (%s)", e.Type))
	return e, nil
}

func (s *Shell) rejectConnect(err error) error {
	switch {
	case errors.Is(err, apperr.ErrAlreadyExists):
		return s.reject("This connection already exists", err)
	case errors.Is(err, apperr.ErrNotFound):
		return s.reject("Note not found", err)
	}
	return s.reject("Could not create connection", err)
}

// ChangeEdgeType restyles an edge.
func (s *Shell) ChangeEdgeType(id string, t graph.ConnectionType) (graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	e, found, err := s.graph.ChangeType(id, t)
	if err != nil {
		return graph.Edge{}, s.reject("Unknown connection type", err)
	}
	if !found {
		return graph.Edge{}, s.reject("Connection not found", errEdgeNotFound(id))
	}
	s.events.GraphChanged()
	s.success(fmt.Sprintf("Connection type changed to %s", t))
	return e, nil
}

// RemoveEdge deletes an edge.
func (s *Shell) RemoveEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	if !s.graph.Remove(id) {
		return s.reject("Connection not found", errEdgeNotFound(id))
	}
	s.events.GraphChanged()
	s.success("Connection removed")
	return nil
}

// MoveNode pins a node at p.
func (s *Shell) MoveNode(id string, p graph.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncGraph()

	if !s.graph.MoveNode(id, p) {
		return errNodeNotFound(id)
	}
	return nil
}
