package graph

// Connector tracks the interactive connect flow of the graph view:
//
//	Idle --Start(A, T)--> Connecting(A, T) --Click(B)--> edge A->B, Idle
//	Connecting --Cancel--> Idle
//
// A rejected click (duplicate edge, unknown node, self link) leaves the
// connector Connecting.
type Connector struct {
	connecting bool
	source     string
	typ        ConnectionType
}

// ConnectorState is a snapshot of the connector.
type ConnectorState struct {
	Connecting bool           `json:"connecting"`
	Source     string         `json:"source,omitempty"`
	Type       ConnectionType `json:"type,omitempty"`
}

// State returns the current state.
func (c *Connector) State() ConnectorState {
	if !c.connecting {
		return ConnectorState{}
	}
	return ConnectorState{Connecting: true, Source: c.source, Type: c.typ}
}

// Start enters Connecting from source with connection type t, replacing any
// connection already in progress.
func (c *Connector) Start(source string, t ConnectionType) error {
	if _, err := StyleFor(t); err != nil {
		return err
	}
	c.connecting = true
	c.source = source
	c.typ = t
	return nil
}

// Cancel returns to Idle. It reports whether a connection was in progress.
func (c *Connector) Cancel() bool {
	was := c.connecting
	*c = Connector{}
	return was
}

// ClickResult describes what a node click did.
type ClickResult struct {
	// Select is set when the click happened while Idle: the node's note
	// should become the selected note.
	Select string `json:"select,omitempty"`
	// Edge is set when the click completed a connection.
	Edge *Edge `json:"edge,omitempty"`
}

// Click handles a click on node id.
func (c *Connector) Click(g *Graph, id string) (ClickResult, error) {
	if !c.connecting {
		return ClickResult{Select: id}, nil
	}
	e, err := g.Connect(c.source, id, c.typ)
	if err != nil {
		return ClickResult{}, err
	}
	c.Cancel()
	return ClickResult{Edge: &e}, nil
}
