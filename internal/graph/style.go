// Package graph holds the state behind the note graph view: nodes, typed
// edges, and the interactive connect flow.
package graph

import (
	"fmt"

	"github.com/starford/echonotes/internal/apperr"
)

// ConnectionType selects the visual style of an edge.
type ConnectionType string

const (
	Default       ConnectionType = "default"
	Reference     ConnectionType = "reference"
	Subordinate   ConnectionType = "subordinate"
	Bidirectional ConnectionType = "bidirectional"
)

// MarkerArrowClosed is the only arrow head the graph draws.
const MarkerArrowClosed = "arrowclosed"

// Marker is an arrow head at one end of an edge.
type Marker struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Style is the visual part of an edge.
type Style struct {
	Animated    bool    `json:"animated"`
	Stroke      string  `json:"stroke"`
	StrokeWidth int     `json:"strokeWidth"`
	MarkerEnd   Marker  `json:"markerEnd"`
	MarkerStart *Marker `json:"markerStart,omitempty"`
}

func arrow(color string) Marker {
	return Marker{Type: MarkerArrowClosed, Color: color}
}

// StyleFor returns the fixed style of a connection type.
func StyleFor(t ConnectionType) (Style, error) {
	switch t {
	case Default:
		return Style{Stroke: "#9E76FF", StrokeWidth: 1, MarkerEnd: arrow("#9E76FF")}, nil
	case Reference:
		return Style{Animated: true, Stroke: "#0EA5E9", StrokeWidth: 1, MarkerEnd: arrow("#0EA5E9")}, nil
	case Subordinate:
		return Style{Stroke: "#F97316", StrokeWidth: 2, MarkerEnd: arrow("#F97316")}, nil
	case Bidirectional:
		start := arrow("#D946EF")
		return Style{Stroke: "#D946EF", StrokeWidth: 1, MarkerEnd: arrow("#D946EF"), MarkerStart: &start}, nil
	}
	return Style{}, fmt.Errorf("%w: unknown connection type %q", apperr.ErrValidation, t)
}

// ParseConnectionType validates s as a connection type. Empty means Default.
func ParseConnectionType(s string) (ConnectionType, error) {
	if s == "" {
		return Default, nil
	}
	t := ConnectionType(s)
	if _, err := StyleFor(t); err != nil {
		return "", err
	}
	return t, nil
}

// NodeStyle is the fixed look of a note node.
type NodeStyle struct {
	Background   string `json:"background"`
	Color        string `json:"color"`
	Border       string `json:"border"`
	BorderRadius string `json:"borderRadius"`
	Padding      string `json:"padding"`
	Width        int    `json:"width"`
}

// DefaultNodeStyle is applied to every node.
var DefaultNodeStyle = NodeStyle{
	Background:   "#272530",
	Color:        "#E8E8EA",
	Border:       "1px solid #39383F",
	BorderRadius: "8px",
	Padding:      "10px",
	Width:        180,
}
