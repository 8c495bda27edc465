// Package links derives the directed reference graph between notes from
// their bodies: a note links to every other note whose title appears in its
// content, ignoring case.
package links

import (
	"strings"

	"github.com/starford/echonotes/internal/models"
)

// Link is a directed reference from Source to Target, both note ids.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Extract scans every ordered pair of notes. It is quadratic in the number of
// notes and suits small collections; Index gives the same output faster.
//
// A title that is a substring of another title ("Goals" in "Weekly Goals")
// matches wherever the longer one does.
func Extract(notes []models.Note) []Link {
	lowered := lowerAll(notes)
	var out []Link
	seen := make(map[Link]struct{})
	for i, src := range notes {
		for j, dst := range notes {
			if src.ID == dst.ID {
				continue
			}
			if strings.Contains(lowered[i].content, lowered[j].title) {
				out = appendUnique(out, seen, Link{Source: src.ID, Target: dst.ID})
			}
		}
	}
	return out
}

type loweredNote struct {
	title   string
	content string
}

func lowerAll(notes []models.Note) []loweredNote {
	out := make([]loweredNote, len(notes))
	for i, n := range notes {
		out[i] = loweredNote{title: strings.ToLower(n.Title), content: strings.ToLower(n.Content)}
	}
	return out
}

func appendUnique(out []Link, seen map[Link]struct{}, l Link) []Link {
	if _, dup := seen[l]; dup {
		return out
	}
	seen[l] = struct{}{}
	return append(out, l)
}
