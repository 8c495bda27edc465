package links

import (
	"slices"
	"strings"

	"github.com/starford/echonotes/internal/models"
)

// gramSize is the length, in bytes, of the title prefix used as index key.
const gramSize = 3

// Index is an inverted index from the leading bytes of every lower-cased
// title to the notes carrying it. Each source body is scanned once and only
// titles whose prefix occurs at a position are compared there.
type Index struct {
	notes   []models.Note
	lowered []loweredNote
	grams   map[string][]int
	short   []int
}

// NewIndex indexes the titles of notes.
func NewIndex(notes []models.Note) *Index {
	ix := &Index{
		notes:   notes,
		lowered: lowerAll(notes),
		grams:   make(map[string][]int),
	}
	for i, l := range ix.lowered {
		if len(l.title) < gramSize {
			ix.short = append(ix.short, i)
			continue
		}
		key := l.title[:gramSize]
		ix.grams[key] = append(ix.grams[key], i)
	}
	return ix
}

// Extract returns the same links as the package-level Extract, in the same
// order.
func (ix *Index) Extract() []Link {
	var out []Link
	seen := make(map[Link]struct{})
	for i, src := range ix.notes {
		for _, j := range ix.targets(ix.lowered[i].content) {
			if src.ID == ix.notes[j].ID {
				continue
			}
			out = appendUnique(out, seen, Link{Source: src.ID, Target: ix.notes[j].ID})
		}
	}
	return out
}

// targets returns, in ascending order, the indexes of every note whose title
// occurs in content.
func (ix *Index) targets(content string) []int {
	hit := make(map[int]struct{})
	for _, j := range ix.short {
		if strings.Contains(content, ix.lowered[j].title) {
			hit[j] = struct{}{}
		}
	}
	for p := 0; p+gramSize <= len(content); p++ {
		for _, j := range ix.grams[content[p:p+gramSize]] {
			if _, ok := hit[j]; ok {
				continue
			}
			if strings.HasPrefix(content[p:], ix.lowered[j].title) {
				hit[j] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(hit))
	for j := range hit {
		out = append(out, j)
	}
	slices.Sort(out)
	return out
}
