package links

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/echonotes/internal/models"
)

func TestExtract_SingleReference(t *testing.T) {
	notes := []models.Note{
		{ID: "1", Title: "Reading List", Content: "..."},
		{ID: "2", Title: "Travel Plans", Content: "check my Reading List"},
	}
	want := []Link{{Source: "2", Target: "1"}}
	if diff := cmp.Diff(want, Extract(notes)); diff != "" {
		t.Errorf("Extract (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, NewIndex(notes).Extract()); diff != "" {
		t.Errorf("Index.Extract (-want +got):\n%s", diff)
	}
}

func TestExtract_CaseInsensitiveNoSelfLinks(t *testing.T) {
	notes := []models.Note{
		{ID: "a", Title: "Graph Theory", Content: "GRAPH THEORY notes about graph theory"},
		{ID: "b", Title: "ML Papers", Content: "related to graph theory"},
	}
	got := Extract(notes)
	want := []Link{{Source: "b", Target: "a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestExtract_PartialTitleMatchesAreKept(t *testing.T) {
	notes := []models.Note{
		{ID: "g", Title: "Goals", Content: ""},
		{ID: "w", Title: "Weekly Goals", Content: ""},
		{ID: "p", Title: "Plan", Content: "Refer to Weekly Goals for priorities."},
	}
	want := []Link{{Source: "p", Target: "g"}, {Source: "p", Target: "w"}}
	if diff := cmp.Diff(want, Extract(notes)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract(nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
	if got := NewIndex(nil).Extract(); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestIndex_MatchesNaiveScan(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "go", "a", "Ωmega", "delta notes", "x", "weekly goals", "goals"}
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 20; round++ {
		var notes []models.Note
		for i := 0; i < 25; i++ {
			var body []string
			for k := 0; k < 12; k++ {
				body = append(body, words[rng.IntN(len(words))])
			}
			notes = append(notes, models.Note{
				ID:      fmt.Sprintf("n%d", i),
				Title:   strings.ToUpper(words[rng.IntN(len(words))]),
				Content: strings.Join(body, " "),
			})
		}
		if diff := cmp.Diff(Extract(notes), NewIndex(notes).Extract()); diff != "" {
			t.Fatalf("round %d: index differs from scan (-scan +index):\n%s", round, diff)
		}
	}
}
