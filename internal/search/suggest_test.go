package search

import (
	"testing"

	"github.com/paravault/paravault/internal/models"
)

func suggesterWith(docs ...*models.Document) *Suggester {
	s := NewSuggester(NewMatcher())
	for _, d := range docs {
		s.Add(d)
	}
	return s
}

func hasSuggestion(suggestions []Suggestion, text string) bool {
	for _, s := range suggestions {
		if s.Text == text {
			return true
		}
	}
	return false
}

func TestSuggest_TitlePrefix(t *testing.T) {
	s := suggesterWith(
		testDoc("Planning Review", "", nil),
		testDoc("Plumbing Notes", "", nil),
	)
	got := s.Suggest("plan", 5)
	if !hasSuggestion(got, "planning") {
		t.Errorf("suggestions = %v, want planning", got)
	}
	if hasSuggestion(got, "plumbing") {
		t.Errorf("plumbing does not share the prefix: %v", got)
	}
}

func TestSuggest_Tags(t *testing.T) {
	s := suggesterWith(testDoc("Doc", "", []string{"finance", "fitness"}))
	got := s.Suggest("fi", 5)
	if !hasSuggestion(got, "finance") || !hasSuggestion(got, "fitness") {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggest_Phrases(t *testing.T) {
	s := suggesterWith(testDoc("Doc", "the quarterly budget review happened early", nil))
	got := s.Suggest("quarterly bu", 5)
	if !hasSuggestion(got, "quarterly budget") {
		t.Errorf("suggestions = %v, want the quarterly budget phrase", got)
	}
}

func TestSuggest_DidYouMean(t *testing.T) {
	s := suggesterWith(testDoc("Budget", "", nil))
	// "budgte" is a transposition of an indexed term and matches no prefix.
	got := s.Suggest("budgte", 5)
	if !hasSuggestion(got, "budget") {
		t.Errorf("suggestions = %v, want budget as a correction", got)
	}
}

func TestSuggest_Limit(t *testing.T) {
	s := suggesterWith(
		testDoc("Plan A", "", nil),
		testDoc("Plan B", "", nil),
		testDoc("Planning", "", nil),
		testDoc("Planting", "", nil),
	)
	got := s.Suggest("plan", 2)
	if len(got) > 2 {
		t.Errorf("len = %d, want at most 2", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending: %v", got)
		}
	}
}

func TestSuggest_EmptyInput(t *testing.T) {
	s := suggesterWith(testDoc("Doc", "", nil))
	if got := s.Suggest("", 5); got != nil {
		t.Errorf("suggestions = %v, want nil", got)
	}
	if got := s.Suggest("doc", 0); got != nil {
		t.Errorf("suggestions = %v, want nil for zero limit", got)
	}
}

func TestSuggest_RemoveWithdrawsTerms(t *testing.T) {
	doc := testDoc("Planning Review", "", []string{"planning"})
	s := suggesterWith(doc)
	if got := s.Suggest("plan", 5); len(got) == 0 {
		t.Fatalf("expected suggestions before removal")
	}
	s.Remove(doc)
	if got := s.Suggest("plan", 5); len(got) != 0 {
		t.Errorf("suggestions after removal = %v, want none", got)
	}
}

func TestSuggest_FrequencyRanks(t *testing.T) {
	s := suggesterWith(
		testDoc("common word", "", nil),
		testDoc("common thing", "", nil),
		testDoc("common item", "", nil),
		testDoc("comet", "", nil),
	)
	got := s.Suggest("com", 2)
	if len(got) == 0 {
		t.Fatalf("expected suggestions")
	}
	if got[0].Text != "common" {
		t.Errorf("top = %q, want the frequent term first: %v", got[0].Text, got)
	}
}
