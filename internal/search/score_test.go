package search

import (
	"testing"
	"time"

	"github.com/paravault/paravault/internal/models"
)

func testDoc(title, body string, tags []string) *models.Document {
	doc := &models.Document{
		Path:     "projects/doc.md",
		Title:    title,
		Body:     body,
		Tags:     tags,
		Category: models.CategoryProjects,
	}
	doc.TitleTokens = Tokenize(title)
	doc.BodyTokens = Tokenize(body)
	for _, t := range tags {
		doc.TagTokens = append(doc.TagTokens, Tokenize(t)...)
	}
	return doc
}

func fixedScorer(now time.Time) *Scorer {
	s := NewScorer(DefaultWeights())
	s.now = func() time.Time { return now }
	return s
}

func TestScore_TagExactAndPrefix(t *testing.T) {
	s := fixedScorer(time.Now())
	doc := testDoc("Doc", "body", []string{"golang", "testing"})

	exact := s.Score(doc, &Query{Tags: []string{"golang"}, Operator: OpAnd})
	if exact != DefaultWeights().TagExact {
		t.Errorf("exact tag score = %d, want %d", exact, DefaultWeights().TagExact)
	}

	prefix := s.Score(doc, &Query{Tags: []string{"go"}, Operator: OpAnd})
	if prefix != DefaultWeights().TagPrefix {
		t.Errorf("prefix tag score = %d, want %d", prefix, DefaultWeights().TagPrefix)
	}
}

func TestScore_Title(t *testing.T) {
	s := fixedScorer(time.Now())
	doc := testDoc("Weekly Planning", "body", nil)

	exact := s.Score(doc, &Query{Title: "Weekly Planning", Operator: OpAnd})
	if exact != 2*DefaultWeights().Title {
		t.Errorf("exact title score = %d, want %d", exact, 2*DefaultWeights().Title)
	}

	contains := s.Score(doc, &Query{Title: "planning", Operator: OpAnd})
	if contains != DefaultWeights().Title {
		t.Errorf("containment score = %d, want %d", contains, DefaultWeights().Title)
	}

	partial := s.Score(doc, &Query{Title: "weekly review", Operator: OpAnd})
	if partial != DefaultWeights().Title/2 {
		t.Errorf("partial token score = %d, want %d", partial, DefaultWeights().Title/2)
	}
}

func TestScore_ContentCap(t *testing.T) {
	s := fixedScorer(time.Now())
	body := ""
	for i := 0; i < 10; i++ {
		body += "budget planning "
	}
	doc := testDoc("Doc", body, nil)

	got := s.Score(doc, &Query{Content: "budget", Operator: OpAnd})
	if got != DefaultWeights().ContentCap {
		t.Errorf("content score = %d, want cap %d", got, DefaultWeights().ContentCap)
	}
}

func TestScore_Operators(t *testing.T) {
	s := fixedScorer(time.Now())
	doc := testDoc("Budget Review", "body", []string{"finance"})

	and := &Query{Title: "budget", Tags: []string{"missing"}, Operator: OpAnd}
	if got := s.Score(doc, and); got != 0 {
		t.Errorf("AND with one miss = %d, want 0", got)
	}

	or := &Query{Title: "budget", Tags: []string{"missing"}, Operator: OpOr}
	if got := s.Score(doc, or); got != DefaultWeights().Title {
		t.Errorf("OR score = %d, want %d", got, DefaultWeights().Title)
	}
}

func TestScore_PredicateOnlyFloor(t *testing.T) {
	s := fixedScorer(time.Now())
	doc := testDoc("Doc", "body", nil)

	got := s.Score(doc, &Query{Category: "projects", Operator: OpAnd})
	if got < 1 {
		t.Errorf("category-only match = %d, want at least 1", got)
	}

	if got := s.Score(doc, &Query{Category: "areas", Operator: OpAnd}); got != 0 {
		t.Errorf("category mismatch = %d, want 0", got)
	}
}

func TestScore_DateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := fixedScorer(now)
	doc := testDoc("Doc", "body", nil)
	doc.Created = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	in := &Query{
		From:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Operator: OpAnd,
	}
	if got := s.Score(doc, in); got < 1 {
		t.Errorf("in-range score = %d, want at least 1", got)
	}

	out := &Query{
		From:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Operator: OpAnd,
	}
	if got := s.Score(doc, out); got != 0 {
		t.Errorf("out-of-range score = %d, want 0", got)
	}
}

func TestScore_RecencyBoost(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := fixedScorer(now)

	fresh := testDoc("Budget", "body", nil)
	fresh.Modified = now.Add(-24 * time.Hour)
	stale := testDoc("Budget", "body", nil)
	stale.Modified = now.AddDate(-2, 0, 0)

	q := &Query{Title: "budget", Operator: OpAnd}
	if sf, ss := s.Score(fresh, q), s.Score(stale, q); sf <= ss {
		t.Errorf("fresh = %d, stale = %d, want fresh higher", sf, ss)
	}
}

func TestScore_Bounds(t *testing.T) {
	now := time.Now()
	s := fixedScorer(now)
	doc := testDoc("Budget Planning", "budget budget budget budget budget budget", []string{"budget", "planning", "finance"})
	doc.Modified = now

	q := &Query{
		Tags:     []string{"budget", "planning", "finance"},
		Title:    "Budget Planning",
		Content:  "budget",
		Operator: OpAnd,
	}
	got := s.Score(doc, q)
	if got < 0 || got > 100 {
		t.Errorf("score = %d, want within [0,100]", got)
	}
	if got != 100 {
		t.Errorf("stacked criteria = %d, want clamped to 100", got)
	}
}
