package search

import (
	"testing"
	"time"
)

func advScorer(now time.Time) *AdvancedScorer {
	return NewAdvancedScorer(fixedScorer(now), NewMatcher())
}

func TestScoreDocument_MustNotZeroes(t *testing.T) {
	s := advScorer(time.Now())
	doc := testDoc("Budget Plan", "quarterly numbers", []string{"finance"})

	q := &ParsedQuery{
		Must:    []Clause{{Value: "budget", Kind: MatchExact}},
		MustNot: []Clause{{Value: "quarterly", Kind: MatchExact}},
	}
	if got := s.ScoreDocument(doc, q); got != 0 {
		t.Errorf("score = %d, want 0 when a mustNot clause matches", got)
	}
}

func TestScoreDocument_AllMustRequired(t *testing.T) {
	s := advScorer(time.Now())
	doc := testDoc("Budget Plan", "quarterly numbers", nil)

	q := &ParsedQuery{Must: []Clause{
		{Value: "budget", Kind: MatchExact},
		{Value: "absent", Kind: MatchExact},
	}}
	if got := s.ScoreDocument(doc, q); got != 0 {
		t.Errorf("score = %d, want 0 when any must clause misses", got)
	}
}

func TestScoreDocument_ShouldRaisesScore(t *testing.T) {
	s := advScorer(time.Now())
	doc := testDoc("Budget Plan", "quarterly numbers", nil)

	base := s.ScoreDocument(doc, &ParsedQuery{
		Must: []Clause{{Value: "budget", Kind: MatchExact}},
	})
	withShould := s.ScoreDocument(doc, &ParsedQuery{
		Must:   []Clause{{Value: "budget", Kind: MatchExact}},
		Should: []Clause{{Value: "quarterly", Kind: MatchExact}},
	})
	if withShould <= base {
		t.Errorf("with should = %d, base = %d, want an increase", withShould, base)
	}
}

func TestScoreDocument_Bounds(t *testing.T) {
	now := time.Now()
	s := advScorer(now)
	doc := testDoc("Budget Plan Review", "budget plan review budget", []string{"budget", "plan", "review"})
	doc.Modified = now

	q := &ParsedQuery{Must: []Clause{
		{Value: "budget", Kind: MatchExact},
		{Value: "plan", Kind: MatchExact},
		{Value: "review", Kind: MatchExact},
	}}
	got := s.ScoreDocument(doc, q)
	if got < 0 || got > 100 {
		t.Errorf("score = %d, want within [0,100]", got)
	}
}

func TestScoreClause_FieldBoosts(t *testing.T) {
	s := advScorer(time.Now())
	inTitle := testDoc("budget", "filler text", nil)
	inBody := testDoc("filler", "budget text", nil)

	c := Clause{Value: "budget", Kind: MatchExact, Field: FieldAny}
	if st, sb := s.ScoreClause(inTitle, c), s.ScoreClause(inBody, c); st <= sb {
		t.Errorf("title hit = %v, body hit = %v, want title boosted higher", st, sb)
	}
}

func TestScoreClause_FieldRestriction(t *testing.T) {
	s := advScorer(time.Now())
	doc := testDoc("budget", "other words", nil)

	hit := s.ScoreClause(doc, Clause{Field: FieldTitle, Value: "budget", Kind: MatchExact})
	if hit == 0 {
		t.Errorf("expected a title-field hit")
	}
	miss := s.ScoreClause(doc, Clause{Field: FieldContent, Value: "budget", Kind: MatchExact})
	if miss != 0 {
		t.Errorf("content clause = %v, want 0 when the term is only in the title", miss)
	}
}

func TestScoreClause_Kinds(t *testing.T) {
	s := advScorer(time.Now())
	doc := testDoc("Doc", "the quarterly budget review happened", nil)

	tests := []struct {
		name string
		c    Clause
		hit  bool
	}{
		{"phrase hit", Clause{Field: FieldContent, Value: "quarterly budget", Kind: MatchPhrase}, true},
		{"phrase miss", Clause{Field: FieldContent, Value: "budget quarterly", Kind: MatchPhrase}, false},
		{"wildcard hit", Clause{Field: FieldContent, Value: "quart*", Kind: MatchWildcard}, true},
		{"wildcard anchored", Clause{Field: FieldContent, Value: "uarter*", Kind: MatchWildcard}, false},
		{"question mark", Clause{Field: FieldContent, Value: "b?dget", Kind: MatchWildcard}, true},
		{"pattern hit", Clause{Field: FieldContent, Value: "qu.rterly", Kind: MatchPattern}, true},
		{"pattern invalid", Clause{Field: FieldContent, Value: "([", Kind: MatchPattern}, false},
		{"fuzzy hit", Clause{Field: FieldContent, Value: "budgett", Kind: MatchFuzzy}, true},
		{"fuzzy miss", Clause{Field: FieldContent, Value: "zzzzzz", Kind: MatchFuzzy}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScoreClause(doc, tt.c)
			if tt.hit && got == 0 {
				t.Errorf("clause %+v = 0, want a hit", tt.c)
			}
			if !tt.hit && got != 0 {
				t.Errorf("clause %+v = %v, want 0", tt.c, got)
			}
		})
	}
}

func TestDocumentSimilarity(t *testing.T) {
	s := advScorer(time.Now())

	a := testDoc("Budget Planning", "quarterly budget numbers for finance", []string{"finance", "planning"})
	b := testDoc("Budget Planning", "quarterly budget numbers for finance", []string{"finance", "planning"})
	c := testDoc("Gardening Notes", "tomato seedlings need water", []string{"garden"})

	same := s.DocumentSimilarity(a, b)
	if same <= 0.9 || same > 1 {
		t.Errorf("identical similarity = %v, want near 1", same)
	}
	diff := s.DocumentSimilarity(a, c)
	if diff >= same {
		t.Errorf("unrelated similarity = %v, want below %v", diff, same)
	}
}

func TestWildcardRegexp(t *testing.T) {
	re, err := wildcardRegexp("plan*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re.MatchString("planning") || re.MatchString("replanning") {
		t.Errorf("leading anchor broken")
	}

	re, err = wildcardRegexp("*ing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re.MatchString("planning") || re.MatchString("ingest") {
		t.Errorf("trailing anchor broken")
	}
}
