package search

import "testing"

func TestDistance(t *testing.T) {
	m := NewMatcher()
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "kitten", 0},
		{"kitten", "sitten", 1},
		{"abc", "acb", 1}, // adjacent transposition counts once
		{"abc", "abcd", 1},
		{"", "ab", 2},
		{"ab", "", 2},
	}
	for _, tt := range tests {
		if got := m.Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDistance_MaxDistanceAbort(t *testing.T) {
	m := NewMatcher()
	// Length difference alone exceeds the limit.
	if got := m.Distance("a", "abcdefgh"); got != m.MaxDistance+1 {
		t.Errorf("Distance = %d, want overflow %d", got, m.MaxDistance+1)
	}
	// Fully dissimilar strings of equal length abort mid-computation.
	if got := m.Distance("aaaaaaaa", "bbbbbbbb"); got != m.MaxDistance+1 {
		t.Errorf("Distance = %d, want overflow %d", got, m.MaxDistance+1)
	}
}

func TestSimilarity(t *testing.T) {
	m := NewMatcher()
	if got := m.Similarity("golang", "golang"); got != 1 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := m.Similarity("", "golang"); got != 0 {
		t.Errorf("empty similarity = %v, want 0", got)
	}
	if got := m.Similarity("golang", ""); got != 0 {
		t.Errorf("empty similarity = %v, want 0", got)
	}
	if got := m.Similarity("zzzzzzz", "aaaaaaa"); got != 0 {
		t.Errorf("dissimilar similarity = %v, want 0", got)
	}
	got := m.Similarity("golang", "golan")
	if got <= 0 || got > 1 {
		t.Errorf("similarity = %v, want in (0,1]", got)
	}
}

func TestSimilarity_PrefixBoost(t *testing.T) {
	m := NewMatcher()
	// "search" prefixes "searching": boosted above the plain ratio.
	prefix := m.Similarity("search", "searching")
	plain := 1 - 3.0/9.0
	if prefix <= plain {
		t.Errorf("prefix similarity = %v, want > %v", prefix, plain)
	}
	if prefix > 1 {
		t.Errorf("similarity = %v exceeds 1", prefix)
	}
}

func TestMatches(t *testing.T) {
	m := NewMatcher()
	if !m.Matches("golang", "golang") {
		t.Errorf("expected exact match to clear tolerance")
	}
	if m.Matches("golang", "python") {
		t.Errorf("unexpected match")
	}
}

func TestBestMatches_Order(t *testing.T) {
	m := NewMatcher()
	got := m.BestMatches("note", []string{"notes", "note", "nose", "unrelated"}, 3)
	if len(got) < 2 {
		t.Fatalf("len = %d, want at least 2: %v", len(got), got)
	}
	if got[0].Value != "note" {
		t.Errorf("best = %q, want the exact match first", got[0].Value)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending: %v", got)
		}
	}
}

func TestTokenSimilarity(t *testing.T) {
	m := NewMatcher()
	if got := m.TokenSimilarity("go testing", "go testing"); got != 1 {
		t.Errorf("identical token similarity = %v, want 1", got)
	}
	if got := m.TokenSimilarity("", "anything"); got != 0 {
		t.Errorf("empty token similarity = %v, want 0", got)
	}
	// One token of the shorter side has no counterpart above tolerance.
	if got := m.TokenSimilarity("go zebra", "go testing notes"); got != 0 {
		t.Errorf("token similarity = %v, want 0", got)
	}
	got := m.TokenSimilarity("go testing", "go testing notes")
	if got <= 0 || got >= 1 {
		t.Errorf("partial token similarity = %v, want in (0,1)", got)
	}
}

func TestAlternatives(t *testing.T) {
	m := NewMatcher()
	alts := m.Alternatives("teh")
	want := map[string]bool{"the": false, "te": false, "eh": false}
	for _, a := range alts {
		if a == "teh" {
			t.Errorf("input must not appear in its own alternatives")
		}
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for w, found := range want {
		if !found {
			t.Errorf("expected alternative %q", w)
		}
	}
}
