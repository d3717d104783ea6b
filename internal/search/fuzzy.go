package search

import "strings"

// Fuzzy matcher defaults.
const (
	defaultMaxDistance  = 3
	defaultTolerance    = 0.7
	defaultPrefixWeight = 1.15
)

// alternativesAlphabet bounds the substitution/insertion space for
// alternative-spelling generation.
const alternativesAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Matcher computes normalized edit-distance similarity. The zero value
// is not usable; construct with NewMatcher.
type Matcher struct {
	// MaxDistance aborts the distance computation once exceeded.
	MaxDistance int
	// Transpositions counts an adjacent swap as a single edit.
	Transpositions bool
	// PrefixWeight boosts similarity when either string prefixes the other.
	PrefixWeight float64
	// Tolerance is the default threshold for Matches and TokenSimilarity.
	Tolerance float64
}

// NewMatcher returns a matcher with the default limits.
func NewMatcher() *Matcher {
	return &Matcher{
		MaxDistance:    defaultMaxDistance,
		Transpositions: true,
		PrefixWeight:   defaultPrefixWeight,
		Tolerance:      defaultTolerance,
	}
}

// Distance returns the edit distance between a and b, or MaxDistance+1
// as soon as the distance provably exceeds MaxDistance: upfront when the
// length difference alone does, and mid-computation once a row's running
// minimum does.
func (m *Matcher) Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	overflow := m.MaxDistance + 1

	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > m.MaxDistance {
		return overflow
	}
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if m.Transpositions && i > 1 && j > 1 &&
				ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t
				}
			}
			cur[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > m.MaxDistance {
			return overflow
		}
		prev2, prev, cur = prev, cur, prev2
	}
	d := prev[lb]
	if d > m.MaxDistance {
		return overflow
	}
	return d
}

// Similarity returns the normalized similarity of a and b in [0,1].
// Identical non-empty strings score 1; any empty operand scores 0. A
// prefix relationship in either direction applies the PrefixWeight
// boost.
func (m *Matcher) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}

	// A prefix pair has an exact distance of the length difference, so
	// the DP (and its MaxDistance abort) can be skipped entirely.
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		diff := la - lb
		if diff < 0 {
			diff = -diff
		}
		sim := (1 - float64(diff)/float64(longest)) * m.PrefixWeight
		return clamp01(sim)
	}

	d := m.Distance(a, b)
	if d > m.MaxDistance {
		return 0
	}
	return clamp01(1 - float64(d)/float64(longest))
}

// Matches reports whether the similarity of a and b clears the
// configured tolerance.
func (m *Matcher) Matches(a, b string) bool {
	return m.Similarity(a, b) >= m.Tolerance
}

// Match is one ranked candidate from BestMatches.
type Match struct {
	Value string
	Score float64
}

// BestMatches ranks candidates by descending similarity to s and returns
// at most n with a score above zero. Ties prefer an exact match, then
// the shorter candidate, then lexicographic order.
func (m *Matcher) BestMatches(s string, candidates []string, n int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if score := m.Similarity(s, c); score > 0 {
			matches = append(matches, Match{Value: c, Score: score})
		}
	}
	sortMatches(s, matches)
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

func sortMatches(s string, matches []Match) {
	less := func(a, b Match) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if (a.Value == s) != (b.Value == s) {
			return a.Value == s
		}
		if len(a.Value) != len(b.Value) {
			return len(a.Value) < len(b.Value)
		}
		return a.Value < b.Value
	}
	// Insertion sort keeps the tie-break logic in one place; candidate
	// lists here are vocabulary-sized, not corpus-sized.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && less(matches[j], matches[j-1]); j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

// TokenSimilarity compares a and b token-wise. Single-token inputs fall
// back to whole-string similarity. Otherwise every token of the shorter
// side must individually clear the tolerance against its best
// counterpart, and the result is the sum of best-pair similarities
// weighted over the longer side's token count.
func (m *Matcher) TokenSimilarity(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	if len(ta) == 1 && len(tb) == 1 {
		return m.Similarity(ta[0], tb[0])
	}

	shorter, longer := ta, tb
	if len(tb) < len(ta) {
		shorter, longer = tb, ta
	}

	var sum float64
	for _, t := range shorter {
		best := 0.0
		for _, u := range longer {
			if s := m.Similarity(t, u); s > best {
				best = s
			}
		}
		if best < m.Tolerance {
			return 0
		}
		sum += best
	}
	return clamp01(sum / float64(len(longer)))
}

// Alternatives generates the single-edit variants of s: adjacent
// transpositions, deletions, substitutions over a limited alphabet and
// insertions. The input itself is excluded.
func (m *Matcher) Alternatives(s string) []string {
	runes := []rune(strings.ToLower(s))
	seen := map[string]struct{}{s: {}}
	var out []string

	add := func(candidate string) {
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	for i := 0; i < len(runes)-1; i++ {
		swapped := make([]rune, len(runes))
		copy(swapped, runes)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		add(string(swapped))
	}
	for i := range runes {
		add(string(runes[:i]) + string(runes[i+1:]))
	}
	for i := range runes {
		for _, c := range alternativesAlphabet {
			if runes[i] == c {
				continue
			}
			add(string(runes[:i]) + string(c) + string(runes[i+1:]))
		}
	}
	for i := 0; i <= len(runes); i++ {
		for _, c := range alternativesAlphabet {
			add(string(runes[:i]) + string(c) + string(runes[i:]))
		}
	}
	return out
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
