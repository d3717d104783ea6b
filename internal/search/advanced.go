package search

import (
	"regexp"
	"strings"

	"github.com/paravault/paravault/internal/models"
)

// Field boost factors for clause scoring. Each field a clause touches
// is scored independently and the contributions are summed.
const (
	boostTitle   = 3.0
	boostTags    = 2.0
	boostContent = 1.0

	// clauseBase is the value of a full clause hit on a single field
	// before boosting.
	clauseBase = 10.0

	// shouldDiscount weighs the single best should-clause score.
	shouldDiscount = 0.5

	// completenessBonus applies when every must and should clause
	// scored above zero.
	completenessBonus = 1.2
)

// AdvancedScorer scores documents against parsed boolean queries. It
// composes the basic scorer (recency behavior) and a fuzzy matcher
// (fuzzy clauses and document similarity) rather than extending either.
type AdvancedScorer struct {
	basic *Scorer
	fuzzy *Matcher
}

// NewAdvancedScorer builds an advanced scorer on top of the given
// basic scorer and fuzzy matcher.
func NewAdvancedScorer(basic *Scorer, fuzzy *Matcher) *AdvancedScorer {
	return &AdvancedScorer{basic: basic, fuzzy: fuzzy}
}

// ScoreDocument returns the document's relevance in [0,100] for the
// parsed query. Any zero-scoring must clause zeroes the document, as
// does any matching mustNot clause. Should clauses contribute their
// single best score at a discount.
func (s *AdvancedScorer) ScoreDocument(doc *models.Document, q *ParsedQuery) int {
	for _, c := range q.MustNot {
		if s.ScoreClause(doc, c) > 0 {
			return 0
		}
	}

	total := 0.0
	for _, c := range q.Must {
		cs := s.ScoreClause(doc, c)
		if cs == 0 {
			return 0
		}
		total += cs
	}

	bestShould := 0.0
	allShouldHit := true
	for _, c := range q.Should {
		cs := s.ScoreClause(doc, c)
		if cs == 0 {
			allShouldHit = false
			continue
		}
		if cs > bestShould {
			bestShould = cs
		}
	}
	total += shouldDiscount * bestShould

	if total == 0 {
		return 0
	}
	if allShouldHit {
		total *= completenessBonus
	}

	score := int(total)
	if !doc.Modified.IsZero() {
		score += s.basic.recencyBoost(doc.Modified)
	}
	return clampScore(score)
}

// ScoreClause scores one clause against its field, or against all three
// fields when unrestricted, each independently boosted and summed.
func (s *AdvancedScorer) ScoreClause(doc *models.Document, c Clause) float64 {
	if strings.TrimSpace(c.Value) == "" {
		return 0
	}
	switch c.Field {
	case FieldTitle:
		return boostTitle * s.scoreField(doc.Title, doc.TitleTokens, c)
	case FieldTags:
		return boostTags * s.scoreField(strings.Join(doc.Tags, " "), doc.TagTokens, c)
	case FieldContent:
		return boostContent * s.scoreField(doc.Body, doc.BodyTokens, c)
	default:
		return boostTitle*s.scoreField(doc.Title, doc.TitleTokens, c) +
			boostTags*s.scoreField(strings.Join(doc.Tags, " "), doc.TagTokens, c) +
			boostContent*s.scoreField(doc.Body, doc.BodyTokens, c)
	}
}

func (s *AdvancedScorer) scoreField(text string, tokens []string, c Clause) float64 {
	value := strings.ToLower(c.Value)
	lower := strings.ToLower(text)

	switch c.Kind {
	case MatchPhrase:
		if strings.Contains(lower, value) {
			return clauseBase
		}

	case MatchWildcard:
		re, err := wildcardRegexp(value)
		if err != nil {
			return 0
		}
		for _, t := range tokens {
			if re.MatchString(t) {
				return clauseBase
			}
		}

	case MatchPattern:
		re, err := regexp.Compile("(?i)" + c.Value)
		if err != nil {
			return 0
		}
		if re.MatchString(text) {
			return clauseBase
		}

	case MatchFuzzy:
		best := 0.0
		for _, t := range tokens {
			if sim := s.fuzzy.Similarity(value, t); sim > best {
				best = sim
			}
		}
		if best >= s.fuzzy.Tolerance {
			return clauseBase * best
		}

	default: // MatchExact
		for _, t := range tokens {
			if t == value {
				return clauseBase
			}
		}
		if strings.Contains(lower, value) {
			return clauseBase * 0.7
		}
	}
	return 0
}

// wildcardRegexp translates a wildcard word into a regular expression:
// `*` matches any run, `?` any single character, everything else is
// literal. The pattern is anchored unless it itself starts or ends
// with `*`.
func wildcardRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	if !strings.HasPrefix(pattern, "*") {
		sb.WriteString("^")
	}
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if !strings.HasSuffix(pattern, "*") {
		sb.WriteString("$")
	}
	return regexp.Compile(sb.String())
}

// Document-similarity blend weights.
const (
	similarityTitleWeight   = 0.4
	similarityTagWeight     = 0.3
	similarityContentWeight = 0.3
)

// DocumentSimilarity returns a symmetric similarity of two documents in
// [0,1]: a weighted blend of title similarity, tag Jaccard similarity
// and stop-word-filtered content-keyword Jaccard similarity.
func (s *AdvancedScorer) DocumentSimilarity(a, b *models.Document) float64 {
	title := s.fuzzy.TokenSimilarity(a.Title, b.Title)
	tags := jaccard(a.Tags, b.Tags)
	content := jaccard(keywordSet(a.BodyTokens), keywordSet(b.BodyTokens))
	return clamp01(similarityTitleWeight*title +
		similarityTagWeight*tags +
		similarityContentWeight*content)
}

func keywordSet(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}
	inter := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
