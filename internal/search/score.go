package search

import (
	"strings"
	"time"

	"github.com/paravault/paravault/internal/models"
)

// Weights tune the additive contributions of the basic scorer. Scores
// are always clamped to [0,100].
type Weights struct {
	TagExact   int // exact tag match, per tag
	TagPrefix  int // prefix relation in either direction, per tag
	Title      int // containment; equality scores double
	ContentHit int // per content occurrence
	ContentCap int // ceiling on the content contribution
	RecencyMax int // upper bound of the recency boost
}

// DefaultWeights are the stock scorer weights.
func DefaultWeights() Weights {
	return Weights{
		TagExact:   25,
		TagPrefix:  15,
		Title:      20,
		ContentHit: 5,
		ContentCap: 25,
		RecencyMax: 10,
	}
}

// recencyWindowDays is the span of the linear recency decay.
const recencyWindowDays = 365

// Scorer computes the basic relevance score of a document against a
// structured query.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// NewScorer returns a scorer using the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w, now: time.Now}
}

// Score returns the document's relevance in [0,100], or 0 when the
// query's predicates reject it. Category equality and date-range
// membership are pure filter predicates; tag, title and content
// criteria both filter and contribute points.
func (s *Scorer) Score(doc *models.Document, q *Query) int {
	matched, score := s.evaluate(doc, q)
	if !matched {
		return 0
	}
	if score == 0 {
		// Predicate-only queries (category, date range) still have to
		// surface their matches.
		score = 1
	}
	if !doc.Modified.IsZero() {
		score += s.recencyBoost(doc.Modified)
	}
	return clampScore(score)
}

// evaluate applies every present criterion and combines the outcomes
// with the query operator. Zero present predicates pass trivially.
func (s *Scorer) evaluate(doc *models.Document, q *Query) (bool, int) {
	type outcome struct {
		hit    bool
		points int
	}
	var outcomes []outcome

	if len(q.Tags) > 0 {
		pts := s.scoreTags(doc, q.Tags)
		outcomes = append(outcomes, outcome{pts > 0, pts})
	}
	if q.Title != "" {
		pts := s.scoreTitle(doc, q.Title)
		outcomes = append(outcomes, outcome{pts > 0, pts})
	}
	if q.Content != "" {
		pts := s.scoreContent(doc, q.Content)
		outcomes = append(outcomes, outcome{pts > 0, pts})
	}
	if q.Category != "" {
		outcomes = append(outcomes, outcome{doc.Category == models.Category(q.Category), 0})
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		outcomes = append(outcomes, outcome{s.inDateRange(doc, q), 0})
	}

	if len(outcomes) == 0 {
		return true, 0
	}

	matched := q.Operator != OpOr
	score := 0
	for _, o := range outcomes {
		if q.Operator == OpOr {
			matched = matched || o.hit
		} else {
			matched = matched && o.hit
		}
		if o.hit {
			score += o.points
		}
	}
	return matched, score
}

func (s *Scorer) scoreTags(doc *models.Document, tags []string) int {
	score := 0
	for _, want := range tags {
		if want == "" {
			continue
		}
		if doc.HasTag(want) {
			score += s.weights.TagExact
			continue
		}
		for _, have := range doc.Tags {
			if strings.HasPrefix(have, want) || strings.HasPrefix(want, have) {
				score += s.weights.TagPrefix
				break
			}
		}
	}
	return score
}

func (s *Scorer) scoreTitle(doc *models.Document, query string) int {
	title := strings.ToLower(doc.Title)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}
	if title == query {
		return 2 * s.weights.Title
	}
	if strings.Contains(title, query) {
		return s.weights.Title
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(doc.TitleTokens))
	for _, t := range doc.TitleTokens {
		have[t] = struct{}{}
	}
	matchedCount := 0
	for _, t := range queryTokens {
		if _, ok := have[t]; ok {
			matchedCount++
		}
	}
	if matchedCount == 0 {
		return 0
	}
	return s.weights.Title * matchedCount / len(queryTokens)
}

func (s *Scorer) scoreContent(doc *models.Document, query string) int {
	body := strings.ToLower(doc.Body)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}

	if n := strings.Count(body, query); n > 0 {
		return capInt(n*s.weights.ContentHit, s.weights.ContentCap)
	}

	// No substring hit: fall back to counting individual word
	// occurrences across the body tokens.
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		want[t] = struct{}{}
	}
	n := 0
	for _, t := range doc.BodyTokens {
		if _, ok := want[t]; ok {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return capInt(n*s.weights.ContentHit, s.weights.ContentCap)
}

func (s *Scorer) inDateRange(doc *models.Document, q *Query) bool {
	date := doc.EffectiveDate()
	if date.IsZero() {
		return false
	}
	if !q.From.IsZero() && date.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && date.After(q.To) {
		return false
	}
	return true
}

// recencyBoost decays linearly from RecencyMax at "today" to 0 at
// recencyWindowDays or older.
func (s *Scorer) recencyBoost(modified time.Time) int {
	days := s.now().Sub(modified).Hours() / 24
	if days < 0 {
		days = 0
	}
	if days >= recencyWindowDays {
		return 0
	}
	return int(float64(s.weights.RecencyMax) * (1 - days/recencyWindowDays))
}

func capInt(v, ceiling int) int {
	if v > ceiling {
		return ceiling
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
