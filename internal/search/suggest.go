package search

import (
	"sort"
	"strings"

	"github.com/paravault/paravault/internal/models"
)

// Suggestion sources.
const (
	SourceTitle      = "title"
	SourceTag        = "tag"
	SourcePhrase     = "phrase"
	SourceDidYouMean = "did-you-mean"
)

// Suggestion is one ranked completion or correction.
type Suggestion struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// trieNode is an exclusively-owned prefix-tree node. Terminal nodes
// carry the literal string and its frequency.
type trieNode struct {
	children map[rune]*trieNode
	terminal bool
	freq     int
	literal  string
	// maxFreq is the highest terminal frequency in this subtree. It is
	// kept fresh on insert and used only as a traversal heuristic, so
	// staleness after removals is harmless.
	maxFreq int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

func (n *trieNode) insert(s string) {
	node := n
	for _, r := range s {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}
	node.terminal = true
	node.literal = s
	node.freq++

	// Refresh maxFreq along the path.
	f := node.freq
	node = n
	for _, r := range s {
		if node.maxFreq < f {
			node.maxFreq = f
		}
		node = node.children[r]
	}
	if node.maxFreq < f {
		node.maxFreq = f
	}
}

func (n *trieNode) remove(s string) {
	node := n
	for _, r := range s {
		child, ok := node.children[r]
		if !ok {
			return
		}
		node = child
	}
	if !node.terminal {
		return
	}
	node.freq--
	if node.freq <= 0 {
		node.freq = 0
		node.terminal = false
		node.literal = ""
	}
}

func (n *trieNode) walk(prefix string) *trieNode {
	node := n
	for _, r := range prefix {
		child, ok := node.children[r]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// collect gathers up to limit terminal nodes beneath n, descending into
// higher-frequency subtrees first.
func (n *trieNode) collect(limit int, out *[]*trieNode) {
	if len(*out) >= limit {
		return
	}
	if n.terminal && n.freq > 0 {
		*out = append(*out, n)
	}
	children := make([]*trieNode, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].maxFreq > children[j].maxFreq
	})
	for _, c := range children {
		if len(*out) >= limit {
			return
		}
		c.collect(limit, out)
	}
}

// Phrase extraction bounds.
const (
	minPhraseWords    = 2
	maxPhraseWords    = 4
	maxPhrasesPerDoc  = 400
	candidateOverscan = 4
)

// Suggester maintains three parallel prefix tries (title words and full
// titles, tags, and short content phrases) plus the full vocabulary for
// fuzzy did-you-mean backfill.
type Suggester struct {
	titles  *trieNode
	tags    *trieNode
	phrases *trieNode
	vocab   map[string]int
	fuzzy   *Matcher
}

// NewSuggester returns an empty suggester using the given matcher for
// fuzzy backfill.
func NewSuggester(fuzzy *Matcher) *Suggester {
	s := &Suggester{fuzzy: fuzzy}
	s.Reset()
	return s
}

// Reset discards all indexed terms.
func (s *Suggester) Reset() {
	s.titles = newTrieNode()
	s.tags = newTrieNode()
	s.phrases = newTrieNode()
	s.vocab = make(map[string]int)
}

// Add indexes one document's terms.
func (s *Suggester) Add(doc *models.Document) {
	s.apply(doc, true)
}

// Remove withdraws one document's terms.
func (s *Suggester) Remove(doc *models.Document) {
	s.apply(doc, false)
}

func (s *Suggester) apply(doc *models.Document, add bool) {
	touch := func(trie *trieNode, term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if add {
			trie.insert(term)
			s.vocab[term]++
		} else {
			trie.remove(term)
			if s.vocab[term]--; s.vocab[term] <= 0 {
				delete(s.vocab, term)
			}
		}
	}

	for _, w := range doc.TitleTokens {
		touch(s.titles, w)
	}
	if doc.Title != "" {
		touch(s.titles, doc.Title)
	}
	for _, t := range doc.Tags {
		touch(s.tags, t)
	}
	for _, p := range contentPhrases(doc.BodyTokens) {
		touch(s.phrases, p)
	}
}

// contentPhrases extracts 2–4-word sliding windows over the body
// tokens, dropping windows that begin or end with a stop word.
func contentPhrases(tokens []string) []string {
	var out []string
	for size := minPhraseWords; size <= maxPhraseWords; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			if len(out) >= maxPhrasesPerDoc {
				return out
			}
			window := tokens[i : i+size]
			if IsStopword(window[0]) || IsStopword(window[len(window)-1]) {
				continue
			}
			out = append(out, strings.Join(window, " "))
		}
	}
	return out
}

// Suggest returns up to limit completions for input, ranked by a blend
// of frequency, length similarity and prefix/fuzzy overlap. When prefix
// matches are scarce it backfills with fuzzy corrections from the full
// vocabulary.
func (s *Suggester) Suggest(input string, limit int) []Suggestion {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var suggestions []Suggestion

	gather := func(trie *trieNode, source string) {
		node := trie.walk(input)
		if node == nil {
			return
		}
		var terminals []*trieNode
		node.collect(limit*candidateOverscan, &terminals)
		for _, t := range terminals {
			if _, dup := seen[t.literal]; dup {
				continue
			}
			seen[t.literal] = struct{}{}
			suggestions = append(suggestions, Suggestion{
				Text:   t.literal,
				Score:  s.rank(input, t.literal, t.freq),
				Source: source,
			})
		}
	}

	gather(s.titles, SourceTitle)
	gather(s.tags, SourceTag)
	gather(s.phrases, SourcePhrase)

	if len(suggestions) < limit {
		s.backfill(input, limit-len(suggestions), seen, &suggestions)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Text < suggestions[j].Text
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// rank blends frequency, length similarity to the input and
// prefix/fuzzy overlap into one score.
func (s *Suggester) rank(input, candidate string, freq int) float64 {
	freqScore := float64(freq) / float64(freq+2)

	shorter, longer := len(input), len(candidate)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lengthScore := float64(shorter) / float64(longer)

	overlap := 0.0
	if strings.HasPrefix(candidate, input) {
		overlap = 1
	} else {
		overlap = s.fuzzy.Similarity(input, candidate)
	}

	return 0.5*freqScore + 0.2*lengthScore + 0.3*overlap
}

// backfill adds did-you-mean corrections: alternative spellings that
// exist in the vocabulary first, then the best fuzzy vocabulary matches
// above the matcher's tolerance.
func (s *Suggester) backfill(input string, want int, seen map[string]struct{}, suggestions *[]Suggestion) {
	added := 0
	for _, alt := range s.fuzzy.Alternatives(input) {
		if added >= want {
			return
		}
		freq, ok := s.vocab[alt]
		if !ok {
			continue
		}
		if _, dup := seen[alt]; dup {
			continue
		}
		seen[alt] = struct{}{}
		*suggestions = append(*suggestions, Suggestion{
			Text:   alt,
			Score:  s.rank(input, alt, freq),
			Source: SourceDidYouMean,
		})
		added++
	}

	if added >= want {
		return
	}
	candidates := make([]string, 0, len(s.vocab))
	for term := range s.vocab {
		if _, dup := seen[term]; !dup {
			candidates = append(candidates, term)
		}
	}
	for _, m := range s.fuzzy.BestMatches(input, candidates, want-added) {
		if m.Score < s.fuzzy.Tolerance {
			continue
		}
		seen[m.Value] = struct{}{}
		*suggestions = append(*suggestions, Suggestion{
			Text:   m.Value,
			Score:  s.rank(input, m.Value, s.vocab[m.Value]),
			Source: SourceDidYouMean,
		})
	}
}
