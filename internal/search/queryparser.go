package search

import (
	"strings"

	"github.com/paravault/paravault/internal/apperr"
)

// MatchKind selects how a clause value is matched against a field.
type MatchKind string

// Clause match kinds. The parser emits exact, phrase and wildcard;
// fuzzy and pattern clauses are constructed programmatically.
const (
	MatchExact    MatchKind = "exact"
	MatchFuzzy    MatchKind = "fuzzy"
	MatchWildcard MatchKind = "wildcard"
	MatchPhrase   MatchKind = "phrase"
	MatchPattern  MatchKind = "pattern"
)

// Field restricts a clause to one document field. Empty means all.
type Field string

// Clause fields.
const (
	FieldAny     Field = ""
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// Clause is one atomic condition of a parsed boolean query.
type Clause struct {
	Field Field     `json:"field,omitempty"`
	Value string    `json:"value"`
	Kind  MatchKind `json:"kind"`
}

// ParsedQuery holds the three disjoint clause lists of a boolean query.
// A non-empty parse always has at least one must clause: when only
// should clauses exist, one is promoted so a query can never match by
// absence of constraints.
type ParsedQuery struct {
	Must    []Clause `json:"must,omitempty"`
	Should  []Clause `json:"should,omitempty"`
	MustNot []Clause `json:"mustNot,omitempty"`
}

// Empty reports whether the query carries no clauses at all.
func (p *ParsedQuery) Empty() bool {
	return len(p.Must) == 0 && len(p.Should) == 0 && len(p.MustNot) == 0
}

// ClauseCount returns the total number of clauses.
func (p *ParsedQuery) ClauseCount() int {
	return len(p.Must) + len(p.Should) + len(p.MustNot)
}

// normalize applies the must/should promotion invariant.
func (p *ParsedQuery) normalize() {
	if len(p.Must) == 0 && len(p.Should) > 0 {
		p.Must = append(p.Must, p.Should[0])
		p.Should = p.Should[1:]
		if len(p.Should) == 0 {
			p.Should = nil
		}
	}
}

// --- lexer ---

type tokenType int

const (
	tokWord tokenType = iota
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	typ   tokenType
	text  string // word text or phrase content
	field Field  // set for field:value terms
	index int    // ordinal position in the token stream
}

func lex(input string) []token {
	var toks []token
	i := 0
	n := len(input)

	emit := func(t token) {
		t.index = len(toks)
		toks = append(toks, t)
	}

	readQuoted := func() string {
		i++ // opening quote
		start := i
		for i < n && input[i] != '"' {
			i++
		}
		s := input[start:i]
		if i < n {
			i++ // closing quote
		}
		return s
	}

	for i < n {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			emit(token{typ: tokLParen, text: "("})
			i++
		case c == ')':
			emit(token{typ: tokRParen, text: ")"})
			i++
		case c == '"':
			emit(token{typ: tokPhrase, text: readQuoted()})
		case c == '-':
			emit(token{typ: tokNot, text: "-"})
			i++
		default:
			start := i
			for i < n && !strings.ContainsRune(" \t\n\r()\"", rune(input[i])) {
				i++
			}
			word := input[start:i]

			// field:value — the value may itself be quoted.
			if colon := strings.IndexByte(word, ':'); colon > 0 {
				if f := Field(strings.ToLower(word[:colon])); f == FieldTitle || f == FieldContent || f == FieldTags {
					value := word[colon+1:]
					if value == "" && i < n && input[i] == '"' {
						value = readQuoted()
						emit(token{typ: tokPhrase, text: value, field: f})
						continue
					}
					emit(token{typ: tokWord, text: value, field: f})
					continue
				}
			}

			switch strings.ToUpper(word) {
			case "AND":
				emit(token{typ: tokAnd, text: word})
			case "OR":
				emit(token{typ: tokOr, text: word})
			case "NOT":
				emit(token{typ: tokNot, text: word})
			default:
				emit(token{typ: tokWord, text: word})
			}
		}
	}
	return toks
}

// --- parser ---

// node is the transient parse tree, flattened into a ParsedQuery once
// the whole input has parsed.
type node interface{ isNode() }

type clauseNode struct{ clause Clause }
type notNode struct{ child node }
type andNode struct{ children []node }
type orNode struct{ children []node }

func (clauseNode) isNode() {}
func (notNode) isNode()    {}
func (andNode) isNode()    {}
func (orNode) isNode()     {}

type queryParser struct {
	toks []token
	pos  int
}

// ParseQuery parses one raw boolean-syntax string. Grammar:
//
//	Expression := AndExpr (OR AndExpr)*
//	AndExpr    := Term (AND? Term)*
//	Term       := NOT? (Group | Field | Quoted | Wildcard | Word)
//
// An empty input yields an empty ParsedQuery. A syntax error (such as
// an unmatched parenthesis) aborts the whole parse; no partial result
// is returned.
func ParseQuery(input string) (*ParsedQuery, error) {
	toks := lex(input)
	if len(toks) == 0 {
		return &ParsedQuery{}, nil
	}

	p := &queryParser{toks: toks}
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, apperr.Parse(t.index, t.text, "unexpected token")
	}

	q := &ParsedQuery{}
	flatten(root, ctxMust, q)
	q.normalize()
	return q, nil
}

func (p *queryParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *queryParser) parseExpression() (node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok || t.typ != tokOr {
			break
		}
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return orNode{children: children}, nil
}

func (p *queryParser) parseAnd() (node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok {
			break
		}
		if t.typ == tokAnd {
			p.pos++
			t, ok = p.peek()
			if !ok {
				return nil, apperr.Parse(len(p.toks)-1, "AND", "dangling operator")
			}
		}
		if t.typ == tokOr || t.typ == tokRParen {
			break
		}
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return andNode{children: children}, nil
}

func (p *queryParser) parseTerm() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, apperr.Parse(len(p.toks)-1, "", "expected a term")
	}

	switch t.typ {
	case tokNot:
		p.pos++
		child, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil

	case tokLParen:
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.typ != tokRParen {
			return nil, apperr.Parse(t.index, t.text, "unmatched parenthesis")
		}
		p.pos++
		return inner, nil

	case tokPhrase:
		p.pos++
		return clauseNode{clause: Clause{Field: t.field, Value: t.text, Kind: MatchPhrase}}, nil

	case tokWord:
		p.pos++
		kind := MatchExact
		if strings.ContainsAny(t.text, "*?") {
			kind = MatchWildcard
		}
		return clauseNode{clause: Clause{Field: t.field, Value: t.text, Kind: kind}}, nil

	default:
		return nil, apperr.Parse(t.index, t.text, "unexpected token")
	}
}

// --- flattening ---

type flattenCtx int

const (
	ctxMust flattenCtx = iota
	ctxShould
	ctxNot
)

// flatten distributes a parse tree into the three flat clause sets.
// Parenthesized groups of any size thread through: clauses inherit the
// surrounding context, OR lowers must to should, and NOT sends every
// clause beneath it to mustNot (a double negation restores must).
func flatten(n node, ctx flattenCtx, q *ParsedQuery) {
	switch v := n.(type) {
	case clauseNode:
		switch ctx {
		case ctxMust:
			q.Must = append(q.Must, v.clause)
		case ctxShould:
			q.Should = append(q.Should, v.clause)
		case ctxNot:
			q.MustNot = append(q.MustNot, v.clause)
		}
	case notNode:
		next := ctxNot
		if ctx == ctxNot {
			next = ctxMust
		}
		flatten(v.child, next, q)
	case andNode:
		for _, c := range v.children {
			flatten(c, ctx, q)
		}
	case orNode:
		next := ctxShould
		if ctx == ctxNot {
			next = ctxNot
		}
		for _, c := range v.children {
			flatten(c, next, q)
		}
	}
}
