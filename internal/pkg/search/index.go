// Package search implements a small in-memory inverted index with prefix
// matching, used to search the participants of an event.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/credenciamento/event-api/internal/pkg/textnorm"
)

// Document is one searchable entry. Keys are matched verbatim (CPF digits,
// codes); Fields are tokenized.
type Document struct {
	ID     uint
	Title  string
	Fields []string
	Keys   []string
}

type Index struct {
	postings map[string]map[uint]struct{}
	tokens   []string
	titles   map[uint]string
	size     int
}

func NewIndex(docs []Document) *Index {
	ix := &Index{
		postings: make(map[string]map[uint]struct{}),
		titles:   make(map[uint]string, len(docs)),
		size:     len(docs),
	}

	for _, doc := range docs {
		ix.titles[doc.ID] = textnorm.Fold(doc.Title)
		for _, tok := range textnorm.Tokens(doc.Title) {
			ix.add(tok, doc.ID)
		}
		for _, field := range doc.Fields {
			for _, tok := range textnorm.Tokens(field) {
				ix.add(tok, doc.ID)
			}
		}
		for _, key := range doc.Keys {
			if key = strings.TrimSpace(key); key != "" {
				ix.add(strings.ToLower(key), doc.ID)
			}
		}
	}

	ix.tokens = make([]string, 0, len(ix.postings))
	for tok := range ix.postings {
		ix.tokens = append(ix.tokens, tok)
	}
	sort.Strings(ix.tokens)

	return ix
}

func (ix *Index) add(token string, id uint) {
	set, ok := ix.postings[token]
	if !ok {
		set = make(map[uint]struct{})
		ix.postings[token] = set
	}
	set[id] = struct{}{}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return ix.size
}

// Search returns the IDs of documents matching every query token, best
// matches first. An empty query matches nothing.
func (ix *Index) Search(query string) []uint {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	scores := make(map[uint]int)
	for i, term := range terms {
		hits := ix.match(term)
		if i == 0 {
			for id, exact := range hits {
				scores[id] = exact
			}
			continue
		}
		for id := range scores {
			exact, ok := hits[id]
			if !ok {
				delete(scores, id)
				continue
			}
			scores[id] += exact
		}
		if len(scores) == 0 {
			return nil
		}
	}

	ids := make([]uint, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		if ix.titles[a] != ix.titles[b] {
			return ix.titles[a] < ix.titles[b]
		}
		return a < b
	})

	return ids
}

// match returns the documents having a token with the given prefix; the
// value is 1 when the token matched exactly.
func (ix *Index) match(prefix string) map[uint]int {
	hits := make(map[uint]int)
	start := sort.SearchStrings(ix.tokens, prefix)
	for i := start; i < len(ix.tokens) && strings.HasPrefix(ix.tokens[i], prefix); i++ {
		tok := ix.tokens[i]
		exact := 0
		if tok == prefix {
			exact = 1
		}
		for id := range ix.postings[tok] {
			if prev, ok := hits[id]; !ok || exact > prev {
				hits[id] = exact
			}
		}
	}
	return hits
}

// queryTerms tokenizes a query. A query made only of digits and
// punctuation (a CPF typed with or without mask) becomes one digit term.
func queryTerms(query string) []string {
	digits := strings.Builder{}
	onlyDigits := true
	for _, r := range query {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			onlyDigits = false
		}
	}
	if onlyDigits && digits.Len() > 0 {
		return []string{digits.String()}
	}
	return textnorm.Tokens(query)
}
