// Package search ranks free-text queries against item names using trigrams.
package search

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is a matching text and its score (higher is better).
type Match struct {
	Index int
	Score float64
}

// minCoverage is the share of a word's trigrams a text must contain.
const minCoverage = 0.4

// Matcher searches a fixed list of texts.
type Matcher struct {
	normalized []string
	trigrams   []map[string]struct{}
}

// NewMatcher indexes texts. Match indices refer to positions in texts.
func NewMatcher(texts []string) *Matcher {
	m := &Matcher{
		normalized: make([]string, len(texts)),
		trigrams:   make([]map[string]struct{}, len(texts)),
	}
	for i, text := range texts {
		n := Normalize(text)
		m.normalized[i] = n
		m.trigrams[i] = trigrams(n)
	}
	return m
}

// Search returns the texts matching every word of query, best first.
// An empty query matches nothing. limit <= 0 means no limit.
func (m *Matcher) Search(query string, limit int) []Match {
	words := strings.Fields(Normalize(query))
	if len(words) == 0 {
		return nil
	}
	wordTris := make([]map[string]struct{}, len(words))
	for i, w := range words {
		wordTris[i] = trigrams(w)
	}

	var matches []Match
	for i := range m.normalized {
		if score := m.score(i, words, wordTris); score > 0 {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// score is zero unless every word matches.
func (m *Matcher) score(idx int, words []string, wordTris []map[string]struct{}) float64 {
	text := m.normalized[idx]
	total := 0.0
	for i, word := range words {
		// 1-2 character words only match as substrings
		if len([]rune(word)) <= 2 {
			if !strings.Contains(text, word) {
				return 0
			}
			total++
			continue
		}
		s := coverage(wordTris[i], m.trigrams[idx])
		if s < minCoverage {
			return 0
		}
		if strings.Contains(text, word) {
			s += 0.5
		}
		total += s
	}
	return total / float64(len(words))
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips diacritics ("Café" -> "cafe") and turns
// path and word separators into spaces.
func Normalize(s string) string {
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '_', '-', '.':
			return ' '
		}
		return r
	}, s)
}

// trigrams returns the trigram set of s, padded so prefixes and suffixes
// produce their own trigrams.
func trigrams(s string) map[string]struct{} {
	if s == "" {
		return nil
	}
	rs := []rune("  " + s + "  ")
	tris := make(map[string]struct{}, len(rs))
	for i := 0; i+3 <= len(rs); i++ {
		tri := string(rs[i : i+3])
		if strings.TrimSpace(tri) != "" {
			tris[tri] = struct{}{}
		}
	}
	return tris
}

// coverage is |query ∩ text| / |query|.
func coverage(query, text map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	n := 0
	for tri := range query {
		if _, ok := text[tri]; ok {
			n++
		}
	}
	return float64(n) / float64(len(query))
}
