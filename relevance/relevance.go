// Package relevance decides whether an offer title plausibly matches what the user searched for.
package relevance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNegativeKeywords flag accessories and parts rather than the product itself
var DefaultNegativeKeywords = []string{
	"capa",
	"capinha",
	"case",
	"carregador",
	"cabo",
	"controle",
	"pelicula",
	"suporte",
	"adaptador",
	"protetor",
	"skin",
	"adesivo",
}

// Normalize lowercases text and strips diacritics ("Película" -> "pelicula")
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Tokens splits normalized text into words of letters and digits
func Tokens(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// significant keeps tokens long enough to matter; numbers always matter ("15" in "iphone 15")
func significant(token string) bool {
	if len(token) > 2 {
		return true
	}
	return strings.IndexFunc(token, unicode.IsDigit) >= 0
}

// Filter holds the negative keyword set shared by every query
type Filter struct {
	negative map[string]struct{}
}

// NewFilter creates a filter rejecting titles that contain any of the given keywords
func NewFilter(negativeKeywords ...string) *Filter {
	negative := make(map[string]struct{}, len(negativeKeywords))
	for _, keyword := range negativeKeywords {
		negative[Normalize(strings.TrimSpace(keyword))] = struct{}{}
	}
	return &Filter{negative: negative}
}

// DefaultFilter creates a filter with DefaultNegativeKeywords
func DefaultFilter() *Filter {
	return NewFilter(DefaultNegativeKeywords...)
}

// Matcher is a Filter bound to one query
type Matcher struct {
	required []string
	negative map[string]struct{}
}

// ForQuery precomputes the required tokens for query.
// Negative keywords that are themselves part of the query never reject a title.
func (f *Filter) ForQuery(query string) *Matcher {
	queryTokens := Tokens(query)

	exempt := make(map[string]struct{}, len(queryTokens))
	var required []string
	for _, token := range queryTokens {
		exempt[token] = struct{}{}
		if significant(token) {
			required = append(required, token)
		}
	}

	negative := make(map[string]struct{}, len(f.negative))
	for keyword := range f.negative {
		if _, ok := exempt[keyword]; !ok {
			negative[keyword] = struct{}{}
		}
	}

	return &Matcher{required: required, negative: negative}
}

// Match reports whether title contains every required query token and no negative keyword
func (m *Matcher) Match(title string) bool {
	normalized := Normalize(title)
	if strings.TrimSpace(normalized) == "" {
		return false
	}

	for _, token := range m.required {
		if !strings.Contains(normalized, token) {
			return false
		}
	}

	for _, word := range Tokens(normalized) {
		if _, ok := m.negative[word]; ok {
			return false
		}
	}

	return true
}

// IsRelevant checks title against query using the filter's negative keywords
func (f *Filter) IsRelevant(title, query string) bool {
	return f.ForQuery(query).Match(title)
}

var defaultFilter = DefaultFilter()

// IsRelevant checks title against query using DefaultNegativeKeywords
func IsRelevant(title, query string) bool {
	return defaultFilter.IsRelevant(title, query)
}
