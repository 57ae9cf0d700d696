// Package preprocess normalizes query text and technology lists before embedding.
package preprocess

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct inputs the normalizer memoizes.
const DefaultCacheSize = 1024

// Cache memoizes normalized text keyed by the exact input string.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (string, bool)
	Add(key, value string) (evicted bool)
}

// NewLRUCache returns a thread-safe least-recently-used cache holding at most size entries.
func NewLRUCache(size int) (Cache, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create normalizer cache: %w", err)
	}
	return c, nil
}

// Normalizer maps raw text to a lowercase, stopword-free, stemmed token string.
type Normalizer struct {
	stopwords map[string]struct{}
	stemmer   Stemmer
	cache     Cache
	cacheSet  bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCache replaces the default LRU cache. A nil cache disables memoization.
func WithCache(c Cache) Option {
	return func(n *Normalizer) {
		n.cache = c
		n.cacheSet = true
	}
}

// WithStemmer replaces the default Sastrawi stemmer.
func WithStemmer(s Stemmer) Option {
	return func(n *Normalizer) { n.stemmer = s }
}

// WithStopwords replaces the default stopword list.
func WithStopwords(words []string) Option {
	return func(n *Normalizer) { n.stopwords = toSet(words) }
}

// NewNormalizer creates a normalizer with the Sastrawi stemmer, the Sastrawi stopword list
// and an LRU cache of DefaultCacheSize entries unless overridden by opts.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{stopwords: toSet(defaultStopwords)}
	for _, opt := range opts {
		opt(n)
	}
	if n.stemmer == nil {
		n.stemmer = NewSastrawiStemmer()
	}
	if !n.cacheSet {
		c, err := NewLRUCache(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		n.cache = c
	}
	return n, nil
}

// Normalize lowercases text, splits it on whitespace, drops tokens that are not purely
// alphanumeric, drops stopwords, stems what remains and joins the result with single spaces.
func (n *Normalizer) Normalize(text string) string {
	if n.cache != nil {
		if v, ok := n.cache.Get(text); ok {
			return v
		}
	}
	out := n.normalize(text)
	if n.cache != nil {
		n.cache.Add(text, out)
	}
	return out
}

// NormalizeValue normalizes v when it is a string and returns "" for any other type.
func (n *Normalizer) NormalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Normalize(s)
}

func (n *Normalizer) normalize(text string) string {
	tokens := strings.Fields(strings.ToLower(text))
	kept := tokens[:0]
	for _, tok := range tokens {
		if !isAlnum(tok) {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		if stem := n.stemmer.Stem(tok); stem != "" {
			kept = append(kept, stem)
		}
	}
	return strings.Join(kept, " ")
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
