package preprocess

import sastrawi "github.com/RadhiFadlillah/go-sastrawi"

// Stemmer reduces a single lowercase word to its root form.
type Stemmer interface {
	Stem(word string) string
}

// StemFunc adapts a plain function to the Stemmer interface.
type StemFunc func(word string) string

// Stem calls f(word).
func (f StemFunc) Stem(word string) string {
	return f(word)
}

// NewSastrawiStemmer returns the Sastrawi Indonesian stemmer backed by its default root-word dictionary.
func NewSastrawiStemmer() Stemmer {
	st := sastrawi.NewStemmer(sastrawi.DefaultDictionary())
	return StemFunc(func(word string) string {
		return st.Stem(word)
	})
}

// IdentityStemmer leaves words unchanged.
var IdentityStemmer Stemmer = StemFunc(func(word string) string { return word })
