// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed stop_words_english.txt
var stopWordsFile string

// stopWords is the built-in English stop word list.
var stopWords = loadStopWords(stopWordsFile)

func loadStopWords(data string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, line := range strings.Split(data, "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words[w] = struct{}{}
		}
	}
	return words
}

// IsStopWord reports whether w is in the English stop word list.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// Tokenize lowercases text and splits it into word tokens: maximal runs of
// letters, numbers and underscores at least two runes long. Stop words are
// removed.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := text[start:end]
		start = -1
		if len([]rune(w)) < 2 || IsStopWord(w) {
			return
		}
		tokens = append(tokens, w)
	}
	for i, r := range text {
		if isTokenRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

// NGrams expands tokens into all n-grams for n in [1, maxN], joined by a
// single space. Unigrams come first, then bigrams, and so on.
func NGrams(tokens []string, maxN int) []string {
	if maxN < 1 {
		maxN = 1
	}
	out := make([]string, 0, len(tokens)*maxN)
	out = append(out, tokens...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// Terms returns the n-gram terms of text, as fed to the vectorizer.
func Terms(text string, maxN int) []string {
	return NGrams(Tokenize(text), maxN)
}
