// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"math"
	"sort"
)

// Vector is a sparse row of the TF-IDF matrix. Indices are strictly
// increasing vocabulary positions.
type Vector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product of two sparse vectors.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Vectorizer holds a fitted vocabulary and its inverse document
// frequencies.
type Vectorizer struct {
	terms []string
	vocab map[string]int
	idf   []float64
	ngram int
}

// Fit learns the vocabulary from docs. A term is kept when it occurs in at
// least minDF documents. The returned counts are the per-document term
// counts, reused by Transform during a build.
func Fit(docs []string, minDF, ngramMax int) (*Vectorizer, []map[string]int, int) {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, term := range Terms(doc, ngramMax) {
			c[term]++
		}
		for term := range c {
			df[term]++
		}
		counts[i] = c
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	v := &Vectorizer{
		terms: terms,
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		ngram: ngramMax,
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v, counts, len(df)
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int { return len(v.terms) }

// Terms returns the vocabulary in index order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// IDF returns the inverse document frequency of term, or false when the
// term is not in the vocabulary.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	i, ok := v.vocab[term]
	if !ok {
		return 0, false
	}
	return v.idf[i], true
}

// Transform weights term counts by idf and L2-normalizes the result.
// Terms outside the vocabulary are ignored; a document with none left
// yields the zero vector.
func (v *Vectorizer) Transform(counts map[string]int) Vector {
	idx := make([]int, 0, len(counts))
	for term := range counts {
		if i, ok := v.vocab[term]; ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	vec := Vector{Indices: idx, Values: make([]float64, len(idx))}
	for k, i := range idx {
		vec.Values[k] = float64(counts[v.terms[i]]) * v.idf[i]
	}
	if norm := vec.Norm(); norm > 0 {
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}

// TransformText tokenizes text and transforms it.
func (v *Vectorizer) TransformText(text string) Vector {
	counts := make(map[string]int)
	for _, term := range Terms(text, v.ngram) {
		counts[term]++
	}
	return v.Transform(counts)
}
