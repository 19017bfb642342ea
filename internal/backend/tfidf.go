package backend

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/dshills/cmdrecall/internal/query"
)

// TFIDFBackend vectorizes the corpus and the query jointly so the query
// lands in the same term space, then scores by cosine similarity. The
// vectorizer is refit on every call; command corpora are small enough that
// refitting stays cheap relative to the query itself.
type TFIDFBackend struct{}

// NewTFIDF creates a TF-IDF backend. Always available; it has no model or
// credential requirements.
func NewTFIDF() *TFIDFBackend {
	return &TFIDFBackend{}
}

func (b *TFIDFBackend) Name() string {
	return "tfidf"
}

func (b *TFIDFBackend) Similarities(ctx context.Context, docs []Document, q string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fit over corpus + query jointly
	tokenized := make([][]string, 0, len(docs)+1)
	for _, doc := range docs {
		tokenized = append(tokenized, tokenize(doc.Text))
	}
	tokenized = append(tokenized, tokenize(q))

	rows := vectorize(tokenized)
	queryRow := rows[len(rows)-1]

	scores := make([]float64, len(docs))
	for i := range docs {
		scores[i] = sparseCosine(queryRow, rows[i])
	}
	return scores, nil
}

// tokenize lowercases, strips punctuation, and drops English stopwords and
// single-character tokens.
func tokenize(text string) []string {
	words := strings.Fields(query.Normalize(text))
	tokens := words[:0]
	for _, w := range words {
		if len(w) <= 1 || query.IsStopword(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// vectorize builds L2-normalized TF-IDF rows. IDF uses the smoothed form
// 1 + ln((1+n)/(1+df)) so terms present in every document still carry a
// small positive weight.
func vectorize(docs [][]string) []map[string]float64 {
	n := len(docs)

	counts := make([]map[string]float64, n)
	df := make(map[string]float64)
	for i, tokens := range docs {
		tf := make(map[string]float64, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			df[tok]++
		}
		counts[i] = tf
	}

	idf := make(map[string]float64, len(df))
	for tok, d := range df {
		idf[tok] = 1 + math.Log((1+float64(n))/(1+d))
	}

	// Accumulation runs in sorted token order: float addition is not
	// associative, and map iteration order would otherwise make scores
	// differ at the ULP level between runs.
	rows := make([]map[string]float64, n)
	for i, tf := range counts {
		row := make(map[string]float64, len(tf))
		toks := sortedKeys(tf)
		var norm float64
		for _, tok := range toks {
			w := tf[tok] * idf[tok]
			row[tok] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for _, tok := range toks {
				row[tok] /= norm
			}
		}
		rows[i] = row
	}
	return rows
}

// sparseCosine is the dot product of two L2-normalized sparse rows,
// accumulated in sorted token order for reproducible scores.
func sparseCosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for _, tok := range sortedKeys(a) {
		dot += a[tok] * b[tok]
	}
	return dot
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
