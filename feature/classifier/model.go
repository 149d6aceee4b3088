package classifier

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed data/estados.csv
var defaultTrainingSet string

// ErrNoExamples is returned when a model is trained on an empty set.
var ErrNoExamples = errors.New("classifier needs at least one labelled example")

// Classifier labels a batch of location strings. The output has one label per input.
type Classifier interface {
	Predict(ctx context.Context, inputs []string) ([]string, error)
}

// Example is one labelled training string.
type Example struct {
	Text  string
	Label string
}

type trained struct {
	features map[string]struct{}
	label    string
}

// CharModel is a nearest-neighbour classifier over character bigrams.
type CharModel struct {
	examples []trained
}

// Train builds a model from examples. Examples without usable characters are ignored.
func Train(examples []Example) (*CharModel, error) {
	m := &CharModel{}
	for _, ex := range examples {
		f := features(ex.Text)
		if len(f) == 0 || strings.TrimSpace(ex.Label) == "" {
			continue
		}
		m.examples = append(m.examples, trained{features: f, label: strings.TrimSpace(ex.Label)})
	}
	if len(m.examples) == 0 {
		return nil, ErrNoExamples
	}
	return m, nil
}

// Default trains a model on the embedded state training set.
func Default() (*CharModel, error) {
	examples, err := ReadExamples(strings.NewReader(defaultTrainingSet))
	if err != nil {
		return nil, err
	}
	return Train(examples)
}

// ReadExamples parses a two column CSV (text, label) with a header row.
func ReadExamples(r io.Reader) ([]Example, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("failed to read training header: %w", err)
	}

	var out []Example
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read training set: %w", err)
		}
		out = append(out, Example{Text: rec[0], Label: rec[1]})
	}
	return out, nil
}

// Labels returns the distinct labels the model can produce, in training order.
func (m *CharModel) Labels() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ex := range m.examples {
		if _, ok := seen[ex.label]; ok {
			continue
		}
		seen[ex.label] = struct{}{}
		out = append(out, ex.label)
	}
	return out
}

// PredictOne labels a single string. Strings without usable characters get "".
func (m *CharModel) PredictOne(s string) string {
	f := features(s)
	if len(f) == 0 {
		return ""
	}

	best, bestScore := "", -1.0
	for _, ex := range m.examples {
		if score := cosine(f, ex.features); score > bestScore {
			best, bestScore = ex.label, score
		}
	}
	return best
}

// Predict labels every input.
func (m *CharModel) Predict(ctx context.Context, inputs []string) ([]string, error) {
	out := make([]string, len(inputs))
	for i, s := range inputs {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = m.PredictOne(s)
	}
	return out, nil
}

func cosine(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / math.Sqrt(float64(len(a))*float64(len(b)))
}

// features returns the character bigram set of the folded string. A single character
// string yields that character as its only feature.
func features(s string) map[string]struct{} {
	r := []rune(fold(s))
	set := make(map[string]struct{}, len(r))
	if len(r) == 1 {
		set[string(r)] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(r); i++ {
		set[string(r[i:i+2])] = struct{}{}
	}
	return set
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
