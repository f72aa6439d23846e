// Package analyze computes descriptive statistics over collected
// record batches: per-field cardinality and missing counts, text
// length distribution, and a ranked word-frequency table.
package analyze

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-scrape-toolkit/models"
)

const defaultTopWords = 10

// wordPattern matches maximal runs of word characters. The Unicode
// classes keep accented tokens whole.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopWords are short connector words excluded from word frequencies.
var stopWords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "com": {}, "para": {}, "em": {},
	"e": {}, "o": {}, "a": {}, "os": {}, "as": {}, "um": {}, "uma": {},
}

// WordCount pairs a token with its frequency.
type WordCount struct {
	Word  string
	Count int
}

// FieldStats summarizes a batch per distinct field.
type FieldStats struct {
	TotalRecords int
	Fields       []string
	NonNull      map[string]int
	Missing      map[string]int
	Unique       map[string]int
}

// TextStats summarizes one text field across a batch.
type TextStats struct {
	TotalEntries    int
	AverageLength   float64
	MaxLength       int
	MinLength       int
	MostCommonWords []WordCount
}

// Analyzer computes reports over a record batch. Reports are computed
// fresh on every call; nothing is cached or mutated.
type Analyzer struct {
	batch models.Batch
	topN  int
}

// New builds an analyzer over batch.
func New(batch models.Batch) *Analyzer {
	return &Analyzer{batch: batch, topN: defaultTopWords}
}

// WithTopWords adjusts how many ranked words AnalyzeTextField returns.
func (a *Analyzer) WithTopWords(n int) *Analyzer {
	if n > 0 {
		a.topN = n
	}
	return a
}

// BasicStats reports, per field observed anywhere in the batch, the
// non-null count, the missing count, and the distinct value count.
// An empty batch yields an empty report.
func (a *Analyzer) BasicStats() FieldStats {
	if a.batch.Empty() {
		return FieldStats{}
	}

	fields := a.batch.Fields()
	stats := FieldStats{
		TotalRecords: len(a.batch),
		Fields:       fields,
		NonNull:      make(map[string]int, len(fields)),
		Missing:      make(map[string]int, len(fields)),
		Unique:       make(map[string]int, len(fields)),
	}

	distinct := make(map[string]map[string]struct{}, len(fields))
	for _, field := range fields {
		distinct[field] = make(map[string]struct{})
	}

	for _, record := range a.batch {
		for _, field := range fields {
			value, ok := record.Get(field)
			if !ok || value.IsNull() {
				stats.Missing[field]++
				continue
			}
			stats.NonNull[field]++
			distinct[field][value.Text()] = struct{}{}
		}
	}
	for field, values := range distinct {
		stats.Unique[field] = len(values)
	}
	return stats
}

// AnalyzeTextField reports character-length statistics and the ranked
// word frequencies for one field. A field absent from the batch
// schema yields an empty report; null entries are dropped.
func (a *Analyzer) AnalyzeTextField(field string) TextStats {
	var entries []string
	for _, record := range a.batch {
		value, ok := record.Get(field)
		if !ok || value.IsNull() {
			continue
		}
		entries = append(entries, value.Text())
	}
	if len(entries) == 0 {
		return TextStats{}
	}

	total := 0
	maxLen := 0
	minLen := utf8.RuneCountInString(entries[0])
	for _, entry := range entries {
		n := utf8.RuneCountInString(entry)
		total += n
		if n > maxLen {
			maxLen = n
		}
		if n < minLen {
			minLen = n
		}
	}

	return TextStats{
		TotalEntries:    len(entries),
		AverageLength:   float64(total) / float64(len(entries)),
		MaxLength:       maxLen,
		MinLength:       minLen,
		MostCommonWords: CommonWords(strings.Join(entries, " "), a.topN),
	}
}

// CommonWords tokenizes text on word boundaries, case-folds to
// lowercase, drops stop words and tokens of length <= 2, and returns
// the topN tokens ranked by descending frequency. Ties keep
// first-encountered token order.
func CommonWords(text string, topN int) []WordCount {
	if topN <= 0 {
		topN = defaultTopWords
	}

	counts := make(map[string]int)
	var order []string
	for _, token := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(token) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		if _, ok := counts[token]; !ok {
			order = append(order, token)
		}
		counts[token]++
	}

	ranked := make([]WordCount, 0, len(order))
	for _, token := range order {
		ranked = append(ranked, WordCount{Word: token, Count: counts[token]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
