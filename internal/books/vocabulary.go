package books

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"concierge-backend/lib/textutil"
)

// Vocabulary is the controlled tag vocabulary: canonical slugs in display
// order, each with a display name. It is loaded once per run and read-only
// afterwards.
type Vocabulary struct {
	slugs         []string
	displayBySlug map[string]string
	slugByDisplay map[string]string
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		displayBySlug: map[string]string{},
		slugByDisplay: map[string]string{},
	}
}

func (v *Vocabulary) Add(slug, display string) {
	slug = strings.TrimSpace(slug)
	display = textutil.Normalize(display)
	if _, exists := v.displayBySlug[slug]; !exists {
		v.slugs = append(v.slugs, slug)
	}
	v.displayBySlug[slug] = display
	v.slugByDisplay[strings.ToLower(display)] = slug
}

// Slugs returns the canonical slugs in vocabulary order.
func (v *Vocabulary) Slugs() []string {
	return v.slugs
}

func (v *Vocabulary) DisplayName(slug string) string {
	return v.displayBySlug[slug]
}

// SlugOf looks a display name up case-insensitively.
func (v *Vocabulary) SlugOf(display string) (string, bool) {
	slug, ok := v.slugByDisplay[strings.ToLower(display)]
	return slug, ok
}

// ReadVocabulary parses the exported tags sheet: one row per tag, slug in
// the first column and display name in the second, header row skipped.
// Extra columns are ignored.
func ReadVocabulary(r io.Reader) (*Vocabulary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read tags sheet: %w", err)
	}

	vocab := NewVocabulary()
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		vocab.Add(row[0], row[1])
	}
	return vocab, nil
}

func ReadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadVocabulary(f)
}
