// Package catalog handles the questionnaire catalog envelope produced by the
// upload parser, and the default catalog file served before any upload.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bioradar/implementation-scorecard/internal/scorecard"
)

// ErrMalformedCatalog means the questions field is present but not a list.
var ErrMalformedCatalog = errors.New("catalog: questions must be a list")

const (
	SourceUploaded = "uploaded"
	SourceDefault  = "default"
)

type Catalog struct {
	Success        bool               `json:"success"`
	Questions      []scorecard.RawRow `json:"questions"`
	Sector         string             `json:"sector"`
	TotalQuestions int                `json:"total_questions"`
	Source         string             `json:"source,omitempty"`
}

// New wraps questions in a successful envelope.
func New(questions []scorecard.RawRow, sector string) Catalog {
	if sector == "" {
		sector = scorecard.DefaultSector
	}
	return Catalog{
		Success:        true,
		Questions:      questions,
		Sector:         sector,
		TotalQuestions: len(questions),
	}
}

// Rows normalizes the questions, falling back to the catalog sector.
func (c Catalog) Rows() []scorecard.NormalizedRow {
	return scorecard.NormalizeAll(c.Questions, c.Sector)
}

// Sectors lists the distinct sectors present in the questions.
func (c Catalog) Sectors() []string {
	rows := c.Rows()
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Sector)
	}
	return scorecard.OrderSectors(labels)
}

// Decode reads a catalog envelope. A missing or null questions field is an
// empty catalog; any other non-list value is ErrMalformedCatalog.
func Decode(r io.Reader) (Catalog, error) {
	var env struct {
		Success   *bool           `json:"success"`
		Questions json.RawMessage `json:"questions"`
		Sector    string          `json:"sector"`
		Source    string          `json:"source"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode: %w", err)
	}

	var questions []scorecard.RawRow
	q := bytes.TrimSpace(env.Questions)
	switch {
	case len(q) == 0 || bytes.Equal(q, []byte("null")):
	case q[0] != '[':
		return Catalog{}, ErrMalformedCatalog
	default:
		if err := json.Unmarshal(q, &questions); err != nil {
			return Catalog{}, fmt.Errorf("catalog: questions: %w", err)
		}
	}

	c := New(questions, env.Sector)
	if env.Success != nil {
		c.Success = *env.Success
	}
	c.Source = env.Source
	return c, nil
}

// LoadFile decodes the catalog stored at path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
