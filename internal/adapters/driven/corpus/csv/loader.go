// Package csv loads the dialogue corpus from a tabular CSV export.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.CorpusLoader = (*Loader)(nil)

// Column headers, matched case-insensitively.
const (
	colPrompt   = "dialogue before"
	colResponse = "response text"
	colNotes    = "script notes"
	colScene    = "scene"
)

// Loader parses a dialogue CSV into typed entries.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given CSV file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the ordered entry sequence. A missing required column is
// fatal (domain.ErrCorpusFormat); malformed rows are skipped with a
// recorded warning. No partial corpus is accepted on structural errors.
func (l *Loader) Load(ctx context.Context) ([]domain.DialogueEntry, error) {
	logger.Section("Corpus Load")
	logger.Debug("Source: %s", l.path)

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCorpusFormat, l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows are validated individually

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrCorpusFormat, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	responseIdx, ok := cols[colResponse]
	if !ok {
		return nil, fmt.Errorf("%w: required column %q is absent", domain.ErrCorpusFormat, colResponse)
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var entries []domain.DialogueEntry
	skipped := 0
	for rowNum := 2; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("Skipping malformed row %d: %v", rowNum, err)
			skipped++
			continue
		}

		if responseIdx >= len(row) {
			logger.Warn("Skipping row %d: missing response field", rowNum)
			skipped++
			continue
		}
		response := strings.TrimSpace(row[responseIdx])
		if response == "" {
			logger.Warn("Skipping row %d: empty response text", rowNum)
			skipped++
			continue
		}

		prompt := stripSpeakerPrefix(field(row, colPrompt))
		category := domain.CategoryStandalone
		if prompt != "" {
			category = domain.CategoryExchange
		}

		entries = append(entries, domain.DialogueEntry{
			ID:           fmt.Sprintf("pair_%d", len(entries)),
			PromptText:   prompt,
			ResponseText: response,
			Mood:         domain.ParseMood(field(row, colNotes)),
			SceneTag:     field(row, colScene),
			Category:     category,
		})
	}

	logger.Info("Loaded %d entries (%d rows skipped)", len(entries), skipped)
	return entries, nil
}

// stripSpeakerPrefix removes a leading "Speaker: " label from the
// prompt side so retrieval matches on the utterance alone.
func stripSpeakerPrefix(text string) string {
	if idx := strings.Index(text, ":"); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
