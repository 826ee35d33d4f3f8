package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bookmart/internal/core/domain/models"
	"bookmart/internal/core/domain/ports"

	"github.com/rs/zerolog"
)

// Ensure FileSource implements CatalogSource
var _ ports.CatalogSource = (*FileSource)(nil)

// FileSource reads raw catalog records from a local JSON array. It exists
// for offline runs and end-to-end tests.
type FileSource struct {
	path string
	log  zerolog.Logger
}

func NewFileSource(path string, log zerolog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

func (s *FileSource) FetchRecords(_ context.Context) ([]models.RawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %s: %w", s.path, err)
	}

	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse source file %s: %w", s.path, err)
	}

	s.log.Info().Str("path", s.path).Int("records", len(records)).Msg("loaded records from file")
	return records, nil
}
