package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// DefaultExportPath receives the JSON export when no path is configured.
const DefaultExportPath = "data/contatos_empresas.json"

// FileStore keeps enriched records in a JSON file keyed by CNPJ. Saving a
// CNPJ again replaces its entry, so the file mirrors the upsert semantics
// of the database.
type FileStore struct {
	path    string
	mu      sync.Mutex
	records map[string]*contact.Record
	log     zerolog.Logger
}

// NewFileStore creates a JSON export store at the given path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	if path == "" {
		path = DefaultExportPath
	}
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return &FileStore{
		path:    path,
		records: make(map[string]*contact.Record),
		log:     logger,
	}
}

func (s *FileStore) Name() string { return "arquivo" }

// Save replaces the record for its CNPJ and rewrites the whole file.
func (s *FileStore) Save(_ context.Context, rec *contact.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	// The map keeps its own copy: in a fanout the database store still
	// stamps UpdatedAt on the caller's record after this save returns,
	// and later saves re-marshal every entry in the map.
	cp := *rec
	s.records[cp.CNPJ] = &cp

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("criar diretório %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("serializar contatos: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("gravar %s: %w", s.path, err)
	}

	s.log.Info().Str("cnpj", rec.CNPJ).Str("arquivo", s.path).Msg("Contatos salvos em arquivo")
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
