package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// ErrRecordNotFound is returned by Get when no row exists for the CNPJ.
var ErrRecordNotFound = errors.New("registro não encontrado")

// Querier is the subset of pgxpool.Pool the store relies on. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

const upsertSQL = `
INSERT INTO dados_enriquecidos
    (cnpj, razao_social, telefones, whatsapp, emails, endereco, redes_sociais)
VALUES ($1, $2, $3::jsonb, $4, $5::jsonb, $6, $7::jsonb)
ON CONFLICT (cnpj) DO UPDATE SET
    razao_social = EXCLUDED.razao_social,
    telefones = EXCLUDED.telefones,
    whatsapp = EXCLUDED.whatsapp,
    emails = EXCLUDED.emails,
    endereco = EXCLUDED.endereco,
    redes_sociais = EXCLUDED.redes_sociais,
    data_atualizacao = CURRENT_TIMESTAMP
RETURNING id, data_atualizacao`

const selectSQL = `
SELECT cnpj, razao_social, telefones, whatsapp, emails, endereco, redes_sociais, data_atualizacao
FROM dados_enriquecidos
WHERE cnpj = $1`

const createTableSQL = `
CREATE TABLE IF NOT EXISTS dados_enriquecidos (
    id SERIAL PRIMARY KEY,
    cnpj VARCHAR(14) NOT NULL,
    razao_social VARCHAR(255),
    telefones JSONB,
    whatsapp TEXT,
    emails JSONB,
    endereco TEXT,
    redes_sociais JSONB,
    data_atualizacao TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT cnpj_unique UNIQUE (cnpj)
)`

const createIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_dados_enriquecidos_cnpj ON dados_enriquecidos(cnpj)`

// PostgresStore persists enriched contact records with an idempotent
// upsert keyed by CNPJ.
type PostgresStore struct {
	pool Querier
	log  zerolog.Logger
}

// NewPostgresStore creates a store on top of an existing pool.
func NewPostgresStore(pool Querier, logger zerolog.Logger) *PostgresStore {
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return &PostgresStore{pool: pool, log: logger}
}

func (s *PostgresStore) Name() string { return "postgres" }

// EnsureSchema creates the table and index when they don't exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("criar tabela dados_enriquecidos: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("criar índice de cnpj: %w", err)
	}
	s.log.Info().Msg("Esquema do banco verificado")
	return nil
}

// Save upserts the record. A second save for the same CNPJ overwrites
// every contact field and refreshes data_atualizacao.
func (s *PostgresStore) Save(ctx context.Context, rec *contact.Record) error {
	phonesJSON, err := json.Marshal(stringSliceOrEmpty(rec.Phones))
	if err != nil {
		return fmt.Errorf("serializar telefones: %w", err)
	}
	emailsJSON, err := json.Marshal(stringSliceOrEmpty(rec.Emails))
	if err != nil {
		return fmt.Errorf("serializar emails: %w", err)
	}
	socialJSON, err := json.Marshal(rec.Social)
	if err != nil {
		return fmt.Errorf("serializar redes sociais: %w", err)
	}

	var (
		id        int
		updatedAt time.Time
	)
	err = s.pool.QueryRow(ctx, upsertSQL,
		rec.CNPJ,
		rec.RazaoSocial,
		string(phonesJSON),
		rec.WhatsApp,
		string(emailsJSON),
		rec.Address,
		string(socialJSON),
	).Scan(&id, &updatedAt)
	if err != nil {
		return fmt.Errorf("upsert de contatos: %w", err)
	}

	rec.UpdatedAt = updatedAt
	s.log.Info().Str("cnpj", rec.CNPJ).Int("id", id).Msg("Contatos salvos no banco")
	return nil
}

// Get reads one record back by its normalized CNPJ.
func (s *PostgresStore) Get(ctx context.Context, cnpj string) (*contact.Record, error) {
	var (
		rec       contact.Record
		razao     sql.NullString
		phonesRaw []byte
		whatsapp  sql.NullString
		emailsRaw []byte
		endereco  sql.NullString
		socialRaw []byte
	)

	err := s.pool.QueryRow(ctx, selectSQL, cnpj).Scan(
		&rec.CNPJ,
		&razao,
		&phonesRaw,
		&whatsapp,
		&emailsRaw,
		&endereco,
		&socialRaw,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consultar contatos: %w", err)
	}

	rec.Contacts = contact.NewContacts()
	rec.RazaoSocial = razao.String
	rec.WhatsApp = nullStringToPtr(whatsapp)
	rec.Address = nullStringToPtr(endereco)

	if len(phonesRaw) > 0 {
		if err := json.Unmarshal(phonesRaw, &rec.Phones); err != nil {
			return nil, fmt.Errorf("decodificar telefones: %w", err)
		}
	}
	if len(emailsRaw) > 0 {
		if err := json.Unmarshal(emailsRaw, &rec.Emails); err != nil {
			return nil, fmt.Errorf("decodificar emails: %w", err)
		}
	}
	if len(socialRaw) > 0 {
		if err := json.Unmarshal(socialRaw, &rec.Social); err != nil {
			return nil, fmt.Errorf("decodificar redes sociais: %w", err)
		}
	}

	return &rec, nil
}

// Close releases the underlying pool when it owns one.
func (s *PostgresStore) Close() error {
	if closer, ok := s.pool.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullStringToPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
