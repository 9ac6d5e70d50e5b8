package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

func sqlNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	return mock, NewPostgresStore(mock, zerolog.New(io.Discard))
}

// TestSave_UpsertsRecord verifies the single-statement upsert with JSONB
// parameters and that the returned timestamp lands on the record.
func TestSave_UpsertsRecord(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	whatsapp := "https://api.whatsapp.com/send?phone=5511999999999"
	address := "Rua das Flores, 123 - Centro - CEP 01000-000"
	facebook := "https://facebook.com/empresa"

	rec := &contact.Record{
		CNPJ:        "12345678000199",
		RazaoSocial: "Empresa Exemplo LTDA",
		Contacts: contact.Contacts{
			Phones:   []string{"5511999999999", "1140028922"},
			WhatsApp: &whatsapp,
			Emails:   []string{"contato@empresa.com.br"},
			Address:  &address,
			Social:   contact.SocialLinks{Facebook: &facebook},
		},
	}

	savedAt := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO dados_enriquecidos").
		WithArgs(
			"12345678000199",
			"Empresa Exemplo LTDA",
			`["5511999999999","1140028922"]`,
			&whatsapp,
			`["contato@empresa.com.br"]`,
			&address,
			`{"facebook":"https://facebook.com/empresa","instagram":null,"linkedin":null,"youtube":null}`,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data_atualizacao"}).AddRow(7, savedAt))

	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}
	if !rec.UpdatedAt.Equal(savedAt) {
		t.Errorf("expected UpdatedAt %v, got %v", savedAt, rec.UpdatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestSave_EmptyContacts verifies that empty collections serialize to [] and
// absent scalars to NULL, never to JSON null arrays.
func TestSave_EmptyContacts(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	rec := &contact.Record{
		CNPJ:        "00000000000191",
		RazaoSocial: "Sem Contatos SA",
	}

	mock.ExpectQuery("INSERT INTO dados_enriquecidos").
		WithArgs(
			"00000000000191",
			"Sem Contatos SA",
			`[]`,
			(*string)(nil),
			`[]`,
			(*string)(nil),
			`{"facebook":null,"instagram":null,"linkedin":null,"youtube":null}`,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "data_atualizacao"}).AddRow(1, time.Now()))

	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestSave_PropagatesError verifies that a database failure reaches the
// caller wrapped with context.
func TestSave_PropagatesError(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO dados_enriquecidos").
		WillReturnError(fmt.Errorf("connection reset"))

	err := store.Save(context.Background(), &contact.Record{CNPJ: "12345678000199"})
	if err == nil {
		t.Fatal("expected error from Save, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestGet_ReturnsRecord verifies column decoding including the JSONB
// collections and nullable scalars.
func TestGet_ReturnsRecord(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	savedAt := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	columns := []string{"cnpj", "razao_social", "telefones", "whatsapp", "emails", "endereco", "redes_sociais", "data_atualizacao"}

	mock.ExpectQuery("SELECT cnpj, razao_social").
		WithArgs("12345678000199").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			"12345678000199",
			sqlNullString("Empresa Exemplo LTDA"),
			[]byte(`["5511999999999"]`),
			sqlNullString("https://api.whatsapp.com/send?phone=5511999999999"),
			[]byte(`["contato@empresa.com.br"]`),
			sqlNullString("Rua das Flores, 123 - Centro - CEP 01000-000"),
			[]byte(`{"facebook":"https://facebook.com/empresa","instagram":null,"linkedin":null,"youtube":null}`),
			savedAt,
		))

	rec, err := store.Get(context.Background(), "12345678000199")
	if err != nil {
		t.Fatalf("Get returned unexpected error: %v", err)
	}

	if rec.RazaoSocial != "Empresa Exemplo LTDA" {
		t.Errorf("unexpected razao social %q", rec.RazaoSocial)
	}
	if len(rec.Phones) != 1 || rec.Phones[0] != "5511999999999" {
		t.Errorf("unexpected phones %v", rec.Phones)
	}
	if rec.WhatsApp == nil || *rec.WhatsApp != "https://api.whatsapp.com/send?phone=5511999999999" {
		t.Errorf("unexpected whatsapp %v", rec.WhatsApp)
	}
	if rec.Address == nil || *rec.Address != "Rua das Flores, 123 - Centro - CEP 01000-000" {
		t.Errorf("unexpected address %v", rec.Address)
	}
	if rec.Social.Facebook == nil || *rec.Social.Facebook != "https://facebook.com/empresa" {
		t.Errorf("unexpected facebook %v", rec.Social.Facebook)
	}
	if !rec.UpdatedAt.Equal(savedAt) {
		t.Errorf("unexpected timestamp %v", rec.UpdatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestGet_NotFound verifies the sentinel error for missing rows.
func TestGet_NotFound(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT cnpj, razao_social").
		WithArgs("99999999999999").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "99999999999999")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestEnsureSchema_ExecutesAllStatements verifies that EnsureSchema issues
// the CREATE TABLE and CREATE INDEX statements.
func TestEnsureSchema_ExecutesAllStatements(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dados_enriquecidos").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestEnsureSchema_PropagatesTableError verifies that a table creation
// failure is returned without attempting index creation.
func TestEnsureSchema_PropagatesTableError(t *testing.T) {
	mock, store := newMockStore(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dados_enriquecidos").
		WillReturnError(fmt.Errorf("permission denied"))

	if err := store.EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected error from EnsureSchema, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
