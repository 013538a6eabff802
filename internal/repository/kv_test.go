package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avelichka/steptrack/internal/storage"
)

func setupMock(t *testing.T) (*PostgresKV, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	kv := NewPostgresKV(db)
	cleanup := func() {
		db.Close()
	}
	return kv, mock, cleanup
}

func TestGet_Success(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	key := "step-tracker:alice"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"weeklyGoal":5}`)))

	got, err := kv.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"weeklyGoal":5}` {
		t.Errorf("unexpected value: %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGet_Absent(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs("step-tracker:nobody").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := kv.Get(context.Background(), "step-tracker:nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected storage.ErrNotFound, got %v", err)
	}
}

func TestGet_Error(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs("k").
		WillReturnError(errors.New("query fail"))

	_, err := kv.Get(context.Background(), "k")
	if err == nil || !regexp.MustCompile(`Get "k"`).MatchString(err.Error()) {
		t.Errorf("expected wrapped Get error, got %v", err)
	}
}

func TestPut_Success(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at)`)).
		WithArgs("k", []byte("v"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPut_Error(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at)`)).
		WithArgs("k", []byte("v"), sqlmock.AnyArg()).
		WillReturnError(errors.New("exec fail"))

	err := kv.Put(context.Background(), "k", []byte("v"))
	if err == nil || !regexp.MustCompile(`Put "k"`).MatchString(err.Error()) {
		t.Errorf("expected wrapped Put error, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = $1`)).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := kv.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestKeys_Success(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"key"}).
		AddRow("step-tracker:alice").
		AddRow("step-tracker:bob")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key FROM kv WHERE key LIKE $1 || '%' ORDER BY key`)).
		WithArgs("step-tracker:").
		WillReturnRows(rows)

	keys, err := kv.Keys(context.Background(), "step-tracker:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "step-tracker:alice" || keys[1] != "step-tracker:bob" {
		t.Errorf("unexpected keys: %v", keys)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestKeys_Error(t *testing.T) {
	kv, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key FROM kv WHERE key LIKE $1 || '%' ORDER BY key`)).
		WithArgs("p").
		WillReturnError(errors.New("query fail"))

	_, err := kv.Keys(context.Background(), "p")
	if err == nil || !regexp.MustCompile(`Keys "p"`).MatchString(err.Error()) {
		t.Errorf("expected wrapped Keys error, got %v", err)
	}
}
