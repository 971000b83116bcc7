package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Mirrors migrations/0001_create_questions.sql in SQLite syntax.
const createQuestionsTable = `
CREATE TABLE questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_text VARCHAR(255) NOT NULL CHECK (trim(question_text) <> ''),
	answer_text VARCHAR(255) NOT NULL CHECK (trim(answer_text) <> ''),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// setupTestDB creates an in-memory SQLite DB with the questions table.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	if _, err := db.ExecContext(context.Background(), createQuestionsTable); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	return db
}
