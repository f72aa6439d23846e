package sink

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aluiziolira/go-scrape-toolkit/models"
)

// writeSQLite replaces the scraped_data table with the batch:
// drop-and-recreate, not append. Column affinity is inferred per
// column from the batch values.
func writeSQLite(path string, batch models.Batch) (err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	fields := batch.Fields()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(TableName))); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	columns := make([]string, len(fields))
	quoted := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = fmt.Sprintf("%s %s", quoteIdent(field), columnAffinity(batch, field))
		quoted[i] = quoteIdent(field)
	}
	createStmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(TableName), strings.Join(columns, ", "))
	if _, err = tx.Exec(createStmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	insertStmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(TableName), strings.Join(quoted, ", "), placeholders)
	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(fields))
	for _, record := range batch {
		for i, field := range fields {
			args[i] = nil
			if value, ok := record.Get(field); ok {
				args[i] = value.Native()
			}
		}
		if _, err = stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnAffinity picks REAL for all-number columns, TIMESTAMP for
// all-timestamp columns, and TEXT otherwise. Nulls do not count.
func columnAffinity(batch models.Batch, field string) string {
	kind := models.KindNull
	for _, record := range batch {
		value, ok := record.Get(field)
		if !ok || value.IsNull() {
			continue
		}
		if kind == models.KindNull {
			kind = value.Kind()
			continue
		}
		if value.Kind() != kind {
			return "TEXT"
		}
	}
	switch kind {
	case models.KindNumber:
		return "REAL"
	case models.KindTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
