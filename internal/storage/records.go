package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-tally/internal/common"
	"github.com/Veraticus/spice-tally/internal/model"
)

// SaveRecords stores records under batch, creating the batch if needed, and
// returns how many were inserted. Nil entries are skipped. Identical records at
// different positions are all kept; saving the same records again from the same
// source adds nothing. Input order is preserved on load.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, batch string, records []*model.TransactionRecord) (int, error) {
	return s.SaveRecordsFrom(ctx, batch, "", records)
}

// SaveRecordsFrom is SaveRecords that also remembers where the batch came from.
func (s *SQLiteStorage) SaveRecordsFrom(ctx context.Context, batch, source string, records []*model.TransactionRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(batch, "batch"); err != nil {
		return 0, err
	}
	if err := validateRecords(records); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertBatch(ctx, tx, batch, source); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO records (
			batch, hash, record_id, type, amount, counterparty, category, date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i, r := range records {
		if r == nil {
			continue
		}

		var amount sql.NullFloat64
		if r.Amount != nil {
			amount = sql.NullFloat64{Float64: *r.Amount, Valid: true}
		}

		result, execErr := stmt.ExecContext(ctx,
			batch, recordKey(source, i, r), r.ID, r.Type, amount, r.To, r.Category, r.Date)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert record %q: %w", r.ID, execErr)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	slog.Debug("Saved records", "batch", batch, "inserted", inserted, "skipped", len(records)-inserted)
	return inserted, nil
}

// recordKey identifies a record by where it came from as well as what it holds,
// so a source that repeats a record keeps every copy.
func recordKey(source string, position int, r *model.TransactionRecord) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", source, position, r.GenerateHash())))
	return hex.EncodeToString(sum[:])
}

func upsertBatch(ctx context.Context, tx *sql.Tx, batch, source string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO batches (name, imported_at, source) VALUES (?, ?, ?)`,
		batch, time.Now().UTC(), source)
	if err != nil {
		return fmt.Errorf("failed to create batch %q: %w", batch, err)
	}

	if source == "" {
		return nil
	}

	// Appending to an existing batch records the additional sources.
	_, err = tx.ExecContext(ctx, `
		UPDATE batches
		SET source = CASE
			WHEN source = '' THEN ?
			WHEN instr(',' || source || ',', ',' || ? || ',') > 0 THEN source
			ELSE source || ',' || ?
		END
		WHERE name = ?
	`, source, source, source, batch)
	if err != nil {
		return fmt.Errorf("failed to update batch %q: %w", batch, err)
	}
	return nil
}

// LoadRecords returns the records of a batch in the order they were saved.
// An empty batch name loads every stored record.
func (s *SQLiteStorage) LoadRecords(ctx context.Context, batch string) ([]*model.TransactionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT record_id, type, amount, counterparty, category, date FROM records`
	var args []any
	if batch != "" {
		exists, err := s.batchExists(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("batch %q: %w", batch, common.ErrNotFound)
		}
		query += ` WHERE batch = ?`
		args = append(args, batch)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*model.TransactionRecord
	for rows.Next() {
		var (
			r       model.TransactionRecord
			recID   sql.NullString
			recType sql.NullString
			amount  sql.NullFloat64
			to      sql.NullString
			cat     sql.NullString
			date    sql.NullString
		)
		if err := rows.Scan(&recID, &recType, &amount, &to, &cat, &date); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.ID = recID.String
		r.Type = recType.String
		r.To = to.String
		r.Category = cat.String
		r.Date = date.String
		if amount.Valid {
			r.Amount = model.Float(amount.Float64)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// ListBatches returns every batch with its record count, newest first.
func (s *SQLiteStorage) ListBatches(ctx context.Context) ([]model.Batch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.name, b.imported_at, b.source, COUNT(r.id)
		FROM batches b
		LEFT JOIN records r ON r.batch = b.name
		GROUP BY b.name
		ORDER BY b.rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.Batch
	for rows.Next() {
		var (
			b      model.Batch
			source string
		)
		if err := rows.Scan(&b.Name, &b.ImportedAt, &source, &b.RecordCount); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		if source != "" {
			b.Sources = strings.Split(source, ",")
		}
		batches = append(batches, b)
	}

	return batches, rows.Err()
}

// DeleteBatch removes a batch and all of its records.
func (s *SQLiteStorage) DeleteBatch(ctx context.Context, batch string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(batch, "batch"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE batch = ?`, batch); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE name = ?`, batch)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("batch %q: %w", batch, common.ErrNotFound)
	}

	return tx.Commit()
}

func (s *SQLiteStorage) batchExists(ctx context.Context, batch string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM batches WHERE name = ?`, batch).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up batch: %w", err)
	}
	return true, nil
}
