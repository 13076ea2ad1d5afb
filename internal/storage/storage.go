// Package storage provides a SQLite-backed journal of dispatched alerts.
// Engine state is deliberately not persisted; the journal only feeds the
// dashboard history view and post-hoc inspection.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// Journal wraps a SQLite database holding dispatched alerts.
type Journal struct {
	db        *sql.DB
	maxAlerts int
}

// Open opens or creates the journal database at dbPath. An empty dbPath
// defaults to $TMPDIR/oiscanner/alerts.db.
func Open(dbPath string, maxAlerts int) (*Journal, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "oiscanner", "alerts.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	j := &Journal{db: db, maxAlerts: maxAlerts}
	if err := j.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			underlying   TEXT NOT NULL,
			action       TEXT NOT NULL,
			bucket       TEXT NOT NULL,
			lots         INTEGER NOT NULL,
			oi_prev      INTEGER NOT NULL,
			oi_delta     INTEGER NOT NULL,
			oi_roc       REAL NOT NULL,
			moneyness    TEXT NOT NULL,
			message      TEXT NOT NULL,
			triggered_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_triggered_at ON alerts(triggered_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts a dispatched alert and trims the journal to maxAlerts rows,
// oldest first.
func (j *Journal) Record(alert *models.AlertEvent) error {
	if err := alert.Validate(); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO alerts
			(id, symbol, underlying, action, bucket, lots, oi_prev, oi_delta,
			 oi_roc, moneyness, message, triggered_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), alert.Symbol, alert.Underlying, string(alert.Action),
		string(alert.Bucket), alert.Lots, alert.OIPrev, alert.OIDelta,
		alert.OIRoC, string(alert.Moneyness), alert.Message,
		alert.TriggeredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if _, err = tx.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY triggered_at DESC LIMIT ?
		)`, j.maxAlerts); err != nil {
		return fmt.Errorf("failed to enforce alert cap: %w", err)
	}

	return tx.Commit()
}

// Recent returns the k newest alerts, newest first.
func (j *Journal) Recent(k int) ([]models.AlertEvent, error) {
	rows, err := j.db.Query(`
		SELECT symbol, underlying, action, bucket, lots, oi_prev, oi_delta,
		       oi_roc, moneyness, message, triggered_at
		FROM alerts ORDER BY triggered_at DESC LIMIT ?`, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertEvent
	for rows.Next() {
		var a models.AlertEvent
		var action, bucket, moneyness string
		var triggeredAtNano int64

		err := rows.Scan(
			&a.Symbol, &a.Underlying, &action, &bucket, &a.Lots, &a.OIPrev,
			&a.OIDelta, &a.OIRoC, &moneyness, &a.Message, &triggeredAtNano,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		a.Action = models.Action(action)
		a.Bucket = models.Bucket(bucket)
		a.Moneyness = models.Moneyness(moneyness)
		a.TriggeredAt = time.Unix(0, triggeredAtNano)
		alerts = append(alerts, a)
	}
	if alerts == nil {
		alerts = []models.AlertEvent{}
	}

	return alerts, rows.Err()
}
