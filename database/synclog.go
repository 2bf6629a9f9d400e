package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clan-bot/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for local pass history
)

// SyncHistoryDB stores one row per completed (or failed) sync pass. It backs
// the /synclog command and the scheduler's day-rollover bookkeeping.
type SyncHistoryDB struct {
	db *sql.DB
}

// OpenSyncHistory opens (and creates if needed) the pass-history database.
func OpenSyncHistory(dbPath string) (*SyncHistoryDB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	h := &SyncHistoryDB{db: db}
	if err := h.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sync history table: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *SyncHistoryDB) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

func (h *SyncHistoryDB) initTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS sync_passes (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        trigger_kind TEXT NOT NULL,
        check_only INTEGER NOT NULL DEFAULT 0,
        roles INTEGER DEFAULT 0,
        adds INTEGER DEFAULT 0,
        removes INTEGER DEFAULT 0,
        renames INTEGER DEFAULT 0,
        misses INTEGER DEFAULT 0,
        elapsed_ms INTEGER DEFAULT 0,
        error TEXT DEFAULT '',
        timestamp INTEGER NOT NULL
    );`
	_, err := h.db.Exec(query)
	return err
}

// RecordPass appends one pass outcome. A pass that failed before processing
// any role is stored with its error and zero counters.
func (h *SyncHistoryDB) RecordPass(rec models.PassRecord) error {
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}
	query := `INSERT INTO sync_passes
        (trigger_kind, check_only, roles, adds, removes, renames, misses, elapsed_ms, error, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	checkOnly := 0
	if rec.CheckOnly {
		checkOnly = 1
	}
	_, err := h.db.Exec(query,
		rec.Trigger, checkOnly, rec.Roles, rec.Adds, rec.Removes, rec.Renames,
		rec.Misses, rec.ElapsedMS, rec.Error, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record sync pass: %w", err)
	}
	return nil
}

// RecentPasses returns the newest pass records, most recent first.
func (h *SyncHistoryDB) RecentPasses(limit int) ([]models.PassRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, trigger_kind, check_only, roles, adds, removes, renames, misses, elapsed_ms, error, timestamp
        FROM sync_passes ORDER BY id DESC LIMIT ?`
	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync passes: %w", err)
	}
	defer rows.Close()

	var records []models.PassRecord
	for rows.Next() {
		var (
			rec       models.PassRecord
			checkOnly int
		)
		if err := rows.Scan(&rec.ID, &rec.Trigger, &checkOnly, &rec.Roles, &rec.Adds,
			&rec.Removes, &rec.Renames, &rec.Misses, &rec.ElapsedMS, &rec.Error, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sync pass: %w", err)
		}
		rec.CheckOnly = checkOnly != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LastScheduledDate returns the local calendar date ("2006-01-02") of the
// most recent scheduled pass, or an empty string if none is recorded.
func (h *SyncHistoryDB) LastScheduledDate() (string, error) {
	var ts int64
	err := h.db.QueryRow(`SELECT timestamp FROM sync_passes WHERE trigger_kind = 'scheduled' ORDER BY id DESC LIMIT 1`).Scan(&ts)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last scheduled pass: %w", err)
	}
	return time.Unix(ts, 0).Format("2006-01-02"), nil
}
