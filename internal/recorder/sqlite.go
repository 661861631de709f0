package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"RRGSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Recorder = (*SQLiteRecorder)(nil)

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while cycles write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id     TEXT NOT NULL UNIQUE,
			sequence     INTEGER NOT NULL,
			timestamp    INTEGER NOT NULL,
			benchmark    TEXT NOT NULL,
			timeframe    TEXT NOT NULL,
			tail_count   INTEGER,
			source       TEXT,
			window_start INTEGER,
			window_end   INTEGER,
			dates        INTEGER,
			ok_count     INTEGER,
			excluded     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS security_status (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			security_id TEXT NOT NULL,
			label       TEXT,
			ok          INTEGER NOT NULL,
			reason      TEXT,
			detail      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_cycle ON security_status(cycle_id)`,

		`CREATE TABLE IF NOT EXISTS trajectory_points (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			security_id TEXT NOT NULL,
			date        INTEGER NOT NULL,
			rs_ratio    REAL NOT NULL,
			rs_momentum REAL NOT NULL,
			quadrant    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_cycle ON trajectory_points(cycle_id, security_id)`,

		`CREATE TABLE IF NOT EXISTS store_resets (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			reason        TEXT,
			benchmark     TEXT,
			timeframe     TEXT,
			dates_dropped INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle writes the cycle row, one status row per security and the
// windowed trajectory points in a single transaction.
func (r *SQLiteRecorder) RecordCycle(snap *model.Snapshot) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var start, end sql.NullInt64
	if n := len(snap.Dates); n > 0 {
		start = sql.NullInt64{Int64: snap.Dates[0].Unix(), Valid: true}
		end = sql.NullInt64{Int64: snap.Dates[n-1].Unix(), Valid: true}
	}
	excluded := len(snap.Excluded())

	_, err = tx.Exec(`INSERT INTO cycles
		(cycle_id, sequence, timestamp, benchmark, timeframe, tail_count, source,
		 window_start, window_end, dates, ok_count, excluded)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.CycleID, int64(snap.Sequence), snap.GeneratedAt.Unix(),
		snap.Benchmark.ID, string(snap.Timeframe), snap.TailCount, string(snap.Source),
		start, end, len(snap.Dates), len(snap.Statuses)-excluded, excluded,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, st := range snap.Statuses {
		detail, ok := "", 0
		if st.Err != nil {
			detail = st.Err.Error()
		}
		if st.OK {
			ok = 1
		}
		if _, err = tx.Exec(`INSERT INTO security_status
			(cycle_id, security_id, label, ok, reason, detail)
			VALUES (?,?,?,?,?,?)`,
			snap.CycleID, st.SecurityID, st.Label, ok, st.Reason, detail,
		); err != nil {
			return fmt.Errorf("insert status %s: %w", st.SecurityID, err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO trajectory_points
		(cycle_id, security_id, date, rs_ratio, rs_momentum, quadrant)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()
	for _, traj := range snap.Trajectories {
		for _, p := range traj.Points {
			if _, err = stmt.Exec(snap.CycleID, traj.SecurityID, p.Date.Unix(),
				p.RSRatio, p.RSMomentum, string(p.Quadrant)); err != nil {
				return fmt.Errorf("insert point %s: %w", traj.SecurityID, err)
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordReset(evt *ResetEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO store_resets
		(timestamp, reason, benchmark, timeframe, dates_dropped)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Reason, evt.Benchmark, string(evt.Timeframe), evt.DatesDropped,
	)
	return err
}

// RecentCycles returns the latest cycles, newest first.
func (r *SQLiteRecorder) RecentCycles(limit int) ([]CycleSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT cycle_id, sequence, timestamp, benchmark, timeframe,
		source, ok_count, excluded, dates
		FROM cycles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			c       CycleSummary
			seq, ts int64
			tf, src string
		)
		if err := rows.Scan(&c.CycleID, &seq, &ts, &c.Benchmark, &tf, &src, &c.OK, &c.Excluded, &c.Dates); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.Sequence = uint64(seq)
		c.GeneratedAt = time.Unix(ts, 0).UTC()
		c.Timeframe = model.Timeframe(tf)
		c.Source = model.WindowSource(src)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
