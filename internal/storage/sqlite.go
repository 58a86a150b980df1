package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"dogcare/internal/care"
	logx "dogcare/pkg/logx"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

const sqlDateLayout = "2006-01-02"

type sqliteStore struct {
	db     *sql.DB
	log    logx.Logger
	closed atomic.Bool
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	if path != ":memory:" {
		_, _ = db.Exec("PRAGMA journal_mode = WAL")
		_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	}

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("sqlite storage opened", logx.String("path", path))
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Upsert(ctx context.Context, owner care.OwnerID, p care.Profile) error {
	if s.closed.Load() {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles(owner_id, name, weight, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(owner_id) DO UPDATE SET name=excluded.name, weight=excluded.weight, updated_at=excluded.updated_at`,
		int64(owner), p.Name, p.Weight, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM treatments WHERE owner_id = ?`, int64(owner)); err != nil {
		return err
	}
	for i, t := range p.Treatments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO treatments(owner_id, position, kind, last_date, interval_days) VALUES(?,?,?,?,?)
			 ON CONFLICT(owner_id, kind) DO UPDATE SET last_date=excluded.last_date, interval_days=excluded.interval_days`,
			int64(owner), i, string(t.Kind), care.Civil(t.Date).Format(sqlDateLayout), t.IntervalDays,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Get(ctx context.Context, owner care.OwnerID) (care.Profile, bool, error) {
	if s.closed.Load() {
		return care.Profile{}, false, ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return care.Profile{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	p := care.Profile{Owner: owner}
	err = tx.QueryRowContext(ctx, `SELECT name, weight FROM profiles WHERE owner_id = ?`, int64(owner)).Scan(&p.Name, &p.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return care.Profile{}, false, nil
	}
	if err != nil {
		return care.Profile{}, false, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT owner_id, kind, last_date, interval_days FROM treatments WHERE owner_id = ? ORDER BY position`, int64(owner))
	if err != nil {
		return care.Profile{}, false, err
	}
	byOwner, err := scanTreatments(rows)
	if err != nil {
		return care.Profile{}, false, err
	}
	p.Treatments = byOwner[owner]
	return p, true, tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, owner care.OwnerID) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM treatments WHERE owner_id = ?`, int64(owner)); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE owner_id = ?`, int64(owner))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// ForEach loads the snapshot inside one read transaction and releases the
// connection before calling fn, so fn may use the store.
func (s *sqliteStore) ForEach(ctx context.Context, fn func(owner care.OwnerID, p care.Profile) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	for _, p := range snap {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p.Owner, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) snapshot(ctx context.Context) ([]care.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT owner_id, name, weight FROM profiles ORDER BY owner_id`)
	if err != nil {
		return nil, err
	}
	var out []care.Profile
	for rows.Next() {
		var (
			id int64
			p  care.Profile
		)
		if err := rows.Scan(&id, &p.Name, &p.Weight); err != nil {
			_ = rows.Close()
			return nil, err
		}
		p.Owner = care.OwnerID(id)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	trows, err := tx.QueryContext(ctx,
		`SELECT owner_id, kind, last_date, interval_days FROM treatments ORDER BY owner_id, position`)
	if err != nil {
		return nil, err
	}
	byOwner, err := scanTreatments(trows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Treatments = byOwner[out[i].Owner]
	}
	return out, tx.Commit()
}

func scanTreatments(rows *sql.Rows) (map[care.OwnerID][]care.Treatment, error) {
	defer rows.Close()
	out := map[care.OwnerID][]care.Treatment{}
	for rows.Next() {
		var (
			id       int64
			kind     string
			lastDate string
			interval int
		)
		if err := rows.Scan(&id, &kind, &lastDate, &interval); err != nil {
			return nil, err
		}
		d, err := time.Parse(sqlDateLayout, lastDate)
		if err != nil {
			return nil, fmt.Errorf("treatment %s/%s: %w", care.OwnerID(id), kind, err)
		}
		owner := care.OwnerID(id)
		out[owner] = append(out[owner], care.Treatment{Kind: care.Kind(kind), Date: d, IntervalDays: interval})
	}
	return out, rows.Err()
}
