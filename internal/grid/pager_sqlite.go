package grid

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLitePager stores encoded chunks in a single sqlite table keyed by chunk
// coordinate.
type SQLitePager struct {
	db *sql.DB
}

func OpenSQLitePager(path string) (*SQLitePager, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLitePager{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (p *SQLitePager) Load(coord ChunkCoord) ([]byte, bool, error) {
	var data []byte
	err := p.db.QueryRow(`SELECT data FROM chunks WHERE x = ? AND y = ? AND z = ?`,
		coord.X, coord.Y, coord.Z).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load chunk %v: %w", coord, err)
	}
	return data, true, nil
}

func (p *SQLitePager) Save(coord ChunkCoord, data []byte) error {
	_, err := p.db.Exec(`INSERT INTO chunks (x, y, z, data, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(x, y, z) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		coord.X, coord.Y, coord.Z, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save chunk %v: %w", coord, err)
	}
	return nil
}

func (p *SQLitePager) Delete(coord ChunkCoord) error {
	if _, err := p.db.Exec(`DELETE FROM chunks WHERE x = ? AND y = ? AND z = ?`, coord.X, coord.Y, coord.Z); err != nil {
		return fmt.Errorf("delete chunk %v: %w", coord, err)
	}
	return nil
}

// ForEach buffers the rows before calling fn so fn may use the pager; the
// pool holds a single connection.
func (p *SQLitePager) ForEach(fn func(coord ChunkCoord, data []byte) bool) error {
	rows, err := p.db.Query(`SELECT x, y, z, data FROM chunks ORDER BY x, y, z`)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	type row struct {
		coord ChunkCoord
		data  []byte
	}
	var buffered []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.coord.X, &r.coord.Y, &r.coord.Z, &r.data); err != nil {
			rows.Close()
			return fmt.Errorf("scan chunk row: %w", err)
		}
		buffered = append(buffered, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("list chunks: %w", err)
	}
	rows.Close()

	for _, r := range buffered {
		if !fn(r.coord, r.data) {
			break
		}
	}
	return nil
}

func (p *SQLitePager) Close() error {
	return p.db.Close()
}
