package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shuv1824/skycast/internal/types"
)

var (
	ErrNotFound    = errors.New("favorite city not found")
	ErrInvalidCity = errors.New("invalid favorite city")
)

// Store persists the favorite city list.
type Store interface {
	List(ctx context.Context) ([]types.City, error)
	Add(ctx context.Context, city types.City) (types.City, error)
	Remove(ctx context.Context, id string) error
	Seed(ctx context.Context, cities []types.City) (int, error)
	Close() error
}

// SQLiteStore implements Store on the pure Go sqlite driver.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS favorites (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT NOT NULL DEFAULT '',
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	coord_key TEXT NOT NULL UNIQUE,
	added_at INTEGER NOT NULL
);`

// NewSQLite opens (or creates) the database at path and applies the schema.
// Writers queue on a single connection; busy_timeout covers other processes
// holding the file.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("could not set WAL mode", "error", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply favorites schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]types.City, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, country, lat, lon, added_at FROM favorites ORDER BY added_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.City, 0)
	for rows.Next() {
		var c types.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Lat, &c.Lon, &c.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Add stores city. Adding a city at already-saved coordinates returns the
// existing entry unchanged.
func (s *SQLiteStore) Add(ctx context.Context, city types.City) (types.City, error) {
	saved, _, err := s.insert(ctx, city)
	return saved, err
}

// insert reports whether a new row was written.
func (s *SQLiteStore) insert(ctx context.Context, city types.City) (types.City, bool, error) {
	city.Name = strings.TrimSpace(city.Name)
	if city.Name == "" {
		return types.City{}, false, fmt.Errorf("%w: name is required", ErrInvalidCity)
	}
	if !city.Coordinates().Valid() {
		return types.City{}, false, fmt.Errorf("%w: coordinates out of range", ErrInvalidCity)
	}

	key := city.Coordinates().Key()
	city.ID = uuid.NewString()
	city.AddedAt = s.now().Unix()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites(id, name, country, lat, lon, coord_key, added_at) VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(coord_key) DO NOTHING`,
		city.ID, city.Name, city.Country, city.Lat, city.Lon, key, city.AddedAt)
	if err != nil {
		return types.City{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.City{}, false, err
	}
	if n == 1 {
		return city, true, nil
	}

	var existing types.City
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, country, lat, lon, added_at FROM favorites WHERE coord_key = ?`, key,
	).Scan(&existing.ID, &existing.Name, &existing.Country, &existing.Lat, &existing.Lon, &existing.AddedAt)
	if err != nil {
		return types.City{}, false, err
	}
	return existing, false, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed adds cities only when the store is empty and reports how many were added.
func (s *SQLiteStore) Seed(ctx context.Context, cities []types.City) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	added := 0
	for _, c := range cities {
		_, inserted, err := s.insert(ctx, c)
		if err != nil {
			slog.Warn("skipping preset city", "name", c.Name, "error", err)
			continue
		}
		if inserted {
			added++
		}
	}
	return added, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
