// Package pagecache is a sqlite-backed cache of raw fetched pages,
// keyed by URL. scraping a jurisdiction twice in a row while debugging
// field configs shouldn't hammer the target site.
package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("page not in cache")

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	contents   BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
`

type Cache struct {
	db *sql.DB
}

func Open(path string) (*Cache, error) {
	if path != ":memory:" {
		os.MkdirAll(filepath.Dir(path), 0777)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT contents, expires_at FROM pages WHERE url = ?`,
		url,
	)

	var contents []byte
	var expiresAt int64
	err := row.Scan(&contents, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() >= expiresAt {
		return nil, ErrNotFound
	}
	return contents, nil
}

func (c *Cache) Set(ctx context.Context, url string, contents []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO pages (url, contents, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET contents = excluded.contents, expires_at = excluded.expires_at`,
		url,
		contents,
		time.Now().Add(ttl).Unix(),
	)
	return err
}
