package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bselens/bselens/internal/lookup"
)

// CachedScrip is a stored lookup entry with its cache window.
type CachedScrip struct {
	lookup.Entry
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is stale at now.
func (c CachedScrip) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// GetScrip returns an unexpired entry whose scrip code or symbol equals key.
// It returns nil, nil on a miss.
func (s *Store) GetScrip(ctx context.Context, key string) (*lookup.Entry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("scrip key is required")
	}

	var (
		entry   lookup.Entry
		company sql.NullString
		isin    sql.NullString
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT scrip_code, symbol, company_name, isin
		FROM scrip_cache
		WHERE (scrip_code = ? OR symbol = ?) AND expires_at > ?
		ORDER BY cached_at DESC
		LIMIT 1
	`, key, strings.ToUpper(key), time.Now().UTC().Unix())

	if err := row.Scan(&entry.BSECode, &entry.Symbol, &company, &isin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached scrip: %w", err)
	}

	entry.CompanyName = company.String
	entry.ISIN = isin.String
	return &entry, nil
}

// PutScrip stores entry for ttl. Entries without a scrip code or symbol, and
// non-positive TTLs, are ignored.
func (s *Store) PutScrip(ctx context.Context, entry lookup.Entry, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	code := strings.TrimSpace(entry.BSECode)
	symbol := strings.ToUpper(strings.TrimSpace(entry.Symbol))
	if ttl <= 0 || code == "" || symbol == "" {
		return nil
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO scrip_cache (scrip_code, symbol, company_name, isin, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(scrip_code) DO UPDATE SET
			symbol = excluded.symbol,
			company_name = COALESCE(NULLIF(excluded.company_name, ''), scrip_cache.company_name),
			isin = COALESCE(NULLIF(excluded.isin, ''), scrip_cache.isin),
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at
	`, code, symbol, strings.TrimSpace(entry.CompanyName), strings.TrimSpace(entry.ISIN), now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached scrip: %w", err)
	}

	return nil
}

// ListScrips returns every cached entry, expired ones included, ordered by
// scrip code.
func (s *Store) ListScrips(ctx context.Context) ([]CachedScrip, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT scrip_code, symbol, company_name, isin, cached_at, expires_at
		FROM scrip_cache
		ORDER BY scrip_code
	`)
	if err != nil {
		return nil, fmt.Errorf("list cached scrips: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []CachedScrip{}
	for rows.Next() {
		var (
			item      CachedScrip
			company   sql.NullString
			isin      sql.NullString
			cachedAt  int64
			expiresAt int64
		)
		if err := rows.Scan(&item.BSECode, &item.Symbol, &company, &isin, &cachedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan cached scrips: %w", err)
		}
		item.CompanyName = company.String
		item.ISIN = isin.String
		item.CachedAt = time.Unix(cachedAt, 0).UTC()
		item.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		entries = append(entries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached scrips: %w", err)
	}

	return entries, nil
}

// PurgeScrips deletes cached entries, only expired ones when expiredOnly is
// set, and returns how many rows were removed.
func (s *Store) PurgeScrips(ctx context.Context, expiredOnly bool) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `DELETE FROM scrip_cache`
	var args []any
	if expiredOnly {
		query += ` WHERE expires_at <= ?`
		args = append(args, time.Now().UTC().Unix())
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge cached scrips: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cached scrips: %w", err)
	}
	return affected, nil
}
