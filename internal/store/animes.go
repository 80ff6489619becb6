package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// UpsertAnime inserts or replaces an anime row. Status and type are not
// persisted; they only travel in event payloads.
func (s *Store) UpsertAnime(ctx context.Context, a models.Anime) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO animes
			(id, mal_id, title, title_english, title_original, image, score, year, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, a.ID, nullInt(a.MALID), a.Title, nullStr(a.TitleEnglish), nullStr(a.TitleOriginal),
		nullStr(a.Image), nullFloat(a.Score), nullInt(int64(a.Year)))
	if err != nil {
		return fmt.Errorf("upsert anime %s: %w", a.ID, err)
	}
	return nil
}

// ResolveAnimeID maps a client-supplied identifier to a stored primary key.
// It tries an exact id match first, then falls back to mal_id when the
// identifier parses as a number. Returns "" when nothing matches.
func (s *Store) ResolveAnimeID(ctx context.Context, id string) (string, error) {
	var resolved string
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM animes WHERE id = ?`, id).Scan(&resolved)
	if err == nil {
		return resolved, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("resolve anime by id: %w", err)
	}

	malID, perr := strconv.ParseInt(id, 10, 64)
	if perr != nil {
		return "", nil
	}
	err = s.DB.QueryRowContext(ctx, `SELECT id FROM animes WHERE mal_id = ?`, malID).Scan(&resolved)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve anime by mal_id: %w", err)
	}
	return resolved, nil
}

// DeleteAnime removes an anime and its tier assignment. The identifier is
// resolved by id, then by mal_id. Returns the resolved primary key and
// whether a row was actually deleted.
func (s *Store) DeleteAnime(ctx context.Context, id string) (string, bool, error) {
	resolved, err := s.ResolveAnimeID(ctx, id)
	if err != nil {
		return "", false, err
	}
	if resolved == "" {
		return "", false, nil
	}

	// assignments first, then the row itself
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM tier_assignments WHERE anime_id = ?`, resolved); err != nil {
		return "", false, fmt.Errorf("delete assignments for %s: %w", resolved, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM animes WHERE id = ?`, resolved)
	if err != nil {
		return "", false, fmt.Errorf("delete anime %s: %w", resolved, err)
	}
	n, _ := res.RowsAffected()
	return resolved, n > 0, nil
}

// ListAnimes returns every stored anime ordered by title.
func (s *Store) ListAnimes(ctx context.Context) ([]models.Anime, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, mal_id, title, title_english, title_original, image, score, year
		FROM animes
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("list animes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Anime, 0, 64)
	for rows.Next() {
		var (
			a             models.Anime
			malID         sql.NullInt64
			titleEnglish  sql.NullString
			titleOriginal sql.NullString
			image         sql.NullString
			score         sql.NullFloat64
			year          sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &malID, &a.Title, &titleEnglish, &titleOriginal, &image, &score, &year); err != nil {
			return nil, fmt.Errorf("scan anime row: %w", err)
		}
		a.MALID = malID.Int64
		a.TitleEnglish = titleEnglish.String
		a.TitleOriginal = titleOriginal.String
		a.Image = image.String
		a.Score = score.Float64
		a.Year = int(year.Int64)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}
