package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Sydnec/MyAnimeTierList/pkg/database"
)

func main() {
	var (
		animesOut      = flag.String("animes", "data/animes.csv", "output CSV path for animes")
		assignmentsOut = flag.String("assignments", "data/tier_assignments.csv", "output CSV path for tier assignments")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportAnimes(ctx, db, *animesOut); err != nil {
		log.Fatalf("export animes failed: %v", err)
	}
	if err := exportAssignments(ctx, db, *assignmentsOut); err != nil {
		log.Fatalf("export assignments failed: %v", err)
	}

	log.Printf("exported animes to %s and assignments to %s", *animesOut, *assignmentsOut)
}

func exportAnimes(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "mal_id", "title", "title_english", "title_original", "image", "score", "year"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, mal_id, title, title_english, title_original, image, score, year
        FROM animes
        ORDER BY title
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id            string
			malID         sql.NullInt64
			title         string
			titleEnglish  sql.NullString
			titleOriginal sql.NullString
			image         sql.NullString
			score         sql.NullFloat64
			year          sql.NullInt64
		)

		if err := rows.Scan(&id, &malID, &title, &titleEnglish, &titleOriginal, &image, &score, &year); err != nil {
			return err
		}

		mal := ""
		if malID.Valid {
			mal = strconv.FormatInt(malID.Int64, 10)
		}
		scoreStr := ""
		if score.Valid {
			scoreStr = strconv.FormatFloat(score.Float64, 'f', -1, 64)
		}
		yearStr := ""
		if year.Valid {
			yearStr = strconv.FormatInt(year.Int64, 10)
		}

		if err := w.Write([]string{
			id,
			mal,
			title,
			titleEnglish.String,
			titleOriginal.String,
			image.String,
			scoreStr,
			yearStr,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportAssignments(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"anime_id", "tier_id", "position", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT anime_id, tier_id, position, updated_at
        FROM tier_assignments
        ORDER BY tier_id, position ASC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			animeID   string
			tierID    string
			position  sql.NullInt64
			updatedAt sql.NullTime
		)

		if err := rows.Scan(&animeID, &tierID, &position, &updatedAt); err != nil {
			return err
		}

		pos := ""
		if position.Valid {
			pos = strconv.FormatInt(position.Int64, 10)
		}
		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{animeID, tierID, pos, updated}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
