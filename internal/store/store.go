// Package store is the persistence layer for the tier list: animes,
// tiers and anime→tier assignments in SQLite.
package store

import "database/sql"

type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}
