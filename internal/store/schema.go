package store

import (
	"context"
	"fmt"
	"log/slog"
)

// schema is written in the subset of SQL shared by SQLite and MySQL.
// Only unique constraints are declared inline; MySQL adds foreign key
// indexes by itself
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL UNIQUE,
		password_hash VARCHAR(128) NOT NULL,
		token VARCHAR(64) NOT NULL UNIQUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		bio VARCHAR(500) NOT NULL DEFAULT '',
		avatar VARCHAR(2048) NOT NULL DEFAULT '',
		joined BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		author_id VARCHAR(36) NULL,
		title VARCHAR(100) NOT NULL,
		slug VARCHAR(120) NOT NULL,
		body TEXT NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		created BIGINT NOT NULL,
		modified BIGINT NOT NULL,
		UNIQUE (author_id, title),
		UNIQUE (author_id, slug),
		FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS steps (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		recipe_id VARCHAR(36) NOT NULL,
		instruction TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		recipe_id VARCHAR(36) NOT NULL,
		url VARCHAR(2048) NOT NULL,
		unique_identifier CHAR(32) NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE (recipe_id, unique_identifier),
		FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		recipe_id VARCHAR(36) NOT NULL,
		name VARCHAR(50) NOT NULL,
		quantity DOUBLE NULL,
		unit VARCHAR(10) NULL,
		additional_info VARCHAR(100) NULL,
		FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		slug VARCHAR(100) NOT NULL PRIMARY KEY,
		name VARCHAR(75) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id VARCHAR(36) NOT NULL,
		tag_slug VARCHAR(100) NOT NULL,
		PRIMARY KEY (recipe_id, tag_slug),
		FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE,
		FOREIGN KEY (tag_slug) REFERENCES tags (slug)
			ON DELETE CASCADE ON UPDATE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS favourites (
		user_id VARCHAR(36) NOT NULL,
		recipe_id VARCHAR(36) NOT NULL,
		PRIMARY KEY (user_id, recipe_id),
		FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
	)`,
}

// Migrate creates any missing tables. It is safe to run repeatedly
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	slog.Info("Schema migrated", slog.Int("tables", len(schema)))
	return nil
}
