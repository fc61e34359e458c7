package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/fjod/yume/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrItemNotFound = errors.New("menu item not found")

type Repository struct {
	db *sql.DB
}

// RunMigrations applies the embedded schema and seed data.
func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) GetMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	query := `
		SELECT id, name, description, price, image_url, popular
		FROM menu_items
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error) {
	query := `
		SELECT id, name, description, price, image_url, popular
		FROM menu_items
		WHERE id = ?
	`

	item, err := scanMenuItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (r *Repository) GetExtras(ctx context.Context) ([]domain.MenuExtra, error) {
	query := `
		SELECT id, name, price
		FROM extra_options
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query extras: %w", err)
	}
	defer rows.Close()

	var extras []domain.MenuExtra
	for rows.Next() {
		var e domain.MenuExtra
		if err := rows.Scan(&e.ID, &e.Name, &e.Price); err != nil {
			return nil, fmt.Errorf("failed to scan extra: %w", err)
		}
		extras = append(extras, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return extras, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(s scanner) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := s.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.ImageURL,
		&item.Popular,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, err
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to scan menu item: %w", err)
	}
	return item, nil
}
