package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"

	migrationsTable = "catalog_schema_migrations"
)

// Repository reads catalog tables from a SQL database whose schema and seed data
// are managed by the embedded migrations. SQLite and Postgres share the schema.
type Repository struct {
	db      *sql.DB
	dialect string
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive between queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db, dialect: dialectSQLite}, nil
}

// NewPostgresRepository connects with a lib/pq connection string, either a URL
// ("postgres://...") or key=value pairs.
func NewPostgresRepository(dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	return &Repository{db: db, dialect: dialectPostgres}, nil
}

func (r *Repository) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var driver database.Driver
	switch r.dialect {
	case dialectPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{MigrationsTable: migrationsTable})
	default:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, r.dialect, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Load reads every catalog table and returns the validated catalog.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	t := Tables{
		Categories:    make(map[string][]string),
		Stock:         make(map[string]int),
		DiscountRates: make(map[string]float64),
	}

	if err := r.loadStock(ctx, &t); err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, &t); err != nil {
		return nil, err
	}
	if err := r.loadDiscounts(ctx, &t); err != nil {
		return nil, err
	}
	if err := r.loadUnitPrice(ctx, &t); err != nil {
		return nil, err
	}

	return New(t)
}

func (r *Repository) loadStock(ctx context.Context, t *Tables) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name, stock FROM items`)
	if err != nil {
		return fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var stock int
		if err := rows.Scan(&name, &stock); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		t.Stock[name] = stock
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (r *Repository) loadCategories(ctx context.Context, t *Tables) error {
	query := `
		SELECT c.name, ci.item
		FROM categories c
		LEFT JOIN category_items ci ON ci.category = c.name
		ORDER BY c.name, ci.position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var item sql.NullString
		if err := rows.Scan(&category, &item); err != nil {
			return fmt.Errorf("failed to scan category item: %w", err)
		}
		if _, ok := t.Categories[category]; !ok {
			t.Categories[category] = []string{}
		}
		if item.Valid {
			t.Categories[category] = append(t.Categories[category], item.String)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (r *Repository) loadDiscounts(ctx context.Context, t *Tables) error {
	rows, err := r.db.QueryContext(ctx, `SELECT code, rate FROM discount_codes`)
	if err != nil {
		return fmt.Errorf("failed to query discount codes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var rate float64
		if err := rows.Scan(&code, &rate); err != nil {
			return fmt.Errorf("failed to scan discount code: %w", err)
		}
		t.DiscountRates[code] = rate
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (r *Repository) loadUnitPrice(ctx context.Context, t *Tables) error {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'unit_price'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query unit price: %w", err)
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid unit price %q: %w", raw, err)
	}
	t.UnitPrice = price.InexactFloat64()
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
