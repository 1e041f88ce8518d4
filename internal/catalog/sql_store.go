package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLStore implements Store on SQLite or PostgreSQL. Both dialects accept
// $n placeholders, so the queries are shared.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return &SQLStore{db: db, dialect: "sqlite"}, nil
}

func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &SQLStore{db: db, dialect: "postgres"}, nil
}

// RunMigrations applies the embedded schema for the store's dialect.
func (s *SQLStore) RunMigrations() error {
	var (
		driver database.Driver
		err    error
	)
	switch s.dialect {
	case "sqlite":
		driver, err = sqlite.WithInstance(s.db, &sqlite.Config{})
	case "postgres":
		driver, err = postgres.WithInstance(s.db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, s.dialect)
	if err != nil {
		return fmt.Errorf("could not open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, s.dialect, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `id, name, description, unit_price, commission, stock_quantity, image_url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.ProductRecord, error) {
	var p domain.ProductRecord
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.UnitPrice,
		&p.Commission,
		&p.StockQuantity,
		&p.ImageURL,
		&p.CreatedAt,
	)
	return p, err
}

func (s *SQLStore) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.ProductRecord
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (s *SQLStore) GetProduct(ctx context.Context, id string) (domain.ProductRecord, error) {
	return s.getProduct(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) getProduct(ctx context.Context, q queryer, id string) (domain.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductRecord{}, fmt.Errorf("get product %q: %w", id, domain.ErrProductNotFound)
	}
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *SQLStore) CreateProduct(ctx context.Context, p domain.ProductRecord) (domain.ProductRecord, error) {
	p, err := prepareNew(p)
	if err != nil {
		return domain.ProductRecord{}, err
	}

	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.UnitPrice.String(),
		p.Commission.String(),
		p.StockQuantity,
		p.ImageURL,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ProductRecord{}, fmt.Errorf("product %q: %w", p.ID, domain.ErrProductExists)
		}
		return domain.ProductRecord{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *moderncsqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func (s *SQLStore) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.ProductRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.getProduct(ctx, tx, id)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		return domain.ProductRecord{}, err
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, unit_price = $4, commission = $5, stock_quantity = $6, image_url = $7
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		updated.Name,
		updated.Description,
		updated.UnitPrice.String(),
		updated.Commission.String(),
		updated.StockQuantity,
		updated.ImageURL,
	)
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("failed to update product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ProductRecord{}, fmt.Errorf("failed to commit product update: %w", err)
	}
	return updated, nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete product %q: %w", id, domain.ErrProductNotFound)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
