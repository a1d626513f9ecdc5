package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/Southwavecodes/Southwaveapp/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type RepoInterface interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByCategory(ctx context.Context, category domain.Category) ([]*domain.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	GetAllConcerts(ctx context.Context) ([]*domain.Concert, error)
	GetUpcomingConcerts(ctx context.Context, now time.Time) ([]*domain.Concert, error)
	GetPastConcerts(ctx context.Context, now time.Time) ([]*domain.Concert, error)
	Close() error
	RunMigrations(string) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `id, name, description, price, currency, images, category, sizes, colors, in_stock, featured`

func (r *Repository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY rowid`
	return r.queryProducts(ctx, query)
}

func (r *Repository) GetProductsByCategory(ctx context.Context, category domain.Category) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY rowid`
	return r.queryProducts(ctx, query, string(category))
}

func (r *Repository) GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE featured = 1 ORDER BY rowid`
	return r.queryProducts(ctx, query)
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var product *domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		product = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	p := &domain.Product{}
	var (
		images   string
		category string
		sizes    sql.NullString
		colors   sql.NullString
	)

	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Currency,
		&images,
		&category,
		&sizes,
		&colors,
		&p.InStock,
		&p.Featured,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Category = domain.Category(category)
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images for product %s: %w", p.ID, err)
	}
	if sizes.Valid {
		if err := json.Unmarshal([]byte(sizes.String), &p.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes for product %s: %w", p.ID, err)
		}
	}
	if colors.Valid {
		if err := json.Unmarshal([]byte(colors.String), &p.Colors); err != nil {
			return nil, fmt.Errorf("failed to decode colors for product %s: %w", p.ID, err)
		}
	}

	return p, nil
}

const concertColumns = `id, venue, city, country, date, time, ticket_url, sold_out, festival_name, description, image`

func (r *Repository) GetAllConcerts(ctx context.Context) ([]*domain.Concert, error) {
	query := `SELECT ` + concertColumns + ` FROM concerts ORDER BY date DESC`
	return r.queryConcerts(ctx, query)
}

func (r *Repository) GetUpcomingConcerts(ctx context.Context, now time.Time) ([]*domain.Concert, error) {
	query := `SELECT ` + concertColumns + ` FROM concerts WHERE date >= $1 ORDER BY date ASC`
	return r.queryConcerts(ctx, query, now.Format("2006-01-02"))
}

func (r *Repository) GetPastConcerts(ctx context.Context, now time.Time) ([]*domain.Concert, error) {
	query := `SELECT ` + concertColumns + ` FROM concerts WHERE date < $1 ORDER BY date DESC`
	return r.queryConcerts(ctx, query, now.Format("2006-01-02"))
}

func (r *Repository) queryConcerts(ctx context.Context, query string, args ...any) ([]*domain.Concert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query concerts: %w", err)
	}
	defer rows.Close()

	var concerts []*domain.Concert
	for rows.Next() {
		c := &domain.Concert{}
		var (
			festival    sql.NullString
			description sql.NullString
			image       sql.NullString
		)
		err := rows.Scan(
			&c.ID,
			&c.Venue,
			&c.City,
			&c.Country,
			&c.Date,
			&c.Time,
			&c.TicketURL,
			&c.SoldOut,
			&festival,
			&description,
			&image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concert: %w", err)
		}
		c.FestivalName = festival.String
		c.Description = description.String
		c.Image = image.String
		concerts = append(concerts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return concerts, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
