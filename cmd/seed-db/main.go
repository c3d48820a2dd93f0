// Command seed-db loads a gzipped JSON bookstore dataset into PostgreSQL and
// provisions an API key for order endpoints. It is idempotent: every insert
// is an upsert keyed on the dataset IDs.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bookworm/backend/internal/repository"
)

const dateLayout = "2006-01-02"

// dataset is the top-level structure of the seed file.
type dataset struct {
	Categories []categoryJSON `json:"categories"`
	Authors    []authorJSON   `json:"authors"`
	Books      []bookJSON     `json:"books"`
	Discounts  []discountJSON `json:"discounts"`
	Reviews    []reviewJSON   `json:"reviews"`
}

type categoryJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type authorJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

type bookJSON struct {
	ID         int64           `json:"id"`
	CategoryID int64           `json:"category_id"`
	AuthorID   int64           `json:"author_id"`
	Title      string          `json:"title"`
	Summary    string          `json:"summary"`
	Price      decimal.Decimal `json:"price"`
	CoverPhoto string          `json:"cover_photo"`
}

type discountJSON struct {
	ID        int64           `json:"id"`
	BookID    int64           `json:"book_id"`
	Price     decimal.Decimal `json:"price"`
	StartDate string          `json:"start_date"`
	EndDate   *string         `json:"end_date"`
}

type reviewJSON struct {
	ID      int64  `json:"id"`
	BookID  int64  `json:"book_id"`
	Title   string `json:"title"`
	Details string `json:"details"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

func main() {
	var (
		databaseURL  string
		datasetFile  string
		apiKey       string
		apiKeyUser   int64
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&datasetFile, "dataset-file", "db/seed/bookstore.json.gz", "path to gzipped bookstore dataset")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or BOOKWORM_SEED_API_KEY env)")
	flag.Int64Var(&apiKeyUser, "api-key-user", 1, "user ID the seeded API key acts for")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or BOOKWORM_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("BOOKWORM_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("BOOKWORM_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, datasetFile, apiKey, apiKeyUser, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, datasetFile, apiKey string, apiKeyUser int64, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ds, err := readDataset(datasetFile)
	if err != nil {
		return errors.Wrap(err, "read dataset")
	}

	// Categories and authors have no dependencies and load concurrently.
	// Books reference both, and discounts and reviews reference books, so
	// the stages run in FK order.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedCategories(gctx, pool, ds.Categories) })
	g.Go(func() error { return seedAuthors(gctx, pool, ds.Authors) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := seedBooks(ctx, pool, ds.Books); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error { return seedDiscounts(gctx, pool, ds.Discounts) })
	g.Go(func() error { return seedReviews(gctx, pool, ds.Reviews) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := resetSequences(ctx, pool); err != nil {
		return errors.Wrap(err, "reset sequences")
	}

	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyUser, pepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}

	return nil
}

func readDataset(path string) (*dataset, error) {
	slog.Info("reading dataset", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset file")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	var ds dataset
	if err := json.NewDecoder(gz).Decode(&ds); err != nil {
		return nil, errors.Wrap(err, "decode dataset JSON")
	}

	slog.Info("dataset loaded",
		slog.Int("categories", len(ds.Categories)),
		slog.Int("authors", len(ds.Authors)),
		slog.Int("books", len(ds.Books)),
		slog.Int("discounts", len(ds.Discounts)),
		slog.Int("reviews", len(ds.Reviews)),
	)
	return &ds, nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categories []categoryJSON) error {
	const q = `INSERT INTO category (id, category_name, category_desc)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET category_name = $2, category_desc = $3`

	for _, c := range categories {
		if _, err := pool.Exec(ctx, q, c.ID, c.Name, c.Description); err != nil {
			return errors.Wrapf(err, "upsert category %d", c.ID)
		}
	}

	slog.Info("seeded categories", slog.Int("count", len(categories)))
	return nil
}

func seedAuthors(ctx context.Context, pool *pgxpool.Pool, authors []authorJSON) error {
	const q = `INSERT INTO author (id, author_name, author_bio)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET author_name = $2, author_bio = $3`

	for _, a := range authors {
		if _, err := pool.Exec(ctx, q, a.ID, a.Name, a.Bio); err != nil {
			return errors.Wrapf(err, "upsert author %d", a.ID)
		}
	}

	slog.Info("seeded authors", slog.Int("count", len(authors)))
	return nil
}

func seedBooks(ctx context.Context, pool *pgxpool.Pool, books []bookJSON) error {
	const q = `INSERT INTO book (id, category_id, author_id, book_title, book_summary, book_price, book_cover_photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			category_id = $2, author_id = $3, book_title = $4,
			book_summary = $5, book_price = $6, book_cover_photo = $7`

	for _, b := range books {
		if _, err := pool.Exec(ctx, q,
			b.ID, b.CategoryID, b.AuthorID, b.Title, b.Summary, b.Price, b.CoverPhoto,
		); err != nil {
			return errors.Wrapf(err, "upsert book %d", b.ID)
		}
	}

	slog.Info("seeded books", slog.Int("count", len(books)))
	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool, discounts []discountJSON) error {
	const q = `INSERT INTO discount (id, book_id, discount_start_date, discount_end_date, discount_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			book_id = $2, discount_start_date = $3, discount_end_date = $4, discount_price = $5`

	for _, d := range discounts {
		start, err := time.Parse(dateLayout, d.StartDate)
		if err != nil {
			return errors.Wrapf(err, "discount %d: parse start date %q", d.ID, d.StartDate)
		}
		var end *time.Time
		if d.EndDate != nil {
			t, err := time.Parse(dateLayout, *d.EndDate)
			if err != nil {
				return errors.Wrapf(err, "discount %d: parse end date %q", d.ID, *d.EndDate)
			}
			end = &t
		}

		if _, err := pool.Exec(ctx, q, d.ID, d.BookID, start, end, d.Price); err != nil {
			return errors.Wrapf(err, "upsert discount %d", d.ID)
		}
	}

	slog.Info("seeded discounts", slog.Int("count", len(discounts)))
	return nil
}

func seedReviews(ctx context.Context, pool *pgxpool.Pool, reviews []reviewJSON) error {
	const q = `INSERT INTO review (id, book_id, review_title, review_details, review_date, rating_star)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			book_id = $2, review_title = $3, review_details = $4, review_date = $5, rating_star = $6`

	for _, r := range reviews {
		date, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			// The dataset mixes timestamps and plain dates.
			date, err = time.Parse(dateLayout, r.Date)
			if err != nil {
				return errors.Wrapf(err, "review %d: parse date %q", r.ID, r.Date)
			}
		}

		if _, err := pool.Exec(ctx, q, r.ID, r.BookID, r.Title, r.Details, date, r.Rating); err != nil {
			return errors.Wrapf(err, "upsert review %d", r.ID)
		}
	}

	slog.Info("seeded reviews", slog.Int("count", len(reviews)))
	return nil
}

// resetSequences advances each serial sequence past the explicit dataset IDs
// so later inserts do not collide.
func resetSequences(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range []string{"category", "author", "book", "discount", "review"} {
		q := `SELECT setval(pg_get_serial_sequence('` + table + `', 'id'), COALESCE(MAX(id), 1)) FROM ` + table
		if _, err := pool.Exec(ctx, q); err != nil {
			return errors.Wrapf(err, "reset sequence for %s", table)
		}
	}
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey string, userID int64, pepper string) error {
	slog.Info("seeding API key", slog.Int64("user_id", userID))

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const q = `INSERT INTO api_keys (id, key_hash, name, user_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key_hash) DO UPDATE SET name = $3, user_id = $4`

	if _, err := pool.Exec(ctx, q, uuid.New(), keyHash, "Seeded test key", userID); err != nil {
		return errors.Wrap(err, "upsert api key")
	}

	return nil
}
