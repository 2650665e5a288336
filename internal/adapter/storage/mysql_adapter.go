package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

//go:embed schema.sql
var schema string

const mysqlErrDuplicateEntry = 1062

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements port.DatabaseRepository. Single book reads outside a
// transaction go through an expirable LRU when cacheSize > 0.
type MySQLStore struct {
	*mysqlRepos
	db *sql.DB
}

func NewMySQLStore(db *sql.DB, cacheSize int, cacheTTL time.Duration) *MySQLStore {
	var cache *expirable.LRU[string, domain.Book]
	if cacheSize > 0 {
		cache = expirable.NewLRU[string, domain.Book](cacheSize, nil, cacheTTL)
	}
	return &MySQLStore{
		mysqlRepos: &mysqlRepos{q: db, cache: cache},
		db:         db,
	}
}

// Migrate creates the tables if they do not exist yet.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *MySQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	repos := &mysqlRepos{
		q:       tx,
		cache:   s.cache,
		inTx:    true,
		touched: make(map[string]struct{}),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	repos.flushTouched()
	return nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// mysqlRepos binds the repositories to one query target. Inside a
// transaction, cache evictions wait for the commit.
type mysqlRepos struct {
	q       dbtx
	cache   *expirable.LRU[string, domain.Book]
	inTx    bool
	touched map[string]struct{}
}

func (r *mysqlRepos) Books() port.BookRepository   { return bookRepo{r} }
func (r *mysqlRepos) Carts() port.CartRepository   { return cartRepo{r} }
func (r *mysqlRepos) Orders() port.OrderRepository { return orderRepo{r} }
func (r *mysqlRepos) Users() port.UserRepository   { return userRepo{r} }

func (r *mysqlRepos) invalidate(bookID string) {
	if r.cache == nil {
		return
	}
	if r.inTx {
		r.touched[bookID] = struct{}{}
		return
	}
	r.cache.Remove(bookID)
}

func (r *mysqlRepos) flushTouched() {
	if r.cache == nil {
		return
	}
	for id := range r.touched {
		r.cache.Remove(id)
	}
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
