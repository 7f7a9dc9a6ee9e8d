// Package sqlstore is a hireauth.CredentialStore over database/sql. It runs
// on Postgres through the pgx stdlib driver and on SQLite through the pure-Go
// modernc driver; the queries use only syntax both accept.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/internal"
)

const (
	// DriverPostgres is the database/sql driver name registered by pgx.
	DriverPostgres = "pgx"
	// DriverSQLite is the database/sql driver name registered by modernc.org/sqlite.
	DriverSQLite = "sqlite"

	pgErrUniqueViolation = "23505"
)

var (
	_ hireauth.CredentialStore     = (*Store)(nil)
	_ hireauth.PasswordHashUpdater = (*Store)(nil)
)

// Store implements hireauth.CredentialStore.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects using the driver implied by dsn: postgres:// and postgresql://
// URLs use pgx, anything else (a path, file: URI or ":memory:") uses SQLite.
func Open(dsn string) (*Store, error) {
	return OpenDriver(DriverFor(dsn), dsn)
}

// DriverFor returns the driver name Open would use for dsn.
func DriverFor(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// OpenDriver connects with an explicit driver name.
func OpenDriver(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverSQLite:
		// SQLite serializes writers; one connection also keeps ":memory:"
		// databases from splitting per connection.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(15 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}
	return New(db), nil
}

// New wraps an existing pool. The caller keeps ownership of db only if it
// does not call Close.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock overrides the time source for created_at. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Close closes the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// GetByEmail looks up an identity by its normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (hireauth.Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, full_name, email, role, password_hash, created_at
		from users
		where email = $1
	`, email)
	return scanIdentity(row)
}

// GetByID looks up an identity by user id.
func (s *Store) GetByID(ctx context.Context, userID string) (hireauth.Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, full_name, email, role, password_hash, created_at
		from users
		where id = $1
	`, userID)
	return scanIdentity(row)
}

// Create inserts a new identity. A duplicate email yields hireauth.ErrAccountExists.
func (s *Store) Create(ctx context.Context, in hireauth.CreateIdentityInput) (hireauth.Identity, error) {
	if !in.Role.Valid() {
		return hireauth.Identity{}, fmt.Errorf("invalid role %q", in.Role)
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	identity := hireauth.Identity{
		UserID:       internal.NewUserIDAt(now),
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		insert into users (id, full_name, email, role, password_hash, created_at)
		values ($1, $2, $3, $4, $5, $6)
	`, identity.UserID, identity.FullName, identity.Email, string(identity.Role), identity.PasswordHash, identity.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return hireauth.Identity{}, fmt.Errorf("%w: %s", hireauth.ErrAccountExists, in.Email)
		}
		return hireauth.Identity{}, err
	}
	return identity, nil
}

// UpdateRole changes a user's role. Sessions pick the change up on their next refresh.
func (s *Store) UpdateRole(ctx context.Context, userID string, role hireauth.Role) (hireauth.Identity, error) {
	if !role.Valid() {
		return hireauth.Identity{}, fmt.Errorf("invalid role %q", role)
	}
	res, err := s.db.ExecContext(ctx, `update users set role = $1 where id = $2`, string(role), userID)
	if err != nil {
		return hireauth.Identity{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return hireauth.Identity{}, hireauth.ErrIdentityNotFound
	}
	return s.GetByID(ctx, userID)
}

// UpdatePasswordHash replaces the stored hash for userID.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.db.ExecContext(ctx, `update users set password_hash = $1 where id = $2`, hash, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return hireauth.ErrIdentityNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (hireauth.Identity, error) {
	var (
		identity hireauth.Identity
		role     string
	)
	err := row.Scan(&identity.UserID, &identity.FullName, &identity.Email, &role, &identity.PasswordHash, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return hireauth.Identity{}, hireauth.ErrIdentityNotFound
	}
	if err != nil {
		return hireauth.Identity{}, err
	}
	identity.Role = hireauth.Role(role)
	identity.CreatedAt = identity.CreatedAt.UTC()
	return identity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
