package sqlstore

import (
	"context"
	"fmt"
)

var migrations = []string{
	`create table if not exists users (
		id            text primary key,
		full_name     text not null,
		email         text not null,
		role          text not null check (role in ('admin', 'applicant')),
		password_hash text not null,
		created_at    timestamp not null
	)`,
	`create unique index if not exists users_email_key on users (email)`,
}

// Migrate creates the users table and its indexes if they do not exist.
// It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
