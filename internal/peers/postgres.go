package peers

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore reads the list from the peer_servers table created by
// db.AutoMigrate, ordered by position.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM peer_servers ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying peer_servers: %w", err)
	}
	defer rows.Close()

	var servers []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		servers = append(servers, url)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, ErrNotConfigured
	}
	return servers, nil
}

func (s *PostgresStore) Save(ctx context.Context, servers []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM peer_servers"); err != nil {
		return fmt.Errorf("clearing peer_servers: %w", err)
	}
	for i, url := range servers {
		if _, err := tx.ExecContext(ctx, "INSERT INTO peer_servers (position, url) VALUES ($1, $2)", i, url); err != nil {
			return fmt.Errorf("inserting peer server: %w", err)
		}
	}
	return tx.Commit()
}
