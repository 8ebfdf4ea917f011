// README: Preferences store; one row per (user, key) in PostgreSQL.
package preferences

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"routeroll/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context, userID types.ID) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key, value FROM preferences WHERE user_id = $1`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Replace swaps the user's whole preference set in one transaction.
func (s *Store) Replace(ctx context.Context, userID types.ID, kv map[string]string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM preferences WHERE user_id = $1`, string(userID)); err != nil {
		return err
	}
	for k, v := range kv {
		if _, err := tx.Exec(ctx,
			`INSERT INTO preferences (user_id, key, value) VALUES ($1, $2, $3)`,
			string(userID), k, v,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
