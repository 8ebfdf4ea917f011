// README: History store backed by PostgreSQL.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, r *SavedRoute) error {
	path, err := json.Marshal(r.Path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	weather, err := json.Marshal(r.Weather)
	if err != nil {
		return fmt.Errorf("encode weather: %w", err)
	}

	_, err = s.db.Exec(ctx, `
        INSERT INTO routes (
            id, user_id, name, distance_m, duration_s, path,
            start_lat, start_lng, end_lat, end_lng,
            weather, difficulty, safety_score, created_at, walked_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10,
            $11, $12, $13, $14, $15
        )
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            walked_at = EXCLUDED.walked_at`,
		r.ID, string(r.UserID), r.Name, r.DistanceMeters, r.DurationSeconds, path,
		r.Start.Lat, r.Start.Lng, r.End.Lat, r.End.Lng,
		weather, string(r.Difficulty), r.SafetyScore, r.CreatedAt, r.WalkedAt,
	)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]SavedRoute, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, name, distance_m, duration_s, path,
               start_lat, start_lng, end_lat, end_lng,
               weather, difficulty, safety_score, created_at, walked_at
        FROM routes
        WHERE user_id = $1
        ORDER BY created_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SavedRoute, 0)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID types.ID, id string) (*SavedRoute, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, name, distance_m, duration_s, path,
               start_lat, start_lng, end_lat, end_lng,
               weather, difficulty, safety_score, created_at, walked_at
        FROM routes
        WHERE user_id = $1 AND id = $2`, string(userID), id,
	)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) MarkWalked(ctx context.Context, userID types.ID, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE routes SET walked_at = $1
        WHERE user_id = $2 AND id = $3`,
		at, string(userID), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID types.ID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE user_id = $1 AND id = $2`, string(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WalkedRoutes returns walked routes, most recent walk first.
func (s *Store) WalkedRoutes(ctx context.Context, userID types.ID) ([]walkRecord, error) {
	rows, err := s.db.Query(ctx, `
        SELECT distance_m, duration_s, walked_at
        FROM routes
        WHERE user_id = $1 AND walked_at IS NOT NULL
        ORDER BY walked_at DESC`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []walkRecord
	for rows.Next() {
		var w walkRecord
		if err := rows.Scan(&w.DistanceM, &w.DurationS, &w.WalkedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanRoute(row pgx.Row) (SavedRoute, error) {
	var (
		r          SavedRoute
		userID     string
		difficulty string
		path       []byte
		weather    []byte
	)
	err := row.Scan(
		&r.ID, &userID, &r.Name, &r.DistanceMeters, &r.DurationSeconds, &path,
		&r.Start.Lat, &r.Start.Lng, &r.End.Lat, &r.End.Lng,
		&weather, &difficulty, &r.SafetyScore, &r.CreatedAt, &r.WalkedAt,
	)
	if err != nil {
		return SavedRoute{}, err
	}
	r.UserID = types.ID(userID)
	r.Difficulty = route.Difficulty(difficulty)
	if err := json.Unmarshal(path, &r.Path); err != nil {
		return SavedRoute{}, fmt.Errorf("decode path: %w", err)
	}
	if err := json.Unmarshal(weather, &r.Weather); err != nil {
		return SavedRoute{}, fmt.Errorf("decode weather: %w", err)
	}
	return r, nil
}
