package devicerepo

import (
	"context"
	"database/sql"
)

type Repo interface {
	Upsert(ctx context.Context, userID int64, token, platform string) error
	TokensByUser(ctx context.Context, userID int64) ([]string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Upsert(ctx context.Context, userID int64, token, platform string) error {
	const q = `
INSERT INTO device_tokens (user_id, token, platform)
VALUES ($1,$2,$3)
ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3`
	_, err := r.db.ExecContext(ctx, q, userID, token, platform)
	return err
}

func (r *repo) TokensByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
