package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func (q queries) UsernameByID(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string

	query := `
			SELECT username FROM profiles WHERE user_id = $1;
	`

	if err := q.db.QueryRowContext(ctx, query, userID).Scan(&username); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrProfileNotFound
		}

		return "", fmt.Errorf("error querying profile: %w", err)
	}

	return username, nil
}
