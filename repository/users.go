package repository

import (
	"context"

	"canteen-service/models"
)

func (r *SQLRepository) CreateUser(ctx context.Context, user models.User) (int64, error) {
	return r.insert(ctx, r.db,
		"INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)",
		user.Username, user.PasswordHash, user.IsAdmin,
	)
}

func (r *SQLRepository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx,
		r.q("SELECT id, username, password, is_admin FROM users WHERE username = ?"),
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	return u, translate(err)
}

func (r *SQLRepository) HasAdmin(ctx context.Context) (bool, error) {
	n, err := r.count(ctx, "SELECT COUNT(*) FROM users WHERE is_admin = ?", true)
	return n > 0, err
}
