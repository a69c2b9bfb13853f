package postgres

import (
	"context"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

type userRepository struct {
	storage *Storage
}

func (r *userRepository) Create(ctx context.Context, phone string) (*model.User, error) {
	const query = `INSERT INTO users (phone) VALUES ($1) RETURNING id, created_at`
	u := model.User{Phone: phone}
	err := r.storage.pool.QueryRow(ctx, query, phone).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	const query = `SELECT id, phone, name, email, created_at FROM users WHERE phone=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, phone).Scan(&u.ID, &u.Phone, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, phone, name, email, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Phone, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
