package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tripfund/payment-backend/pkg/database"
	"github.com/tripfund/payment-backend/pkg/models"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create returns ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// UpdateProfile replaces the profile picture and, when passwordHash is non-empty, the password.
	UpdateProfile(ctx context.Context, email, passwordHash, profilePic string) error
}

type UserRepositoryImpl struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (u *UserRepositoryImpl) Create(ctx context.Context, user models.User) error {
	tag, err := u.db.Exec(ctx, `INSERT INTO users (id, email, password_hash, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (email) DO NOTHING`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

func (u *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := u.db.QueryRow(ctx, `SELECT id, email, password_hash, COALESCE(profile_pic, ''), created_at, updated_at
				FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.ProfilePic, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (u *UserRepositoryImpl) UpdateProfile(ctx context.Context, email, passwordHash, profilePic string) error {
	tag, err := u.db.Exec(ctx, `UPDATE users
				SET password_hash = COALESCE(NULLIF($1, ''), password_hash), profile_pic = NULLIF($2, ''), updated_at = NOW()
				WHERE email = $3`,
		passwordHash,
		profilePic,
		email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
