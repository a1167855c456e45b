package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripfund/payment-backend/pkg/models"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	user := models.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.PasswordHash, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.PasswordHash, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewUserRepository(mock)
	require.NoError(t, repo.Create(context.Background(), user))
	assert.ErrorIs(t, repo.Create(context.Background(), user), ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "profile_pic", "created_at", "updated_at"}).
			AddRow(id, "a@example.com", "hash", "uploads/x.png", now, now))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	user, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "uploads/x.png", user.ProfilePic)

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("", "uploads/new.png", "a@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users").
		WithArgs("newhash", "", "missing@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewUserRepository(mock)
	require.NoError(t, repo.UpdateProfile(context.Background(), "a@example.com", "", "uploads/new.png"))
	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), "missing@example.com", "newhash", ""), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
