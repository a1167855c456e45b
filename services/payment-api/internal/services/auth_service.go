package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/models"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 10

type AuthService interface {
	Signup(ctx context.Context, traceID, email, password string) (models.User, error)
	Login(ctx context.Context, traceID, email, password string) (models.User, error)
	UpdateProfile(ctx context.Context, traceID, email, password, profilePic string) error
}

type AuthServiceImpl struct {
	logger    *zap.Logger
	userRepo  repositories.UserRepository
	dummyHash []byte
}

func NewAuthService(logger *zap.Logger, userRepo repositories.UserRepository) AuthService {
	// compared against when the email is unknown, so both failure paths cost one bcrypt round
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), passwordHashCost)
	return &AuthServiceImpl{logger: logger, userRepo: userRepo, dummyHash: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AuthServiceImpl) Signup(ctx context.Context, traceID, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.User{}, pkg.NewAppError(pkg.ErrInvalidInputCode, "password is too long", err)
		}
		return models.User{}, pkg.NewAppError(pkg.ErrServerCode, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return models.User{}, pkg.NewAppError(pkg.ErrEmailTakenCode, "email already registered", err)
		}
		return models.User{}, pkg.HandleSQLError(traceID, a.logger, err)
	}
	a.logger.Info("user_registered", zap.String(pkg.TraceId, traceID), zap.String("user_id", user.ID.String()))
	return user, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, traceID, email, password string) (models.User, error) {
	invalid := pkg.NewAppError(pkg.ErrInvalidCredentialsCode, pkg.ErrInvalidCredentialsCode.Message, nil)

	user, err := a.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return models.User{}, invalid
	}
	if err != nil {
		return models.User{}, pkg.HandleSQLError(traceID, a.logger, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, invalid
	}
	a.logger.Info("user_logged_in", zap.String(pkg.TraceId, traceID), zap.String("user_id", user.ID.String()))
	return user, nil
}

// UpdateProfile sets the profile picture and, if password is non-empty, a new password.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, traceID, email, password, profilePic string) error {
	hash := ""
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
		if err != nil {
			return pkg.NewAppError(pkg.ErrInvalidInputCode, "password cannot be used", err)
		}
		hash = string(b)
	}
	if err := a.userRepo.UpdateProfile(ctx, normalizeEmail(email), hash, profilePic); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return pkg.NewAppError(pkg.ErrRecordNotFoundCode, "user not found", err)
		}
		return pkg.HandleSQLError(traceID, a.logger, err)
	}
	return nil
}
