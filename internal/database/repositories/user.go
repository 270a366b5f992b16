package repositories

import (
	"context"
	"database/sql"
	"errors"

	"flashdeck/internal/database/models"
	"flashdeck/internal/logger"
	"flashdeck/internal/utils"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

var ErrIncorrectPassword = errors.New("incorrect password")

type userRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewUserRepository(db *sql.DB, log *logger.Logger) UserRepository {
	return &userRepository{db: db, log: log.With("repo", "UserRepository")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Plan == "" {
		user.Plan = models.PlanFree
	}
	query := `
		INSERT INTO users (first_name, last_name, email, password, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, user.Password, user.Plan).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return storageErr("creating user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := models.User{}
	query := `SELECT id, first_name, last_name, email, plan, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Plan, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFoundOrDenied
	}
	if err != nil {
		return nil, storageErr("getting user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{}
	query := `SELECT id, first_name, last_name, email, password, plan, created_at, updated_at FROM users WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.Plan, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFoundOrDenied
	}
	if err != nil {
		return nil, storageErr("getting user", err)
	}
	return &user, nil
}

func (r *userRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	if plan != models.PlanFree && plan != models.PlanPro {
		return validationErr("plan", "must be free or pro")
	}
	query := `UPDATE users SET plan = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, plan, id)
	if err != nil {
		return storageErr("updating plan", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFoundOrDenied
	}
	return nil
}

func (r *userRepository) ResetPassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	var storedPasswordHash string
	query := `SELECT password FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&storedPasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFoundOrDenied
	}
	if err != nil {
		return storageErr("getting user password", err)
	}

	if !utils.CheckPasswordHash(oldPassword, storedPasswordHash) {
		return ErrIncorrectPassword
	}

	hashedNewPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return storageErr("hashing password", err)
	}

	updateQuery := `UPDATE users SET password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, updateQuery, hashedNewPassword, userID)
	if err != nil {
		return storageErr("resetting password", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrNotFoundOrDenied
	}
	return nil
}
