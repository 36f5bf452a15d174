package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrUserNotFound is returned when no user has the requested email
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertTransaction appends one scored transaction
func (r *Repository) InsertTransaction(ctx context.Context, rec *models.TransactionRecord) error {
	query := `
		INSERT INTO fraud.predictions (id, transaction_id, transaction_date, amount, merchant_id,
			transaction_type, location, is_fraud, fraud_probability, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.TransactionID, rec.TransactionDate, rec.Amount, rec.MerchantID,
		rec.TransactionType, rec.Location, rec.IsFraud, rec.FraudProbability, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// FindAllTransactions returns every stored transaction in insertion order
func (r *Repository) FindAllTransactions(ctx context.Context) ([]*models.TransactionRecord, error) {
	query := `
		SELECT id, transaction_id, transaction_date, amount, merchant_id,
			transaction_type, location, is_fraud, fraud_probability, created_at
		FROM fraud.predictions
		ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := []*models.TransactionRecord{}
	for rows.Next() {
		rec := &models.TransactionRecord{}
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.TransactionDate, &rec.Amount, &rec.MerchantID,
			&rec.TransactionType, &rec.Location, &rec.IsFraud, &rec.FraudProbability, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return records, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO fraud.users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, strings.ToLower(user.Email), user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM fraud.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
