package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/fraud-service/internal/models"
)

// MemoryRepository keeps records in process memory. Used when no database
// is configured and in tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	transactions []*models.TransactionRecord
	users        map[string]*models.User
	nextUserID   int64
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) InsertTransaction(ctx context.Context, rec *models.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rec
	r.transactions = append(r.transactions, &c)
	return nil
}

func (r *MemoryRepository) FindAllTransactions(ctx context.Context) ([]*models.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.TransactionRecord, len(r.transactions))
	for i, rec := range r.transactions {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := r.users[key]; exists {
		return ErrDuplicateEmail
	}
	r.nextUserID++
	user.ID = r.nextUserID
	user.CreatedAt = time.Now().UTC()
	c := *user
	c.Email = key
	r.users[key] = &c
	return nil
}

func (r *MemoryRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *user
	return &c, nil
}
