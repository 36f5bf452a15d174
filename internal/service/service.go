package service

import (
	"context"
	"time"

	"github.com/Dan9191/fraud-service/internal/config"
	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/utils"
	"github.com/sirupsen/logrus"
)

// Store is the record and credential store used by the service
type Store interface {
	Ping(ctx context.Context) error
	InsertTransaction(ctx context.Context, rec *models.TransactionRecord) error
	FindAllTransactions(ctx context.Context) ([]*models.TransactionRecord, error)
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Model encodes categorical values and scores feature rows
type Model interface {
	Encode(column, value string) int
	Score(x []float64) (label int, probability float64)
}

// FraudNotifier is told about every transaction labelled as fraud
type FraudNotifier interface {
	SendFraudAlert(rec *models.TransactionRecord) error
}

// Service handles business logic
type Service struct {
	repo     Store
	model    Model
	hasher   utils.PasswordHasher
	notifier FraudNotifier
	log      *logrus.Logger
	config   *config.Config
	now      func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithNotifier sends fraud alerts through n
func WithNotifier(n FraudNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithHasher replaces the default bcrypt hasher
func WithHasher(h utils.PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithClock overrides the server clock used for record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService initializes a new service
func NewService(repo Store, model Model, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		model:  model,
		hasher: utils.NewBcryptHasher(),
		log:    log,
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health checks the backing store
func (s *Service) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
