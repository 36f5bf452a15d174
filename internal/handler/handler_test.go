package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/fraud-service/internal/config"
	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/repository"
	"github.com/Dan9191/fraud-service/internal/service"
	"github.com/Dan9191/fraud-service/internal/utils"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedModel struct {
	label       int
	probability float64
}

func (m fixedModel) Encode(column, value string) int { return -1 }

func (m fixedModel) Score(x []float64) (int, float64) { return m.label, m.probability }

type brokenStore struct {
	*repository.MemoryRepository
}

func (brokenStore) InsertTransaction(ctx context.Context, rec *models.TransactionRecord) error {
	return errors.New("write concern failed")
}

func (brokenStore) FindAllTransactions(ctx context.Context) ([]*models.TransactionRecord, error) {
	return nil, errors.New("read timeout")
}

func (brokenStore) Ping(ctx context.Context) error {
	return errors.New("no route to host")
}

func newTestRouter(t *testing.T, store service.Store, cfg *config.Config) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if cfg == nil {
		cfg = &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	}
	svc := service.NewService(store, fixedModel{label: 1, probability: 0.87}, logger, cfg,
		service.WithHasher(&utils.BcryptHasher{Cost: bcrypt.MinCost}))
	return NewRouter(NewHandler(svc, logger), cfg, logger)
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

const validTransaction = `{"TransactionID":1,"TransactionDate":"2024-01-05T10:00:00","Amount":250.0,"MerchantID":7,"TransactionType":"online","Location":"NYC"}`

func TestPredictEndpoint(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := newTestRouter(t, store, nil)

	rr := do(r, http.MethodPost, "/predict", validTransaction)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"isFraud":1,"fraudProbability":0.87}`, rr.Body.String())

	records, err := store.FindAllTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, *records[0].IsFraud)
	assert.Equal(t, 0.87, *records[0].FraudProbability)
}

func TestPredictEndpoint_ZeroValuesAreAccepted(t *testing.T) {
	r := newTestRouter(t, repository.NewMemoryRepository(), nil)
	rr := do(r, http.MethodPost, "/predict",
		`{"TransactionID":0,"TransactionDate":"garbage","Amount":0,"MerchantID":0,"TransactionType":"","Location":""}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPredictEndpoint_IntegralFloatIDs(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := newTestRouter(t, store, nil)

	rr := do(r, http.MethodPost, "/predict",
		`{"TransactionID":12.0,"TransactionDate":"2024-01-05T10:00:00","Amount":250.0,"MerchantID":7e0,"TransactionType":"online","Location":"NYC"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	records, err := store.FindAllTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(12), *records[0].TransactionID)
	assert.Equal(t, int64(7), *records[0].MerchantID)
}

func TestPredictEndpoint_BadRequests(t *testing.T) {
	r := newTestRouter(t, repository.NewMemoryRepository(), nil)

	cases := map[string]struct {
		body   string
		detail string
	}{
		"not json":      {`{"TransactionID":`, "Invalid request body"},
		"wrong type":    {`{"TransactionID":"one","TransactionDate":"2024-01-05","Amount":1,"MerchantID":1,"TransactionType":"a","Location":"b"}`, "Invalid request body"},
		"fractional id": {`{"TransactionID":1.5,"TransactionDate":"2024-01-05","Amount":1,"MerchantID":1,"TransactionType":"a","Location":"b"}`, "1.5 is not a whole number"},
		"null merchant": {`{"TransactionID":1,"TransactionDate":"2024-01-05","Amount":1,"MerchantID":null,"TransactionType":"a","Location":"b"}`, "MerchantID is required"},
		"missing field": {`{"TransactionID":1,"TransactionDate":"2024-01-05","Amount":1,"MerchantID":1,"TransactionType":"a"}`, "Location is required"},
		"empty object":  {`{}`, "TransactionID is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := do(r, http.MethodPost, "/predict", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.detail)
		})
	}
}

func TestPredictEndpoint_StoreFailure(t *testing.T) {
	r := newTestRouter(t, brokenStore{repository.NewMemoryRepository()}, nil)
	rr := do(r, http.MethodPost, "/predict", validTransaction)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "isFraud")
}

func TestFraudRateByCityEndpoint(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := newTestRouter(t, store, nil)

	rr := do(r, http.MethodGet, "/fraud-rate-by-city", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/predict", validTransaction).Code)
	}

	rr = do(r, http.MethodGet, "/fraud-rate-by-city", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"city":"NYC","total":2,"frauds":2,"fraudRate":1,"avgFraudProbability":0.87}]`, rr.Body.String())

	rr = do(newTestRouter(t, brokenStore{repository.NewMemoryRepository()}, nil), http.MethodGet, "/fraud-rate-by-city", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTransactionsEndpoint(t *testing.T) {
	store := repository.NewMemoryRepository()
	r := newTestRouter(t, store, nil)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/predict", validTransaction).Code)
	id := int64(5)
	require.NoError(t, store.InsertTransaction(context.Background(), &models.TransactionRecord{ID: "legacy", TransactionID: &id}))

	rr := do(r, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	require.Len(t, views, 2)

	assert.Equal(t, "2024-01-05T10:00:00", views[0]["Timestamp"])
	assert.Equal(t, "NYC", views[0]["Location"])
	assert.Equal(t, 0.87, views[0]["fraudProbability"])

	assert.Equal(t, float64(5), views[1]["TransactionID"])
	for _, key := range []string{"Timestamp", "Amount", "Location", "MerchantID", "TransactionType", "isFraud", "fraudProbability"} {
		value, present := views[1][key]
		assert.True(t, present, key)
		assert.Nil(t, value, key)
	}
}

func TestSignupAndLoginEndpoints(t *testing.T) {
	r := newTestRouter(t, repository.NewMemoryRepository(), nil)

	rr := do(r, http.MethodPost, "/signup", `{"name":"Ann","email":"ann@example.com","password":"long-enough"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"User created successfully"}`, rr.Body.String())

	rr = do(r, http.MethodPost, "/signup", `{"name":"Ann","email":"ann@example.com","password":"long-enough"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Email already registered")

	rr = do(r, http.MethodPost, "/signup", `{"name":"Bob","email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email must be a valid email address")
	assert.Contains(t, rr.Body.String(), "password must be at least 8 characters")

	rr = do(r, http.MethodPost, "/login", `{"email":"ann@example.com","password":"long-enough"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "ann@example.com", body["user"])
	assert.NotEmpty(t, body["token"])

	rr = do(r, http.MethodPost, "/login", `{"email":"ann@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(r, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"whatever1"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequireAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, RequireAuth: true}
	r := newTestRouter(t, repository.NewMemoryRepository(), cfg)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/predict", validTransaction).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/transactions", "").Code)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/signup", `{"name":"Ann","email":"ann@example.com","password":"long-enough"}`).Code)
	rr := do(r, http.MethodPost, "/login", `{"email":"ann@example.com","password":"long-enough"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	rr = do(r, http.MethodPost, "/predict", validTransaction, "Authorization", "Bearer "+body["token"])
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(r, http.MethodGet, "/fraud-rate-by-city", "", "Authorization", "Bearer "+body["token"])
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	r := newTestRouter(t, repository.NewMemoryRepository(), nil)
	rr := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fraud_http_requests_total")

	rr = do(newTestRouter(t, brokenStore{repository.NewMemoryRepository()}, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	wrong := map[string]string{
		"/predict":            http.MethodGet,
		"/fraud-rate-by-city": http.MethodPost,
		"/transactions":       http.MethodDelete,
		"/signup":             http.MethodGet,
	}
	for _, requireAuth := range []bool{false, true} {
		cfg := &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour, RequireAuth: requireAuth}
		r := newTestRouter(t, repository.NewMemoryRepository(), cfg)
		for path, method := range wrong {
			rr := do(r, method, path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s auth=%v", method, path, requireAuth)
		}
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nowhere", "").Code)
	}
}
