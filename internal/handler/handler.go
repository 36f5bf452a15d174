package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/repository"
	"github.com/Dan9191/fraud-service/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc      *service.Service
	log      *logrus.Logger
	validate *validator.Validate
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Handler{svc: svc, log: log, validate: v}
}

// predictRequest uses pointers so that a missing field differs from a zero value
type predictRequest struct {
	TransactionID   *wholeNumber `json:"TransactionID" validate:"required"`
	TransactionDate *string      `json:"TransactionDate" validate:"required"`
	Amount          *float64     `json:"Amount" validate:"required"`
	MerchantID      *wholeNumber `json:"MerchantID" validate:"required"`
	TransactionType *string      `json:"TransactionType" validate:"required"`
	Location        *string      `json:"Location" validate:"required"`
}

func (p *predictRequest) input() models.TransactionInput {
	return models.TransactionInput{
		TransactionID:   int64(*p.TransactionID),
		TransactionDate: *p.TransactionDate,
		Amount:          *p.Amount,
		MerchantID:      int64(*p.MerchantID),
		TransactionType: *p.TransactionType,
		Location:        *p.Location,
	}
}

// wholeNumber decodes any JSON number without a fractional part, so 7 and
// 7.0 are the same ID.
type wholeNumber int64

func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	if v, err := num.Int64(); err == nil {
		*n = wholeNumber(v)
		return nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return fmt.Errorf("%s is not a whole number", num)
	}
	*n = wholeNumber(f)
	return nil
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Predict scores a transaction and stores the result
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !h.bind(w, r, &req) {
		return
	}

	pred, err := h.svc.Predict(r.Context(), req.input())
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// FraudRateByCity returns fraud statistics grouped by location
func (h *Handler) FraudRateByCity(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.FraudRateByCity(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListTransactions returns every stored transaction
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.bind(w, r, &req) {
		return
	}

	_, err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already registered")
	case err != nil:
		h.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "User created successfully"})
	}
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.bind(w, r, &req) {
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case err != nil:
		h.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Login successful",
			"user":    user.Email,
			"token":   token,
		})
	}
}

// Health reports whether the record store is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bind decodes and validates a JSON body, writing a 400 on failure
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.log.WithError(err).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
