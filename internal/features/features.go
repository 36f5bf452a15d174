// Package features expands a raw transaction into the fixed feature set the
// fraud classifier was trained on.
package features

import (
	"math"
	"strings"
	"time"

	"github.com/Dan9191/fraud-service/internal/models"
)

// Column names, in the order the classifier was trained with.
const (
	ColTransactionID   = "TransactionID"
	ColAmount          = "Amount"
	ColMerchantID      = "MerchantID"
	ColTransactionType = "TransactionType"
	ColLocation        = "Location"
	ColHour            = "Hour"
	ColDay             = "Day"
	ColMonth           = "Month"
	ColWeekday         = "Weekday"
)

// Columns is the model-required column order. A model whose feature list
// differs from this must be rejected at load time.
var Columns = []string{
	ColTransactionID,
	ColAmount,
	ColMerchantID,
	ColTransactionType,
	ColLocation,
	ColHour,
	ColDay,
	ColMonth,
	ColWeekday,
}

// CategoricalColumns are the columns encoded through a trained vocabulary.
var CategoricalColumns = []string{ColTransactionType, ColLocation}

// Encoder maps a categorical value to its trained integer code.
type Encoder interface {
	Encode(column, value string) int
}

// Vector is a derived feature row. Temporal fields are nil when the
// transaction date could not be parsed.
type Vector struct {
	TransactionID   int64
	Amount          float64
	MerchantID      int64
	TransactionType int
	Location        int
	Hour            *int
	Day             *int
	Month           *int
	Weekday         *int // Monday=0 ... Sunday=6
}

// Values returns the row in Columns order. Missing temporal fields are NaN.
func (v Vector) Values() []float64 {
	return []float64{
		float64(v.TransactionID),
		v.Amount,
		float64(v.MerchantID),
		float64(v.TransactionType),
		float64(v.Location),
		optional(v.Hour),
		optional(v.Day),
		optional(v.Month),
		optional(v.Weekday),
	}
}

// Complete reports whether every temporal field was derived.
func (v Vector) Complete() bool {
	return v.Hour != nil && v.Day != nil && v.Month != nil && v.Weekday != nil
}

// Derive builds the feature vector for a transaction. It never fails:
// unknown categories and unparseable dates degrade the vector instead.
func Derive(in models.TransactionInput, enc Encoder) Vector {
	v := Vector{
		TransactionID:   in.TransactionID,
		Amount:          in.Amount,
		MerchantID:      in.MerchantID,
		TransactionType: enc.Encode(ColTransactionType, in.TransactionType),
		Location:        enc.Encode(ColLocation, in.Location),
	}

	if ts, ok := ParseDate(in.TransactionDate); ok {
		hour, day, month := ts.Hour(), ts.Day(), int(ts.Month())
		weekday := (int(ts.Weekday()) + 6) % 7
		v.Hour, v.Day, v.Month, v.Weekday = &hour, &day, &month, &weekday
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseDate parses a transaction date in any of the accepted layouts.
// The wall clock of an explicit offset is kept, not converted to UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func optional(p *int) float64 {
	if p == nil {
		return math.NaN()
	}
	return float64(*p)
}
