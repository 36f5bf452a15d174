package models

import "time"

// TransactionInput is one incoming scoring request
type TransactionInput struct {
	TransactionID   int64   `json:"TransactionID"`
	TransactionDate string  `json:"TransactionDate"`
	Amount          float64 `json:"Amount"`
	MerchantID      int64   `json:"MerchantID"`
	TransactionType string  `json:"TransactionType"`
	Location        string  `json:"Location"`
}

// Prediction is the scoring result returned to the caller
type Prediction struct {
	IsFraud          int     `json:"isFraud"`
	FraudProbability float64 `json:"fraudProbability"`
}

// TransactionRecord is a scored transaction as held by the record store.
// Pointer fields are nil when the stored document lacks the value.
type TransactionRecord struct {
	ID               string
	TransactionID    *int64
	TransactionDate  *string
	Amount           *float64
	MerchantID       *int64
	TransactionType  *string
	Location         *string
	IsFraud          *int
	FraudProbability *float64
	Timestamp        time.Time // Server-assigned creation time
}

// NewTransactionRecord merges the request, the prediction and the server timestamp
func NewTransactionRecord(id string, in TransactionInput, p Prediction, ts time.Time) *TransactionRecord {
	return &TransactionRecord{
		ID:               id,
		TransactionID:    &in.TransactionID,
		TransactionDate:  &in.TransactionDate,
		Amount:           &in.Amount,
		MerchantID:       &in.MerchantID,
		TransactionType:  &in.TransactionType,
		Location:         &in.Location,
		IsFraud:          &p.IsFraud,
		FraudProbability: &p.FraudProbability,
		Timestamp:        ts,
	}
}

// TransactionView is the /transactions projection of a stored record.
// Every field renders as null when absent.
type TransactionView struct {
	TransactionID    *int64   `json:"TransactionID"`
	Timestamp        *string  `json:"Timestamp"` // Caller-supplied TransactionDate
	Amount           *float64 `json:"Amount"`
	Location         *string  `json:"Location"`
	MerchantID       *int64   `json:"MerchantID"`
	TransactionType  *string  `json:"TransactionType"`
	IsFraud          *int     `json:"isFraud"`
	FraudProbability *float64 `json:"fraudProbability"`
}
