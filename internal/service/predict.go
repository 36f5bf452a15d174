package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Dan9191/fraud-service/internal/features"
	"github.com/Dan9191/fraud-service/internal/metrics"
	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Predict scores a transaction and stores the result. Nothing is returned
// unless the record was stored.
func (s *Service) Predict(ctx context.Context, in models.TransactionInput) (*models.Prediction, error) {
	fv := features.Derive(in, s.model)
	if !fv.Complete() {
		metrics.IncompleteFeaturesTotal.Inc()
		s.log.WithFields(logrus.Fields{
			"transaction_id":   in.TransactionID,
			"transaction_date": in.TransactionDate,
		}).Warn("Unparseable transaction date, scoring without temporal features")
	}

	label, probability := s.model.Score(fv.Values())
	pred := models.Prediction{
		IsFraud:          0,
		FraudProbability: utils.Round(clampProbability(probability), 4),
	}
	if label == 1 {
		pred.IsFraud = 1
	}

	rec := models.NewTransactionRecord(uuid.NewString(), in, pred, s.now().UTC())
	if err := s.repo.InsertTransaction(ctx, rec); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("insert").Inc()
		s.log.WithError(err).WithField("transaction_id", in.TransactionID).Error("Failed to store prediction")
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}
	metrics.ObservePrediction(pred.IsFraud, pred.FraudProbability)

	s.log.WithFields(logrus.Fields{
		"record_id":         rec.ID,
		"transaction_id":    in.TransactionID,
		"is_fraud":          pred.IsFraud,
		"fraud_probability": pred.FraudProbability,
	}).Info("Transaction scored")

	if pred.IsFraud == 1 && s.notifier != nil {
		if err := s.notifier.SendFraudAlert(rec); err != nil {
			metrics.AlertsTotal.WithLabelValues("failed").Inc()
			s.log.WithError(err).WithField("record_id", rec.ID).Warn("Fraud alert not delivered")
		} else {
			metrics.AlertsTotal.WithLabelValues("sent").Inc()
		}
	}

	return &pred, nil
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Min(1, math.Max(0, p))
}
