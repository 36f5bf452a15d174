package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/fraud-service/internal/metrics"
	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/Dan9191/fraud-service/internal/utils"
)

// FraudRateByCity computes fraud statistics per location over every stored record
func (s *Service) FraudRateByCity(ctx context.Context) ([]models.CityFraudStats, error) {
	records, err := s.repo.FindAllTransactions(ctx)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("find").Inc()
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return AggregateByCity(records), nil
}

// ListTransactions returns every stored record in its public projection
func (s *Service) ListTransactions(ctx context.Context) ([]models.TransactionView, error) {
	records, err := s.repo.FindAllTransactions(ctx)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("find").Inc()
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	views := make([]models.TransactionView, 0, len(records))
	for _, rec := range records {
		views = append(views, ProjectTransaction(rec))
	}
	return views, nil
}

type cityTotals struct {
	total   int
	frauds  int
	probSum float64
}

// AggregateByCity groups records by Location, in order of each city's first
// occurrence. Records without a Location fall under models.UnknownCity; a
// missing isFraud counts as 0 and a missing fraudProbability as 0.
func AggregateByCity(records []*models.TransactionRecord) []models.CityFraudStats {
	var order []string
	totals := make(map[string]*cityTotals)

	for _, rec := range records {
		city := models.UnknownCity
		if rec.Location != nil {
			city = *rec.Location
		}
		t, ok := totals[city]
		if !ok {
			t = &cityTotals{}
			totals[city] = t
			order = append(order, city)
		}
		t.total++
		if rec.IsFraud != nil && *rec.IsFraud == 1 {
			t.frauds++
		}
		if rec.FraudProbability != nil {
			t.probSum += *rec.FraudProbability
		}
	}

	stats := make([]models.CityFraudStats, 0, len(order))
	for _, city := range order {
		stats = append(stats, cityStats(city, totals[city]))
	}
	return stats
}

func cityStats(city string, t *cityTotals) models.CityFraudStats {
	return models.CityFraudStats{
		City:                city,
		Total:               t.total,
		Frauds:              t.frauds,
		FraudRate:           utils.Round(utils.Ratio(float64(t.frauds), float64(t.total)), 4),
		AvgFraudProbability: utils.Round(utils.Ratio(t.probSum, float64(t.total)), 4),
	}
}

// ProjectTransaction maps a stored record to the /transactions shape.
// Timestamp carries the caller-supplied TransactionDate, not the server
// creation time; any field the record lacks stays nil and renders as null.
func ProjectTransaction(rec *models.TransactionRecord) models.TransactionView {
	return models.TransactionView{
		TransactionID:    rec.TransactionID,
		Timestamp:        rec.TransactionDate,
		Amount:           rec.Amount,
		Location:         rec.Location,
		MerchantID:       rec.MerchantID,
		TransactionType:  rec.TransactionType,
		IsFraud:          rec.IsFraud,
		FraudProbability: rec.FraudProbability,
	}
}
