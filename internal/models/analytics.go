package models

// UnknownCity groups records stored without a Location
const UnknownCity = "Unknown"

// CityFraudStats represents fraud statistics for one location
type CityFraudStats struct {
	City                string  `json:"city"`
	Total               int     `json:"total"`
	Frauds              int     `json:"frauds"`
	FraudRate           float64 `json:"fraudRate"`           // Frauds / Total
	AvgFraudProbability float64 `json:"avgFraudProbability"` // Mean fraudProbability over the group
}
