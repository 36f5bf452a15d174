// Package scheduler runs the periodic fraud digest.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/fraud-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StatsSource computes the current per-city fraud statistics
type StatsSource interface {
	FraudRateByCity(ctx context.Context) ([]models.CityFraudStats, error)
}

// DigestSender delivers a digest
type DigestSender interface {
	SendFraudDigest(stats []models.CityFraudStats, at time.Time) error
}

// Digest periodically logs, and optionally mails, fraud statistics by city
type Digest struct {
	cron    *cron.Cron
	source  StatsSource
	sender  DigestSender
	log     *logrus.Logger
	timeout time.Duration
}

// NewDigest creates a digest job. sender may be nil to only log.
func NewDigest(source StatsSource, sender DigestSender, log *logrus.Logger) *Digest {
	return &Digest{
		cron:    cron.New(),
		source:  source,
		sender:  sender,
		log:     log,
		timeout: time.Minute,
	}
}

// Schedule registers the job with a standard five-field cron spec
func (d *Digest) Schedule(spec string) error {
	if _, err := d.cron.AddFunc(spec, func() {
		if err := d.Run(context.Background()); err != nil {
			d.log.WithError(err).Error("Fraud digest failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	d.log.Infof("Fraud digest scheduled: %s", spec)
	return nil
}

// Start runs the scheduler in the background
func (d *Digest) Start() {
	d.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

// Run computes and delivers one digest
func (d *Digest) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stats, err := d.source.FraudRateByCity(ctx)
	if err != nil {
		return err
	}

	for _, st := range stats {
		d.log.WithFields(logrus.Fields{
			"city":                  st.City,
			"total":                 st.Total,
			"frauds":                st.Frauds,
			"fraud_rate":            st.FraudRate,
			"avg_fraud_probability": st.AvgFraudProbability,
		}).Info("Fraud digest")
	}

	if d.sender == nil {
		return nil
	}
	return d.sender.SendFraudDigest(stats, time.Now().UTC())
}
