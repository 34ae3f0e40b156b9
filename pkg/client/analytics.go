package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Summary bundles corpus stats with the risk level distribution.
type Summary struct {
	Stats            Stats            `json:"stats"`
	RiskDistribution map[string]int64 `json:"risk_distribution"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// NameCount is a frequency-ranked name.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TrendPoint is the number of uploads on one day.
type TrendPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// OutbreakAlert flags a disease whose daily mentions spiked.
type OutbreakAlert struct {
	Disease       string    `json:"disease"`
	Date          time.Time `json:"date"`
	Count         int       `json:"count"`
	PreviousCount int       `json:"previous_count"`
	IncreaseRatio float64   `json:"increase_ratio"`
	Severity      string    `json:"severity"`
}

// OutbreakReport is the outcome of an outbreak scan.
type OutbreakReport struct {
	Alerts             []OutbreakAlert `json:"alerts"`
	Threshold          float64         `json:"threshold"`
	AnalysisPeriodDays int             `json:"analysis_period_days"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// AnalyticsClient covers aggregate statistics and outbreak detection.
type AnalyticsClient struct {
	client *Client
}

// Summary returns corpus-wide statistics.
func (a *AnalyticsClient) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	if err := a.client.get(ctx, "/api/v1/analytics/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TopDiseases returns the most frequent diseases. limit <= 0 uses the
// server default.
func (a *AnalyticsClient) TopDiseases(ctx context.Context, limit int) ([]NameCount, error) {
	return a.topN(ctx, "/api/v1/analytics/top-diseases", limit)
}

// TopLabs returns the most frequent lab tests.
func (a *AnalyticsClient) TopLabs(ctx context.Context, limit int) ([]NameCount, error) {
	return a.topN(ctx, "/api/v1/analytics/top-labs", limit)
}

// Trend returns daily upload counts over the trailing period.
func (a *AnalyticsClient) Trend(ctx context.Context, days int) ([]TrendPoint, error) {
	path := "/api/v1/analytics/trend"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var points []TrendPoint
	if err := a.client.get(ctx, path, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Outbreaks runs an outbreak scan over recent disease mentions.
func (a *AnalyticsClient) Outbreaks(ctx context.Context) (*OutbreakReport, error) {
	var report OutbreakReport
	if err := a.client.get(ctx, "/api/v1/analytics/outbreaks", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (a *AnalyticsClient) topN(ctx context.Context, path string, limit int) ([]NameCount, error) {
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}
	var items []NameCount
	if err := a.client.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}
