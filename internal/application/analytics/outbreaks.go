// Package analytics serves aggregate views over the record store: store
// statistics, top disease and lab frequencies, upload trends, and
// day-over-day outbreak detection.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Outbreak detection defaults.
const (
	DefaultOutbreakThreshold = 2.0
	DefaultOutbreakWindow    = 14
	maxOutbreakAlerts        = 10
	minObservedDays          = 3
)

// Severity cutoffs on the day-over-day increase ratio.
const (
	severityHighRatio   = 3.0
	severityMediumRatio = 2.0
)

// OutbreakAlert flags a disease whose daily mention count jumped.
type OutbreakAlert struct {
	Disease       string           `json:"disease"`
	Date          time.Time        `json:"date"`
	Count         int              `json:"count"`
	PreviousCount int              `json:"previous_count"`
	IncreaseRatio float64          `json:"increase_ratio"`
	Severity      common.RiskLevel `json:"severity"`
}

// OutbreakReport is the full detection response.
type OutbreakReport struct {
	Alerts             []OutbreakAlert `json:"alerts"`
	Threshold          float64         `json:"threshold"`
	AnalysisPeriodDays int             `json:"analysis_period_days"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// DetectOutbreaks scans per-disease daily counts for day-over-day jumps. A
// disease needs at least three observed days; the last two days of its
// series are compared, and a ratio at or above threshold raises an alert.
// Alerts are ordered by severity then ratio, capped at ten.
func DetectOutbreaks(counts []record.DailyCount, threshold float64, windowDays int) OutbreakReport {
	if threshold <= 0 {
		threshold = DefaultOutbreakThreshold
	}
	if windowDays < 1 {
		windowDays = DefaultOutbreakWindow
	}

	byDisease := make(map[string]map[time.Time]int)
	for _, c := range counts {
		day := c.Day.UTC().Truncate(24 * time.Hour)
		if byDisease[c.Disease] == nil {
			byDisease[c.Disease] = make(map[time.Time]int)
		}
		byDisease[c.Disease][day] += c.Count
	}

	var alerts []OutbreakAlert
	for disease, daily := range byDisease {
		if len(daily) < minObservedDays {
			continue
		}
		days := make([]time.Time, 0, len(daily))
		for d := range daily {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		last := days[len(days)-1]
		prev := days[len(days)-2]
		lastCount := daily[last]
		prevCount := daily[prev]
		if lastCount <= 0 || prevCount <= 0 {
			continue
		}

		ratio := math.Round(float64(lastCount)/float64(prevCount)*100) / 100
		if ratio < threshold {
			continue
		}
		alerts = append(alerts, OutbreakAlert{
			Disease:       disease,
			Date:          last,
			Count:         lastCount,
			PreviousCount: prevCount,
			IncreaseRatio: ratio,
			Severity:      ratioSeverity(ratio),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
		}
		if alerts[i].IncreaseRatio != alerts[j].IncreaseRatio {
			return alerts[i].IncreaseRatio > alerts[j].IncreaseRatio
		}
		return alerts[i].Disease < alerts[j].Disease
	})
	if len(alerts) > maxOutbreakAlerts {
		alerts = alerts[:maxOutbreakAlerts]
	}
	if alerts == nil {
		alerts = []OutbreakAlert{}
	}

	return OutbreakReport{
		Alerts:             alerts,
		Threshold:          threshold,
		AnalysisPeriodDays: windowDays,
		GeneratedAt:        time.Now().UTC(),
	}
}

func ratioSeverity(ratio float64) common.RiskLevel {
	switch {
	case ratio >= severityHighRatio:
		return common.RiskHigh
	case ratio >= severityMediumRatio:
		return common.RiskMedium
	default:
		return common.RiskLow
	}
}
