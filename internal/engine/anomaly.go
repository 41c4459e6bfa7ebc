package engine

import (
	"fmt"

	"github.com/gradelens/gradelens/internal/domain"
)

// Detection thresholds for score-distribution anomalies.
const (
	// perfectScoreShare is the fraction of perfect scores above which a
	// subject is flagged. The comparison is strict: exactly 30% does
	// not trigger.
	perfectScoreShare = 0.3

	// lowPassRatePercent is the pass rate below which a subject is
	// flagged. Strictly below: exactly 20% does not trigger.
	lowPassRatePercent = 20.0
)

// detectAnomalies runs the per-subject anomaly checks in subject table
// order. Within one subject the check order is empty, perfect scores,
// zero scores, low pass rate; an empty subject short-circuits the rest.
// The checks are otherwise independent, so a single subject may raise
// several flags.
func detectAnomalies(table *domain.ScoreTable, policy domain.PassPolicy) []domain.Anomaly {
	var anomalies []domain.Anomaly

	for _, subject := range table.Subjects {
		scores := table.AttemptedScores(subject)

		if len(scores) == 0 {
			anomalies = append(anomalies, domain.Anomaly{
				Kind:        domain.AnomalyEmptySubject,
				Subject:     subject,
				Description: fmt.Sprintf("No valid scores found for %s", subject),
			})
			continue
		}

		var perfect, zero, passed int
		threshold := policy.Resolve(subject)
		for _, score := range scores {
			if score == 100 {
				perfect++
			}
			if score == 0 {
				zero++
			}
			if score >= threshold {
				passed++
			}
		}

		if float64(perfect) > float64(len(scores))*perfectScoreShare {
			anomalies = append(anomalies, domain.Anomaly{
				Kind:    domain.AnomalyExcessivePerfectScores,
				Subject: subject,
				Detail:  float64(perfect),
				Description: fmt.Sprintf(
					"Unusually high number of perfect scores in %s (%d students)", subject, perfect),
			})
		}

		if zero > 0 {
			anomalies = append(anomalies, domain.Anomaly{
				Kind:    domain.AnomalyZeroScores,
				Subject: subject,
				Detail:  float64(zero),
				Description: fmt.Sprintf(
					"%d students have zero scores in %s", zero, subject),
			})
		}

		passRate := float64(passed) / float64(len(scores)) * 100
		if passRate < lowPassRatePercent {
			anomalies = append(anomalies, domain.Anomaly{
				Kind:    domain.AnomalyLowPassRate,
				Subject: subject,
				Detail:  passRate,
				Description: fmt.Sprintf(
					"Very low pass rate in %s (%.1f%%)", subject, passRate),
			})
		}
	}

	return anomalies
}
