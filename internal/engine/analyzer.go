// Package engine implements the analysis core: per-subject statistics,
// pass/fail aggregation under a configurable pass policy, student
// ranking, and anomaly detection over an in-memory score table.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/gradelens/gradelens/internal/domain"
)

// Analyzer computes an AnalysisReport from a ScoreTable and a PassPolicy.
//
// The analyzer is stateless and purely synchronous: Analyze performs no
// I/O, holds no state between calls, and completes in a single pass
// proportional to rows x subjects. It is safe for concurrent use provided
// each caller passes its own table and policy. Thresholds are read from
// the policy on every call and never cached, so policy updates between
// calls take effect on the next analysis.
//
// Analyze assumes its input already passed the structural validation
// gate. It is total over any such table: empty tables, empty subjects,
// and students without scores produce well-defined zero values rather
// than errors.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer ready for use.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze builds a fresh report from the table's current contents and the
// policy's current thresholds. The returned report holds no reference
// back to the table and must not be mutated afterwards.
func (a *Analyzer) Analyze(table *domain.ScoreTable, policy domain.PassPolicy) *domain.AnalysisReport {
	report := &domain.AnalysisReport{
		ID:               uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		TotalStudents:    len(table.Students),
		TotalSubjects:    len(table.Subjects),
		SubjectStats:     make(map[string]domain.SubjectStats),
		DefaultThreshold: policy.DefaultThreshold(),
		Overrides:        policy.Overrides(),
	}

	for _, subject := range table.Subjects {
		stats, ok := subjectStats(table, subject, policy.Resolve(subject))
		if !ok {
			continue
		}
		report.SubjectOrder = append(report.SubjectOrder, subject)
		report.SubjectStats[subject] = stats
	}

	report.RankedStudents = rankStudents(table, policy)
	if len(report.RankedStudents) > 0 {
		top := report.RankedStudents[0]
		report.OverallTopStudent = &top
	}

	report.StudentsPassedAll = countPassedAll(table, policy)
	report.StudentsFailedAny = report.TotalStudents - report.StudentsPassedAll
	if report.TotalStudents > 0 {
		report.DepartmentPassRate = float64(report.StudentsPassedAll) / float64(report.TotalStudents) * 100
	}

	report.AverageScore = pooledAverage(table)
	report.Anomalies = detectAnomalies(table, policy)

	return report
}

// subjectStats computes the aggregate figures for one subject over its
// attempted scores. The second return value is false when no student
// attempted the subject; such subjects get no statistics entry and are
// surfaced as anomalies instead.
func subjectStats(table *domain.ScoreTable, subject string, threshold float64) (domain.SubjectStats, bool) {
	stats := domain.SubjectStats{Threshold: threshold}

	var sum float64
	for _, student := range table.Students {
		score, ok := student.Score(subject)
		if !ok {
			continue
		}

		if stats.Attempted == 0 {
			stats.Max, stats.Min = score, score
			stats.Topper = domain.Topper{Name: student.DisplayName(), Score: score}
		} else {
			// Strict > keeps the first occurrence in table order as
			// topper when scores tie at the maximum.
			if score > stats.Max {
				stats.Max = score
				stats.Topper = domain.Topper{Name: student.DisplayName(), Score: score}
			}
			if score < stats.Min {
				stats.Min = score
			}
		}

		stats.Attempted++
		sum += score
		if score >= threshold {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}

	if stats.Attempted == 0 {
		return domain.SubjectStats{}, false
	}

	stats.Mean = sum / float64(stats.Attempted)
	stats.PassRate = float64(stats.Passed) / float64(stats.Attempted) * 100
	stats.FailRate = float64(stats.Failed) / float64(stats.Attempted) * 100
	return stats, true
}

// pooledAverage returns the mean over every attempted score across all
// students and subjects as one flat pool, or 0 for an empty pool. This is
// deliberately not an average of per-subject averages.
func pooledAverage(table *domain.ScoreTable) float64 {
	var sum float64
	var count int
	for _, subject := range table.Subjects {
		for _, student := range table.Students {
			if score, ok := student.Score(subject); ok {
				sum += score
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// passedAll reports whether every score the student actually has meets
// its subject's threshold. A student with no attempted scores never
// passes all subjects.
func passedAll(student domain.Student, subjects []string, policy domain.PassPolicy) bool {
	attempted := 0
	for _, subject := range subjects {
		score, ok := student.Score(subject)
		if !ok {
			continue
		}
		attempted++
		if score < policy.Resolve(subject) {
			return false
		}
	}
	return attempted > 0
}

// countPassedAll counts students satisfying the passed-all predicate.
func countPassedAll(table *domain.ScoreTable, policy domain.PassPolicy) int {
	count := 0
	for _, student := range table.Students {
		if passedAll(student, table.Subjects, policy) {
			count++
		}
	}
	return count
}
