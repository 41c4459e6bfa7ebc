// Package validate implements the structural gate run before analysis.
// It separates blocking errors, which make the table unfit for the
// engine, from advisory warnings, which never alter the computation.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/gradelens/gradelens/internal/domain"
)

// Score bounds accepted by the gate. The engine itself does not
// re-enforce these; data outside the range is rejected here.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Thresholds for advisory data-quality warnings.
const (
	minMeaningfulRows   = 5
	minScoresPerSubject = 3
	someMissingPercent  = 20.0
	multipleOfFiveShare = 0.8
)

// Result carries the outcome of one validation pass. A table with any
// error must not be handed to the engine; warnings are purely advisory.
type Result struct {
	// Errors lists blocking structural problems.
	Errors []string `json:"errors,omitempty"`

	// Warnings lists non-blocking data-quality concerns.
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether the table may be analyzed.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Validate checks a parsed score table against the structural contract
// the engine assumes: non-empty, unique non-null identifiers, at least
// one subject column with at least one score, and all scores within
// [MinScore, MaxScore].
func Validate(table *domain.ScoreTable) Result {
	var res Result

	if len(table.Students) == 0 {
		res.Errors = append(res.Errors, "The table is empty or contains no student rows.")
		return res
	}

	checkIdentifiers(table, &res)
	checkNames(table, &res)

	if len(table.Subjects) == 0 {
		res.Errors = append(res.Errors,
			"No subject columns found. The table needs at least one subject with numeric scores.")
		return res
	}

	allEmpty := true
	for _, subject := range table.Subjects {
		if len(table.AttemptedScores(subject)) > 0 {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		res.Errors = append(res.Errors,
			"All subject columns are empty. No data available for analysis.")
		return res
	}

	for _, subject := range table.Subjects {
		checkSubject(table, subject, &res)
	}

	if len(table.Students) < minMeaningfulRows {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Dataset contains fewer than %d students. Analysis may not be statistically meaningful.",
			minMeaningfulRows))
	}

	checkStudentsWithoutScores(table, &res)

	return res
}

// checkIdentifiers enforces the non-null and unique ID invariants.
func checkIdentifiers(table *domain.ScoreTable, res *Result) {
	missing := 0
	seen := make(map[string]bool, len(table.Students))
	var duplicates []string

	for _, student := range table.Students {
		if student.ID == "" {
			missing++
			continue
		}
		if seen[student.ID] {
			duplicates = append(duplicates, student.ID)
			continue
		}
		seen[student.ID] = true
	}

	if missing > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Student identifier is missing in %d rows.", missing))
	}
	if len(duplicates) > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Duplicate student identifiers found: %s", strings.Join(duplicates, ", ")))
	}
}

// checkNames reports advisory concerns about the optional display name:
// absent or partially missing names and potential duplicates.
func checkNames(table *domain.ScoreTable, res *Result) {
	missing := 0
	seen := make(map[string]bool, len(table.Students))
	duplicate := false

	for _, student := range table.Students {
		if student.Name == "" {
			missing++
			continue
		}
		if seen[student.Name] {
			duplicate = true
		}
		seen[student.Name] = true
	}

	switch {
	case missing == len(table.Students):
		res.Warnings = append(res.Warnings,
			"No student names present; identifiers will be used as display labels.")
	case missing > 0:
		res.Warnings = append(res.Warnings, "Student name column contains missing values.")
	}
	if duplicate {
		res.Warnings = append(res.Warnings,
			"Potential duplicate student names found. Verify whether these are different students.")
	}
}

// checkSubject validates one subject column: score range as errors, plus
// the advisory distribution checks ported from the intake rules.
func checkSubject(table *domain.ScoreTable, subject string, res *Result) {
	scores := table.AttemptedScores(subject)
	total := len(table.Students)

	if len(scores) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Subject %q has no valid scores.", subject))
		return
	}

	min, max := scores[0], scores[0]
	multiplesOfFive := 0
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		if math.Mod(s, 5) == 0 {
			multiplesOfFive++
		}
	}

	if min < MinScore {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Subject %q contains scores below %g: minimum value is %g", subject, MinScore, min))
	}
	if max > MaxScore {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Subject %q contains scores above %g: maximum value is %g", subject, MaxScore, max))
	}

	if min == max {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Subject %q has identical scores for all students (%g)", subject, min))
	}

	missingPercent := float64(total-len(scores)) / float64(total) * 100
	if missingPercent > someMissingPercent {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Subject %q has %.1f%% missing values", subject, missingPercent))
	}

	if len(scores) < minScoresPerSubject {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Subject %q has fewer than %d valid scores", subject, minScoresPerSubject))
	}

	if float64(multiplesOfFive) > float64(len(scores))*multipleOfFiveShare {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Subject %q has an unusually high number of scores that are multiples of 5", subject))
	}
}

// checkStudentsWithoutScores warns when rows carry no scores at all.
func checkStudentsWithoutScores(table *domain.ScoreTable, res *Result) {
	count := 0
	for _, student := range table.Students {
		if len(student.Scores) == 0 {
			count++
		}
	}
	if count > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d students have no scores in any subject", count))
	}
}
