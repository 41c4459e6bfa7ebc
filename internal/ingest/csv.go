// Package ingest parses tabular score data into the domain's ScoreTable.
// It classifies columns into identity and subject columns and performs
// lenient numeric coercion; range and uniqueness checks belong to the
// validation gate, not to ingestion.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/gradelens/gradelens/internal/domain"
)

// Errors returned when the input cannot be shaped into a score table.
var (
	// ErrEmptyInput is returned for input without a header row.
	ErrEmptyInput = errors.New("input contains no header row")

	// ErrMissingIDColumn is returned when no identifier column is found.
	ErrMissingIDColumn = errors.New("no student identifier column found")

	// ErrDuplicateColumn is returned when two columns normalize to the
	// same name, which would silently merge their scores.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Header spellings recognized as identity columns after normalization.
// Every other column is a subject column.
var (
	idHeaders   = map[string]bool{"student_id": true, "id": true}
	nameHeaders = map[string]bool{"student_name": true, "name": true}
	regHeaders  = map[string]bool{"registration_number": true, "reg_number": true, "reg_no": true}
)

// missingValues are cell spellings treated as "not attempted".
var missingValues = map[string]bool{"": true, "na": true, "n/a": true, "null": true}

// suggestionDistance caps how far a header may be from "student_id" to
// still be offered as a likely misspelling.
const suggestionDistance = 3

// ParseCSV reads comma-separated score data into a ScoreTable. The first
// row is the header; one identity column matching student_id or id is
// required, name and registration-number columns are optional, and every
// remaining column is a subject in header order. Empty and N/A-style
// cells become missing scores; any other non-numeric cell is an error.
func ParseCSV(r io.Reader) (*domain.ScoreTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	layout, err := classifyColumns(headers)
	if err != nil {
		return nil, err
	}

	table := &domain.ScoreTable{Subjects: layout.subjects}
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum+1, err)
		}
		rowNum++

		student := domain.Student{Scores: make(map[string]float64)}
		for i, raw := range row {
			if i >= len(headers) {
				break
			}
			value := strings.TrimSpace(raw)

			switch {
			case i == layout.idCol:
				student.ID = value
			case i == layout.nameCol:
				student.Name = value
			case i == layout.regCol:
				// Registration numbers are carried nowhere in the
				// analysis; the column is only excluded from subjects.
			default:
				subject := layout.subjectByCol[i]
				if missingValues[strings.ToLower(value)] {
					continue
				}
				score, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf(
						"row %d: subject %q: non-numeric value %q", rowNum, subject, raw)
				}
				student.Scores[subject] = score
			}
		}
		table.Students = append(table.Students, student)
	}

	return table, nil
}

// ParseCSVFile reads a score table from a file on disk.
func ParseCSVFile(path string) (*domain.ScoreTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// columnLayout records which column index plays which role. Index -1
// means the role is absent.
type columnLayout struct {
	idCol, nameCol, regCol int
	subjects               []string
	subjectByCol           map[int]string
}

func classifyColumns(headers []string) (columnLayout, error) {
	layout := columnLayout{
		idCol:        -1,
		nameCol:      -1,
		regCol:       -1,
		subjectByCol: make(map[int]string),
	}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		key := toSnakeCase(name)
		if seen[key] {
			return layout, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[key] = true

		switch {
		case idHeaders[key] && layout.idCol < 0:
			layout.idCol = i
		case nameHeaders[key] && layout.nameCol < 0:
			layout.nameCol = i
		case regHeaders[key] && layout.regCol < 0:
			layout.regCol = i
		default:
			layout.subjects = append(layout.subjects, name)
			layout.subjectByCol[i] = name
		}
	}

	if layout.idCol < 0 {
		if near := nearestIDHeader(headers); near != "" {
			return layout, fmt.Errorf("%w (did you mean %q?)", ErrMissingIDColumn, near)
		}
		return layout, ErrMissingIDColumn
	}
	return layout, nil
}

// nearestIDHeader returns the header closest to "student_id" within the
// suggestion distance, or "" when nothing is plausibly a misspelling.
func nearestIDHeader(headers []string) string {
	best := ""
	bestDist := suggestionDistance + 1
	for _, h := range headers {
		d := levenshtein.ComputeDistance(toSnakeCase(strings.TrimSpace(h)), "student_id")
		if d < bestDist {
			bestDist = d
			best = strings.TrimSpace(h)
		}
	}
	return best
}

// toSnakeCase normalizes "Student ID" to "student_id" for header matching.
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
