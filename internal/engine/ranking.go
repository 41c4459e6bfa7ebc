package engine

import (
	"sort"

	"github.com/gradelens/gradelens/internal/domain"
)

// rankStudents orders students by the mean of their own attempted scores,
// descending. The sort is stable, so students with identical means keep
// their original table order. Students with no attempted scores are
// excluded from the ranking entirely rather than given a zero mean.
func rankStudents(table *domain.ScoreTable, policy domain.PassPolicy) []domain.RankedStudent {
	var ranked []domain.RankedStudent

	for _, student := range table.Students {
		var sum float64
		var taken int
		for _, subject := range table.Subjects {
			if score, ok := student.Score(subject); ok {
				sum += score
				taken++
			}
		}
		if taken == 0 {
			continue
		}

		ranked = append(ranked, domain.RankedStudent{
			ID:            student.ID,
			Name:          student.DisplayName(),
			Mean:          sum / float64(taken),
			SubjectsTaken: taken,
			PassedAll:     passedAll(student, table.Subjects, policy),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Mean > ranked[j].Mean
	})

	return ranked
}
