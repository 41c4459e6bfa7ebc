package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPassPolicy_Resolve verifies override lookup with default fallback
// and that resolution is a pure function of the policy state.
func TestPassPolicy_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		overrides map[string]float64
		subject   string
		want      float64
	}{
		{
			name:      "unknown subject falls back to default",
			threshold: 40,
			overrides: map[string]float64{"Mathematics": 50},
			subject:   "Physics",
			want:      40,
		},
		{
			name:      "override takes precedence over default",
			threshold: 40,
			overrides: map[string]float64{"Mathematics": 50},
			subject:   "Mathematics",
			want:      50,
		},
		{
			name:      "nil overrides always resolve to default",
			threshold: 35,
			subject:   "Chemistry",
			want:      35,
		},
		{
			name:      "zero override is honored, not treated as unset",
			threshold: 40,
			overrides: map[string]float64{"Workshop": 0},
			subject:   "Workshop",
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewPassPolicy(tt.threshold, tt.overrides)

			assert.Equal(t, tt.want, policy.Resolve(tt.subject))
			// Resolution has no side effects; repeated calls agree.
			assert.Equal(t, tt.want, policy.Resolve(tt.subject))
		})
	}
}

// TestPassPolicy_SetOverrides verifies that overrides are replaced
// wholesale rather than merged.
func TestPassPolicy_SetOverrides(t *testing.T) {
	policy := NewPassPolicy(40, map[string]float64{
		"Mathematics": 50,
		"Physics":     45,
	})

	policy.SetOverrides(map[string]float64{"Chemistry": 60})

	assert.Equal(t, 60.0, policy.Resolve("Chemistry"))
	// The old Mathematics and Physics thresholds must not linger.
	assert.Equal(t, 40.0, policy.Resolve("Mathematics"))
	assert.Equal(t, 40.0, policy.Resolve("Physics"))
}

// TestPassPolicy_CopiesOverrides verifies that the policy is insulated
// from mutation of the caller's map.
func TestPassPolicy_CopiesOverrides(t *testing.T) {
	overrides := map[string]float64{"Mathematics": 50}
	policy := NewPassPolicy(40, overrides)

	overrides["Mathematics"] = 99

	assert.Equal(t, 50.0, policy.Resolve("Mathematics"))

	got := policy.Overrides()
	got["Mathematics"] = 11
	assert.Equal(t, 50.0, policy.Resolve("Mathematics"))
}

// TestStudent_DisplayName verifies the name-to-ID fallback.
func TestStudent_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", Student{ID: "S001", Name: "Ada"}.DisplayName())
	assert.Equal(t, "S001", Student{ID: "S001"}.DisplayName())
}

// TestScoreTable_AttemptedScores verifies that missing scores are skipped
// and row order is preserved.
func TestScoreTable_AttemptedScores(t *testing.T) {
	table := &ScoreTable{
		Subjects: []string{"Mathematics"},
		Students: []Student{
			{ID: "S1", Scores: map[string]float64{"Mathematics": 85}},
			{ID: "S2", Scores: map[string]float64{}},
			{ID: "S3", Scores: map[string]float64{"Mathematics": 40}},
		},
	}

	assert.Equal(t, []float64{85, 40}, table.AttemptedScores("Mathematics"))
	assert.Nil(t, table.AttemptedScores("Physics"))
}
