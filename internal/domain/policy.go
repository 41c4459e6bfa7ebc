package domain

// PassPolicy resolves the minimum passing score for a subject. A subject
// with a configured override uses it; every other subject falls back to
// the default threshold.
//
// Resolve is a pure function of the policy's current state. The engine
// reads the policy at the start of every analysis and never caches
// resolved thresholds across calls, so a caller may update overrides
// between calls and the next analysis observes the new values.
type PassPolicy struct {
	defaultThreshold float64
	overrides        map[string]float64
}

// NewPassPolicy creates a policy with the given default threshold and
// per-subject overrides. The override map is copied; later mutation of
// the argument does not affect the policy.
func NewPassPolicy(defaultThreshold float64, overrides map[string]float64) PassPolicy {
	p := PassPolicy{defaultThreshold: defaultThreshold}
	p.SetOverrides(overrides)
	return p
}

// Resolve returns the passing threshold for subject. Unknown subjects
// fall back to the default threshold; there are no error conditions.
func (p PassPolicy) Resolve(subject string) float64 {
	if v, ok := p.overrides[subject]; ok {
		return v
	}
	return p.defaultThreshold
}

// SetOverrides replaces the override mapping wholesale. It is not merged
// with the previous mapping, so a threshold for a subject removed from
// configuration does not linger.
func (p *PassPolicy) SetOverrides(overrides map[string]float64) {
	m := make(map[string]float64, len(overrides))
	for k, v := range overrides {
		m[k] = v
	}
	p.overrides = m
}

// DefaultThreshold returns the fallback passing threshold.
func (p PassPolicy) DefaultThreshold() float64 { return p.defaultThreshold }

// Overrides returns a copy of the per-subject override mapping.
func (p PassPolicy) Overrides() map[string]float64 {
	m := make(map[string]float64, len(p.overrides))
	for k, v := range p.overrides {
		m[k] = v
	}
	return m
}
