package analysis

import "github.com/yungbote/toxicity-backend/internal/pkg/envutil"

// ProgressPolicy smooths the progress shown to pollers while a workflow is
// still running. It is a UX estimate, not a measurement: each "still
// running" poll advances progress by Step up to Cap, and only a real
// completion signal moves it to 1.0.
type ProgressPolicy struct {
	Step float64
	Cap  float64
}

func LoadProgressPolicy() ProgressPolicy {
	p := ProgressPolicy{
		Step: envutil.Float("PROGRESS_STEP", 0.05),
		Cap:  envutil.Float("PROGRESS_CAP", 0.9),
	}
	if p.Step <= 0 {
		p.Step = 0.05
	}
	if p.Cap <= 0 || p.Cap >= 1 {
		p.Cap = 0.9
	}
	return p
}

// Advance returns the next estimate. It never regresses and never reaches
// 1.0 on its own.
func (p ProgressPolicy) Advance(current float64) float64 {
	next := current + p.Step
	if next > p.Cap {
		next = p.Cap
	}
	if next < current {
		return current
	}
	return next
}
