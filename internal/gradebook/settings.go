package gradebook

import (
	"fmt"
	"math"

	"github.com/RubachokBoss/classroom-gradebook/internal/models"
)

const WeightTotal = 100

type Settings struct {
	UseWeights        bool
	AssignmentsWeight int
	QuizzesWeight     int
}

func DefaultSettings() Settings {
	return Settings{
		UseWeights:        false,
		AssignmentsWeight: 70,
		QuizzesWeight:     30,
	}
}

// Resolve returns the stored settings, or defaults when nothing is stored.
// The bool reports whether defaults were used.
func Resolve(stored *Settings, defaults Settings) (Settings, bool) {
	if stored == nil {
		return defaults, true
	}
	return *stored, false
}

// SettingsPatch is a partial settings write. Weights are floats so that a
// fractional value can be reported instead of silently truncated.
type SettingsPatch struct {
	UseWeights        *bool
	AssignmentsWeight *float64
	QuizzesWeight     *float64
}

func (p SettingsPatch) Empty() bool {
	return p.UseWeights == nil && p.AssignmentsWeight == nil && p.QuizzesWeight == nil
}

// Apply validates the patch against current and returns the merged settings.
// current is never modified; on error the returned settings are zero.
// The merged weights always have to add up to WeightTotal.
func (s Settings) Apply(p SettingsPatch) (Settings, error) {
	verr := &models.ValidationError{}
	next := s

	if p.UseWeights != nil {
		next.UseWeights = *p.UseWeights
	}

	if p.AssignmentsWeight != nil {
		if w, msg := checkWeight("assignments_weight", *p.AssignmentsWeight); msg != "" {
			verr.Add("assignments_weight", msg)
		} else {
			next.AssignmentsWeight = w
		}
	}

	if p.QuizzesWeight != nil {
		if w, msg := checkWeight("quizzes_weight", *p.QuizzesWeight); msg != "" {
			verr.Add("quizzes_weight", msg)
		} else {
			next.QuizzesWeight = w
		}
	}

	if verr.HasErrors() {
		return Settings{}, verr
	}

	if sum := next.AssignmentsWeight + next.QuizzesWeight; sum != WeightTotal {
		return Settings{}, models.NewValidationError(
			"weights",
			fmt.Sprintf("assignments_weight and quizzes_weight must sum to %d (got %d)", WeightTotal, sum),
		)
	}

	return next, nil
}

func checkWeight(field string, v float64) (int, string) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Sprintf("%s must be an integer", field)
	}
	if v < 0 || v > WeightTotal {
		return 0, fmt.Sprintf("%s must be between 0 and %d", field, WeightTotal)
	}
	return int(v), ""
}
