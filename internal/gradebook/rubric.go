// Package gradebook holds the scoring rules of the gradebook: rubric
// normalisation, quiz scoring, category aggregation and weight settings.
// Everything here is pure; callers load the rows and hand them in.
package gradebook

const (
	RubricSubScoreMax = 10.0
	RubricMax         = 3 * RubricSubScoreMax

	DefaultAssignmentPoints = 30.0
	DefaultQuizPoints       = 100.0
)

type RubricScores struct {
	Completion *float64
	Thinking   *float64
	Workflow   *float64
}

// Complete reports whether all three sub-scores are graded.
func (r RubricScores) Complete() bool {
	return r.Completion != nil && r.Thinking != nil && r.Workflow != nil
}

func (r RubricScores) Sum() float64 {
	if !r.Complete() {
		return 0
	}
	return *r.Completion + *r.Thinking + *r.Workflow
}

// Item is one included earned/possible pair.
type Item struct {
	ID       string
	Earned   float64
	Possible float64
}

func (i Item) Percent() float64 {
	return 100 * i.Earned / i.Possible
}

func AssignmentPossible(pointsPossible *float64) float64 {
	if pointsPossible == nil {
		return DefaultAssignmentPoints
	}
	return *pointsPossible
}

// NormalizeAssignment scales a rubric onto the assignment's point value.
// The second return is false when the assignment must be left out for the
// student: an incomplete rubric or a non-positive point value.
func NormalizeAssignment(id string, scores RubricScores, pointsPossible *float64) (Item, bool) {
	if !scores.Complete() {
		return Item{}, false
	}

	possible := AssignmentPossible(pointsPossible)
	if possible <= 0 {
		return Item{}, false
	}

	return Item{
		ID:       id,
		Earned:   scores.Sum() / RubricMax * possible,
		Possible: possible,
	}, true
}
