package gradebook

type ScoreKind int

const (
	Excluded ScoreKind = iota
	Override
	Computed
)

func (k ScoreKind) String() string {
	switch k {
	case Override:
		return "override"
	case Computed:
		return "computed"
	default:
		return "excluded"
	}
}

// Scored is the outcome of scoring one quiz for one student. For Override
// Value holds earned points, for Computed it holds the correct ratio in
// [0, 1]. Excluded carries no value and never counts as zero.
type Scored struct {
	Kind  ScoreKind
	Value float64
}

func ExcludedScore() Scored               { return Scored{Kind: Excluded} }
func OverrideScore(points float64) Scored { return Scored{Kind: Override, Value: points} }
func ComputedScore(ratio float64) Scored  { return Scored{Kind: Computed, Value: ratio} }

// Earned converts the score into points out of possible.
func (s Scored) Earned(possible float64) (float64, bool) {
	switch s.Kind {
	case Override:
		return s.Value, true
	case Computed:
		return s.Value * possible, true
	default:
		return 0, false
	}
}

type Question struct {
	ID            string
	CorrectOption *int
}

type Quiz struct {
	ID             string
	PointsPossible *float64
	IncludeInFinal bool
	Questions      []Question
}

func (q Quiz) Possible() float64 {
	if q.PointsPossible == nil {
		return DefaultQuizPoints
	}
	return *q.PointsPossible
}

// ScorableCount is the number of questions with a defined correct option.
func (q Quiz) ScorableCount() int {
	n := 0
	for _, question := range q.Questions {
		if question.CorrectOption != nil {
			n++
		}
	}
	return n
}

// ScoreQuiz scores a quiz for one student. selected maps question id to the
// chosen option; override is the teacher-entered score, if any.
func ScoreQuiz(q Quiz, selected map[string]int, override *float64) Scored {
	if !q.IncludeInFinal {
		return ExcludedScore()
	}

	if override != nil {
		return OverrideScore(*override)
	}

	scorable := 0
	correct := 0
	for _, question := range q.Questions {
		if question.CorrectOption == nil {
			continue
		}
		scorable++
		if choice, ok := selected[question.ID]; ok && choice == *question.CorrectOption {
			correct++
		}
	}

	if scorable == 0 {
		return ExcludedScore()
	}

	return ComputedScore(float64(correct) / float64(scorable))
}

// QuizItem turns a score into an aggregation item.
func QuizItem(q Quiz, s Scored) (Item, bool) {
	possible := q.Possible()
	if possible <= 0 {
		return Item{}, false
	}

	earned, ok := s.Earned(possible)
	if !ok {
		return Item{}, false
	}

	return Item{ID: q.ID, Earned: earned, Possible: possible}, true
}
