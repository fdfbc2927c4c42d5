package gradebook

type CategoryStatus string

const (
	StatusComputed CategoryStatus = "computed"
	StatusNoData   CategoryStatus = "no_data"
)

type CategoryResult struct {
	Status   CategoryStatus
	Percent  *float64
	Items    int
	Earned   float64
	Possible float64
}

func summarize(items []Item) CategoryResult {
	if len(items) == 0 {
		return CategoryResult{Status: StatusNoData}
	}

	var earned, possible float64
	for _, it := range items {
		earned += it.Earned
		possible += it.Possible
	}

	percent := 100 * earned / possible
	return CategoryResult{
		Status:   StatusComputed,
		Percent:  &percent,
		Items:    len(items),
		Earned:   earned,
		Possible: possible,
	}
}

type Result struct {
	Assignments CategoryResult
	Quizzes     CategoryResult
	Final       *float64
}

// Aggregate combines one student's included items into category percents
// and a final percent.
//
// Weighted mode blends the category percents and renormalises the weights
// over the categories that have data. Unweighted mode is the flat mean of
// every item percent, so a category with more items pulls harder.
func Aggregate(assignments, quizzes []Item, settings Settings) Result {
	res := Result{
		Assignments: summarize(assignments),
		Quizzes:     summarize(quizzes),
	}

	if settings.UseWeights {
		res.Final = weighted(res.Assignments.Percent, res.Quizzes.Percent, settings)
	} else {
		res.Final = itemMean(assignments, quizzes)
	}

	return res
}

func weighted(assignments, quizzes *float64, s Settings) *float64 {
	switch {
	case assignments == nil && quizzes == nil:
		return nil
	case quizzes == nil:
		v := *assignments
		return &v
	case assignments == nil:
		v := *quizzes
		return &v
	}

	aw := float64(s.AssignmentsWeight)
	qw := float64(s.QuizzesWeight)
	if aw+qw <= 0 {
		v := (*assignments + *quizzes) / 2
		return &v
	}

	v := (*assignments*aw + *quizzes*qw) / (aw + qw)
	return &v
}

func itemMean(groups ...[]Item) *float64 {
	var sum float64
	n := 0
	for _, items := range groups {
		for _, it := range items {
			sum += it.Percent()
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}
