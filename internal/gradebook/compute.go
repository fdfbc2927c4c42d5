package gradebook

import (
	"sort"
	"strings"
)

type Student struct {
	ID          string
	DisplayName string
	Email       string
}

// SortName is the name a student is ordered by: display name, or email
// when no display name is set.
func (s Student) SortName() string {
	if name := strings.TrimSpace(s.DisplayName); name != "" {
		return name
	}
	return s.Email
}

type Assignment struct {
	ID             string
	PointsPossible *float64
	IncludeInFinal bool
}

// Key addresses one item for one student.
type Key struct {
	ItemID    string
	StudentID string
}

// Inputs is everything a classroom gradebook is computed from. Assignments
// must already be limited to non-draft ones.
type Inputs struct {
	Students    []Student
	Assignments []Assignment
	Rubrics     map[Key]RubricScores
	Quizzes     []Quiz
	Responses   map[Key]map[string]int // (quiz, student) -> question -> selected option
	Overrides   map[Key]float64        // (quiz, student) -> score
	Settings    Settings
}

type StudentResult struct {
	Student
	Result
}

// Compute grades every student in in.Students and returns the results
// sorted by SortName, then email, then id.
func Compute(in Inputs) []StudentResult {
	results := make([]StudentResult, 0, len(in.Students))
	for _, st := range in.Students {
		results = append(results, StudentResult{
			Student: st,
			Result:  ComputeStudent(in, st.ID),
		})
	}

	SortResults(results)
	return results
}

func ComputeStudent(in Inputs, studentID string) Result {
	var assignments []Item
	for _, a := range in.Assignments {
		if !a.IncludeInFinal {
			continue
		}
		scores, ok := in.Rubrics[Key{ItemID: a.ID, StudentID: studentID}]
		if !ok {
			continue
		}
		if item, ok := NormalizeAssignment(a.ID, scores, a.PointsPossible); ok {
			assignments = append(assignments, item)
		}
	}

	var quizzes []Item
	for _, q := range in.Quizzes {
		key := Key{ItemID: q.ID, StudentID: studentID}

		var override *float64
		if v, ok := in.Overrides[key]; ok {
			override = &v
		}

		scored := ScoreQuiz(q, in.Responses[key], override)
		if item, ok := QuizItem(q, scored); ok {
			quizzes = append(quizzes, item)
		}
	}

	return Aggregate(assignments, quizzes, in.Settings)
}

func SortResults(results []StudentResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return lessStudent(results[i].Student, results[j].Student)
	})
}

func SortStudents(students []Student) {
	sort.SliceStable(students, func(i, j int) bool {
		return lessStudent(students[i], students[j])
	})
}

func lessStudent(a, b Student) bool {
	an, bn := strings.ToLower(a.SortName()), strings.ToLower(b.SortName())
	if an != bn {
		return an < bn
	}
	ae, be := strings.ToLower(a.Email), strings.ToLower(b.Email)
	if ae != be {
		return ae < be
	}
	return a.ID < b.ID
}
