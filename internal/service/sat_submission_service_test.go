package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/event"
	"github.com/lshigami/testhall/internal/model"
)

// seedSatTest stores a test with two math questions and one verbal question.
func (f *fixture) seedSatTest(t *testing.T) *model.SatTest {
	t.Helper()
	test := &model.SatTest{
		Name: "SAT practice",
		Questions: []model.SatQuestion{
			{Section: "math", Text: "1+1?", Type: "single", OrderInTest: 1, AnswerOptions: []model.SatAnswerOption{
				{Text: "2", IsCorrect: true}, {Text: "3"},
			}},
			{Section: "math", Text: "3*3?", Type: "single", OrderInTest: 2, AnswerOptions: []model.SatAnswerOption{
				{Text: "9", IsCorrect: true}, {Text: "6"},
			}},
			{Section: "verbal", Text: "Synonym of big", Type: "single", OrderInTest: 1, AnswerOptions: []model.SatAnswerOption{
				{Text: "large", IsCorrect: true}, {Text: "tiny"},
			}},
		},
	}
	if err := f.db.Create(test).Error; err != nil {
		t.Fatalf("seed sat test: %v", err)
	}
	return test
}

func (f *fixture) addDeadline(t *testing.T, satTestID, groupID uint, opens, due time.Time) {
	t.Helper()
	if err := f.db.Create(&model.Deadline{SatTestID: satTestID, GroupID: groupID, Opens: opens, Due: due}).Error; err != nil {
		t.Fatalf("seed deadline: %v", err)
	}
}

func satOption(q model.SatQuestion, i int) dto.SatAnswerItemDTO {
	return dto.SatAnswerItemDTO{QuestionID: q.ID, OptionID: dto.AnswerValue(fmt.Sprint(q.AnswerOptions[i].ID))}
}

func questionBySection(test *model.SatTest, section string, order int) model.SatQuestion {
	for _, q := range test.Questions {
		if q.Section == section && q.OrderInTest == order {
			return q
		}
	}
	panic("question not seeded")
}

func TestSubmitSatTest_SectionScores(t *testing.T) {
	f := newFixture(t)
	test := f.seedSatTest(t)
	f.addMember(t, 3, student.UserID)
	f.addDeadline(t, test.ID, 3, fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour))
	svc := f.satSubmissions()

	res, err := svc.SubmitSatTest(student, test.ID, dto.SatTestSubmitDTO{Answers: map[string][]dto.SatAnswerItemDTO{
		"math": {
			satOption(questionBySection(test, "math", 1), 0),
			satOption(questionBySection(test, "math", 2), 1),
		},
		"verbal": {satOption(questionBySection(test, "verbal", 1), 1)},
	}})
	if err != nil {
		t.Fatalf("SubmitSatTest: %v", err)
	}
	want := map[string]int{"math": 1, "verbal": 0, TotalScoreKey: 1}
	for k, v := range want {
		if res.Scores[k] != v {
			t.Errorf("scores[%s] = %d, want %d (all: %v)", k, res.Scores[k], v, res.Scores)
		}
	}
	if len(res.Scores) != len(want) {
		t.Errorf("scores = %v, want %v", res.Scores, want)
	}

	var attempt model.SatAttempt
	if err := f.db.First(&attempt, res.AttemptID).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.TotalScore != 1 || !attempt.StartTime.Equal(fixedNow) {
		t.Errorf("stored attempt = %+v", attempt)
	}
	if len(f.publisher.keys) != 1 || f.publisher.keys[0] != event.RoutingSatTestSubmitted {
		t.Errorf("published %v", f.publisher.keys)
	}
	if f.publisher.events[0].Sections["math"] != 1 {
		t.Errorf("event sections = %v", f.publisher.events[0].Sections)
	}
}

func TestSubmitSatTest_Window(t *testing.T) {
	answers := func(test *model.SatTest) dto.SatTestSubmitDTO {
		return dto.SatTestSubmitDTO{Answers: map[string][]dto.SatAnswerItemDTO{
			"math": {satOption(questionBySection(test, "math", 1), 0)},
		}}
	}

	t.Run("no deadline", func(t *testing.T) {
		f := newFixture(t)
		test := f.seedSatTest(t)
		_, err := f.satSubmissions().SubmitSatTest(student, test.ID, answers(test))
		assertKind(t, err, KindPolicy, ErrNoDeadline)
	})

	t.Run("expired", func(t *testing.T) {
		f := newFixture(t)
		test := f.seedSatTest(t)
		f.addMember(t, 3, student.UserID)
		f.addDeadline(t, test.ID, 3, fixedNow.Add(-48*time.Hour), fixedNow.Add(-24*time.Hour))
		_, err := f.satSubmissions().SubmitSatTest(student, test.ID, answers(test))
		assertKind(t, err, KindPolicy, ErrExpired)
	})

	t.Run("not yet open", func(t *testing.T) {
		f := newFixture(t)
		test := f.seedSatTest(t)
		f.addMember(t, 3, student.UserID)
		f.addDeadline(t, test.ID, 3, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
		_, err := f.satSubmissions().SubmitSatTest(student, test.ID, answers(test))
		assertKind(t, err, KindPolicy, ErrNotYetOpen)
	})

	t.Run("falls back to the test window", func(t *testing.T) {
		f := newFixture(t)
		test := f.seedSatTest(t)
		if err := f.db.Model(test).Updates(map[string]interface{}{
			"opens": fixedNow.Add(-time.Hour),
			"due":   fixedNow.Add(time.Hour),
		}).Error; err != nil {
			t.Fatalf("update window: %v", err)
		}
		if _, err := f.satSubmissions().SubmitSatTest(student, test.ID, answers(test)); err != nil {
			t.Fatalf("SubmitSatTest: %v", err)
		}
	})

	t.Run("staff bypass", func(t *testing.T) {
		f := newFixture(t)
		test := f.seedSatTest(t)
		if _, err := f.satSubmissions().SubmitSatTest(teacher, test.ID, answers(test)); err != nil {
			t.Fatalf("SubmitSatTest: %v", err)
		}
	})

	t.Run("unknown test and empty answers", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.satSubmissions().SubmitSatTest(student, 999, dto.SatTestSubmitDTO{Answers: map[string][]dto.SatAnswerItemDTO{
			"math": {{QuestionID: 1, OptionID: "1"}},
		}})
		assertKind(t, err, KindNotFound, ErrSatTestNotFound)

		_, err = f.satSubmissions().SubmitSatTest(student, 999, dto.SatTestSubmitDTO{Answers: map[string][]dto.SatAnswerItemDTO{}})
		assertKind(t, err, KindValidation, ErrEmptyAnswers)
	})
}

func TestGetAttemptAnswers_IsPureAndScoped(t *testing.T) {
	f := newFixture(t)
	test := f.seedSatTest(t)
	svc := f.satSubmissions()
	res, err := svc.SubmitSatTest(teacher, test.ID, dto.SatTestSubmitDTO{Answers: map[string][]dto.SatAnswerItemDTO{
		"verbal": {satOption(questionBySection(test, "verbal", 1), 0)},
	}})
	if err != nil {
		t.Fatalf("SubmitSatTest: %v", err)
	}

	var before model.SatAttempt
	f.db.First(&before, res.AttemptID)

	review, err := svc.GetAttemptAnswers(teacher, res.AttemptID, teacher.UserID)
	if err != nil {
		t.Fatalf("GetAttemptAnswers: %v", err)
	}
	if review.Scores["verbal"] != 1 || review.Scores["math"] != 0 || review.Scores[TotalScoreKey] != 1 {
		t.Errorf("scores = %v", review.Scores)
	}
	if review.Attempt.TotalScore != 1 {
		t.Errorf("attempt total = %d", review.Attempt.TotalScore)
	}
	if len(review.SatTest.SatQuestions) != 3 {
		t.Fatalf("questions = %d, want 3", len(review.SatTest.SatQuestions))
	}
	answered := 0
	for _, q := range review.SatTest.SatQuestions {
		if q.StudentAnswer != nil {
			answered++
			if !q.IsCorrect {
				t.Errorf("answered question %d not marked correct", q.ID)
			}
		}
	}
	if answered != 1 {
		t.Errorf("answered questions = %d, want 1", answered)
	}
	body, _ := json.Marshal(review)
	if !strings.Contains(string(body), `"sat_test"`) || !strings.Contains(string(body), `"sat_questions"`) {
		t.Errorf("unexpected shape: %s", body)
	}

	var after model.SatAttempt
	f.db.First(&after, res.AttemptID)
	if !after.UpdatedAt.Equal(before.UpdatedAt) || after.TotalScore != before.TotalScore {
		t.Errorf("reading an attempt modified it: before %+v after %+v", before, after)
	}

	_, err = svc.GetAttemptAnswers(student, res.AttemptID, teacher.UserID)
	assertKind(t, err, KindForbidden, ErrNotOwner)

	_, err = svc.GetAttemptAnswers(teacher, res.AttemptID, student.UserID)
	assertKind(t, err, KindNotFound, ErrAttemptNotFound)

	_, err = svc.GetAttemptAnswers(teacher, 999, teacher.UserID)
	assertKind(t, err, KindNotFound, ErrAttemptNotFound)
}

func TestGetSatTest(t *testing.T) {
	f := newFixture(t)
	test := f.seedSatTest(t)
	f.addMember(t, 3, student.UserID)
	f.addDeadline(t, test.ID, 3, fixedNow.Add(-48*time.Hour), fixedNow.Add(-24*time.Hour))

	view, err := f.satSubmissions().GetSatTest(student, test.ID)
	if err != nil {
		t.Fatalf("GetSatTest after due should still be viewable: %v", err)
	}
	if strings.Join(view.Sections, ",") != "math,verbal" {
		t.Errorf("sections = %v", view.Sections)
	}
	body, _ := json.Marshal(view)
	if strings.Contains(string(body), "is_correct") {
		t.Errorf("SAT view leaks correctness: %s", body)
	}

	grid := &model.SatTest{
		Name: "Grid-in",
		Questions: []model.SatQuestion{
			{Section: "math", Text: "6*7?", Type: "writing", OrderInTest: 1, AnswerOptions: []model.SatAnswerOption{
				{Text: "42", IsCorrect: true},
			}},
		},
	}
	if err := f.db.Create(grid).Error; err != nil {
		t.Fatalf("seed grid-in test: %v", err)
	}
	gridView, err := f.satSubmissions().GetSatTest(teacher, grid.ID)
	if err != nil {
		t.Fatalf("GetSatTest grid-in: %v", err)
	}
	if opts := gridView.SatQuestions[0].AnswerOptions; len(opts) != 0 {
		t.Errorf("writing question options = %+v, want none", opts)
	}
	gridBody, _ := json.Marshal(gridView)
	if strings.Contains(string(gridBody), `"text":"42"`) {
		t.Errorf("SAT view leaks the canonical answer: %s", gridBody)
	}

	_, err = f.satSubmissions().GetSatTest(student, 999)
	assertKind(t, err, KindNotFound, ErrSatTestNotFound)
}

func TestPickDeadline(t *testing.T) {
	d := func(id uint, opensOffset, dueOffset time.Duration) model.Deadline {
		return model.Deadline{ID: id, Opens: fixedNow.Add(opensOffset), Due: fixedNow.Add(dueOffset)}
	}
	tests := []struct {
		name      string
		deadlines []model.Deadline
		wantID    uint
	}{
		{"none", nil, 0},
		{"current wins over upcoming", []model.Deadline{d(1, time.Hour, 2*time.Hour), d(2, -time.Hour, time.Hour)}, 2},
		{"earliest upcoming", []model.Deadline{d(1, 3*time.Hour, 4*time.Hour), d(2, time.Hour, 2*time.Hour)}, 2},
		{"upcoming wins over past", []model.Deadline{d(1, -3*time.Hour, -2*time.Hour), d(2, time.Hour, 2*time.Hour)}, 2},
		{"latest past", []model.Deadline{d(1, -5*time.Hour, -4*time.Hour), d(2, -3*time.Hour, -2*time.Hour)}, 2},
		{"boundary is inside", []model.Deadline{d(1, 0, time.Hour)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickDeadline(tt.deadlines, fixedNow)
			var gotID uint
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.wantID {
				t.Errorf("picked %d, want %d", gotID, tt.wantID)
			}
		})
	}
}
