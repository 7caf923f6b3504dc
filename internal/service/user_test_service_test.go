package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/model"
)

func TestGetAllTests_FlagsAndGroups(t *testing.T) {
	f := newFixture(t)
	submitted := f.seedTest(t, nil, 0)
	drafted := f.seedTest(t, nil, 0)
	foreign := &model.Test{GroupID: 2, Name: "Other group"}
	if err := f.db.Create(foreign).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.addMember(t, 1, student.UserID)

	start := fixedNow.Add(-time.Minute).Format(time.RFC3339)
	if _, err := f.submissions().SubmitTest(student, submitted.ID, dto.TestSubmitDTO{
		StartTime: start,
		Answers:   []dto.AnswerItemDTO{optionAnswer(submitted.Questions[0], 1)},
	}); err != nil {
		t.Fatalf("SubmitTest: %v", err)
	}
	if _, err := f.suspendService().Suspend(student, drafted.ID, dto.TestSuspendDTO{
		StartTime: start,
		Answers:   []dto.AnswerItemDTO{optionAnswer(drafted.Questions[0], 1)},
	}); err != nil {
		t.Fatalf("Suspend: %v", err)
	}

	list, err := f.userTests().GetAllTests(student)
	if err != nil {
		t.Fatalf("GetAllTests: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("student sees %d tests, want 2", len(list))
	}
	byID := map[uint]dto.TestSummaryDTO{}
	for _, s := range list {
		byID[s.ID] = s
	}
	if s := byID[submitted.ID]; !s.IsCompleted || s.Continue {
		t.Errorf("submitted test flags = %+v", s)
	}
	if s := byID[drafted.ID]; s.IsCompleted || !s.Continue {
		t.Errorf("drafted test flags = %+v", s)
	}

	all, err := f.userTests().GetAllTests(teacher)
	if err != nil {
		t.Fatalf("GetAllTests teacher: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("teacher sees %d tests, want 3", len(all))
	}
}

func TestGetTestDetails(t *testing.T) {
	f := newFixture(t)
	open := f.seedTest(t, timePtr(fixedNow.Add(-time.Minute)), 0)
	future := f.seedTest(t, timePtr(fixedNow.Add(time.Minute)), 0)
	svc := f.userTests()

	view, err := svc.GetTestDetails(student, open.ID)
	if err != nil {
		t.Fatalf("GetTestDetails: %v", err)
	}
	if len(view.Questions) != 3 || len(view.Questions[1].AnswerOptions) != 3 {
		t.Fatalf("unexpected view %+v", view)
	}
	if opts := view.Questions[2].AnswerOptions; opts == nil || len(opts) != 0 {
		t.Errorf("writing question options = %+v, want an empty list", opts)
	}
	body, _ := json.Marshal(view)
	for _, leak := range []string{"is_correct", "basic sum", "explanation", "Paris"} {
		if strings.Contains(string(body), leak) {
			t.Errorf("pre-submission view leaks %q: %s", leak, body)
		}
	}

	_, err = svc.GetTestDetails(student, future.ID)
	assertKind(t, err, KindPolicy, ErrNotYetOpen)

	if _, err := svc.GetTestDetails(teacher, future.ID); err != nil {
		t.Errorf("teacher should preview unopened tests: %v", err)
	}

	_, err = svc.GetTestDetails(student, 999)
	assertKind(t, err, KindNotFound, ErrTestNotFound)
}
