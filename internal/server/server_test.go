package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/lshigami/testhall/config"
	adminctrl "github.com/lshigami/testhall/internal/controller/admin"
	satctrl "github.com/lshigami/testhall/internal/controller/sat"
	userctrl "github.com/lshigami/testhall/internal/controller/user"
	"github.com/lshigami/testhall/internal/event"
	"github.com/lshigami/testhall/internal/middleware"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/lshigami/testhall/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const secret = "server-test-secret"

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server: config.Server{GinMode: gin.TestMode},
		JWT:    config.JWT{Secret: secret},
	}
	clock := service.Clock(func() time.Time { return now })
	publisher := event.Disabled()

	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewTestAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	suspendRepo := repository.NewSuspendRepository(db)
	lockRepo := repository.NewLockRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	satTestRepo := repository.NewSatTestRepository(db)
	satAttemptRepo := repository.NewSatAttemptRepository(db)
	deadlineRepo := repository.NewDeadlineRepository(db)

	llm, err := service.NewGeminiLLMService(cfg)
	if err != nil {
		t.Fatalf("llm: %v", err)
	}

	userCtrl := userctrl.NewUserTestController(
		service.NewUserTestService(testRepo, attemptRepo, suspendRepo, groupRepo, clock),
		service.NewTestSubmissionService(testRepo, attemptRepo, answerRepo, suspendRepo, lockRepo, publisher, clock, db),
		service.NewSuspendService(testRepo, attemptRepo, suspendRepo, lockRepo, clock, db),
		service.NewFeedbackService(attemptRepo, answerRepo, llm),
	)
	satCtrl := satctrl.NewSatTestController(
		service.NewSatSubmissionService(satTestRepo, satAttemptRepo, deadlineRepo, groupRepo, publisher, clock, db),
	)
	adminCtrl := adminctrl.NewAdminTestController(
		service.NewAdminTestService(testRepo, questionRepo, satTestRepo),
		service.NewDeadlineService(deadlineRepo, satTestRepo),
	)

	router := NewGinEngine(cfg)
	RegisterRoutes(router, db, middleware.NewAuthMiddleware(cfg), adminCtrl, userCtrl, satCtrl)
	return &harness{t: t, db: db, router: router}
}

func (h *harness) do(method, path string, userID uint, role scoring.Role, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := middleware.IssueToken(secret, "", userID, role, time.Hour)
		if err != nil {
			h.t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) seedTest(opens *time.Time, maxAttempts int) *model.Test {
	h.t.Helper()
	test := &model.Test{
		GroupID:     1,
		Name:        "Quiz",
		Opens:       opens,
		MaxAttempts: maxAttempts,
		Questions: []model.Question{
			{Text: "2+2?", Type: "single", OrderInTest: 1, AnswerOptions: []model.AnswerOption{
				{Text: "3"}, {Text: "4", IsCorrect: true},
			}},
			{Text: "Capital of France?", Type: "writing", OrderInTest: 2, AnswerOptions: []model.AnswerOption{
				{Text: "Paris", IsCorrect: true},
			}},
		},
	}
	if err := h.db.Create(test).Error; err != nil {
		h.t.Fatalf("seed: %v", err)
	}
	return test
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func submitBody(test *model.Test) map[string]interface{} {
	return map[string]interface{}{
		"startTime": now.Add(-2 * time.Minute).Format(time.RFC3339),
		"answers": []map[string]interface{}{
			{"question_id": test.Questions[0].ID, "answer": test.Questions[0].AnswerOptions[1].ID},
			{"question_id": test.Questions[1].ID, "answer": "paris"},
		},
	}
}

func TestSubmitFlowStatusCodes(t *testing.T) {
	h := newHarness(t)
	test := h.seedTest(timePtr(now.Add(-time.Hour)), 1)
	path := fmt.Sprintf("/api/v1/tests/%d/submit", test.ID)

	w := h.do(http.MethodPost, path, 7, scoring.RoleStudent, submitBody(test))
	if w.Code != http.StatusOK {
		t.Fatalf("first submit status = %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Score     int   `json:"score"`
		TimeTaken int64 `json:"timeTaken"`
		AttemptID uint  `json:"attempt_id"`
	}
	decode(t, w, &result)
	if result.Score != 2 || result.TimeTaken != 120 || result.AttemptID == 0 {
		t.Errorf("result = %+v", result)
	}

	w = h.do(http.MethodPost, path, 7, scoring.RoleStudent, submitBody(test))
	if w.Code != http.StatusForbidden {
		t.Errorf("second submit status = %d, want 403", w.Code)
	}

	tests := []struct {
		name string
		path string
		body interface{}
		want int
	}{
		{"unknown test", "/api/v1/tests/999/submit", submitBody(test), http.StatusNotFound},
		{"malformed id", "/api/v1/tests/abc/submit", submitBody(test), http.StatusBadRequest},
		{"missing startTime", path, map[string]interface{}{"answers": []interface{}{}}, http.StatusBadRequest},
		{"empty answers", path, map[string]interface{}{"answers": []interface{}{}, "startTime": now.Format(time.RFC3339)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(http.MethodPost, tt.path, 8, scoring.RoleStudent, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestNotYetOpenIsBadRequest(t *testing.T) {
	h := newHarness(t)
	test := h.seedTest(timePtr(now.Add(time.Hour)), 0)
	w := h.do(http.MethodPost, fmt.Sprintf("/api/v1/tests/%d/submit", test.ID), 7, scoring.RoleStudent, submitBody(test))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/tests/%d", test.ID), 7, scoring.RoleStudent, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("view status = %d, want 400", w.Code)
	}
}

func TestSuspendAndContinue(t *testing.T) {
	h := newHarness(t)
	test := h.seedTest(nil, 0)
	body := map[string]interface{}{
		"startTime": now.Add(-time.Minute).Format(time.RFC3339),
		"answers":   []map[string]interface{}{{"question_id": test.Questions[1].ID, "answer": "Rome"}},
	}
	w := h.do(http.MethodPost, fmt.Sprintf("/api/v1/tests/%d/suspend", test.ID), 7, scoring.RoleStudent, body)
	if w.Code != http.StatusOK {
		t.Fatalf("suspend status = %d: %s", w.Code, w.Body.String())
	}

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/tests/%d/continue", test.ID), 7, scoring.RoleStudent, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("continue status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"student_answer":"Rome"`) {
		t.Errorf("draft missing student answer: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "is_correct") || strings.Contains(w.Body.String(), "Paris") {
		t.Errorf("draft exposes the answer key: %s", w.Body.String())
	}

	w = h.do(http.MethodGet, fmt.Sprintf("/api/v1/tests/%d/continue", test.ID), 8, scoring.RoleStudent, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("continue without draft status = %d, want 404", w.Code)
	}
}

func TestSatSubmitAndReview(t *testing.T) {
	h := newHarness(t)
	sat := &model.SatTest{
		Name: "SAT",
		Questions: []model.SatQuestion{
			{Section: "math", Text: "1+1", Type: "single", AnswerOptions: []model.SatAnswerOption{{Text: "2", IsCorrect: true}, {Text: "3"}}},
			{Section: "verbal", Text: "big", Type: "single", AnswerOptions: []model.SatAnswerOption{{Text: "large", IsCorrect: true}, {Text: "tiny"}}},
		},
	}
	if err := h.db.Create(sat).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h.db.Create(&model.GroupMember{GroupID: 5, UserID: 7})
	h.db.Create(&model.Deadline{SatTestID: sat.ID, GroupID: 5, Opens: now.Add(-time.Hour), Due: now.Add(time.Hour)})

	body := map[string]interface{}{"answers": map[string]interface{}{
		"math":   []map[string]interface{}{{"question_id": sat.Questions[0].ID, "option_id": sat.Questions[0].AnswerOptions[0].ID}},
		"verbal": []map[string]interface{}{{"question_id": sat.Questions[1].ID, "option_id": fmt.Sprint(sat.Questions[1].AnswerOptions[1].ID)}},
	}}
	w := h.do(http.MethodPost, fmt.Sprintf("/api/v1/satTests/%d/submit", sat.ID), 7, scoring.RoleStudent, body)
	if w.Code != http.StatusOK {
		t.Fatalf("sat submit status = %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		AttemptID uint           `json:"attempt_id"`
		Scores    map[string]int `json:"scores"`
	}
	decode(t, w, &result)
	if result.Scores["math"] != 1 || result.Scores["verbal"] != 0 || result.Scores["totalScore"] != 1 {
		t.Errorf("scores = %v", result.Scores)
	}

	reviewPath := fmt.Sprintf("/api/v1/satAttempts/%d/user/7/answers", result.AttemptID)
	if w := h.do(http.MethodGet, reviewPath, 7, scoring.RoleStudent, nil); w.Code != http.StatusOK {
		t.Errorf("owner review status = %d: %s", w.Code, w.Body.String())
	}
	if w := h.do(http.MethodGet, reviewPath, 8, scoring.RoleStudent, nil); w.Code != http.StatusForbidden {
		t.Errorf("other student review status = %d, want 403", w.Code)
	}
	if w := h.do(http.MethodGet, reviewPath, 1, scoring.RoleAdmin, nil); w.Code != http.StatusOK {
		t.Errorf("admin review status = %d", w.Code)
	}

	// No deadline for this user's groups and no window on the test.
	w = h.do(http.MethodPost, fmt.Sprintf("/api/v1/satTests/%d/submit", sat.ID), 9, scoring.RoleStudent, body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no deadline status = %d, want 400", w.Code)
	}
}

func TestAuthAndRoles(t *testing.T) {
	h := newHarness(t)
	if w := h.do(http.MethodGet, "/api/v1/tests", 0, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
	create := map[string]interface{}{
		"group_id": 1,
		"name":     "New",
		"questions": []map[string]interface{}{{
			"text": "q", "question_type": "single",
			"answer_options": []map[string]interface{}{{"text": "a", "is_correct": true}, {"text": "b"}},
		}},
	}
	if w := h.do(http.MethodPost, "/api/v1/admin/tests", 7, scoring.RoleStudent, create); w.Code != http.StatusForbidden {
		t.Errorf("student create status = %d, want 403", w.Code)
	}
	if w := h.do(http.MethodPost, "/api/v1/admin/tests", 1, scoring.RoleTeacher, create); w.Code != http.StatusCreated {
		t.Errorf("teacher create status = %d: %s", w.Code, w.Body.String())
	}
}

func TestPersistenceFailureHidesCause(t *testing.T) {
	h := newHarness(t)
	sqlDB, _ := h.db.DB()
	sqlDB.Close()

	w := h.do(http.MethodGet, "/api/v1/tests", 1, scoring.RoleAdmin, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "internal server error") || strings.Contains(body, "closed") {
		t.Errorf("body leaks cause: %s", body)
	}

	if w := h.do(http.MethodGet, "/healthz", 0, "", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz status = %d, want 503", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	if w := h.do(http.MethodGet, "/healthz", 0, "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
