package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/internal/controller"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/service"
	"github.com/rs/zerolog/log"
)

type UserTestController struct {
	userTestService       service.UserTestService
	testSubmissionService service.TestSubmissionService
	suspendService        service.SuspendService
	feedbackService       service.FeedbackService
}

func NewUserTestController(
	uts service.UserTestService,
	tss service.TestSubmissionService,
	ss service.SuspendService,
	fs service.FeedbackService,
) *UserTestController {
	return &UserTestController{
		userTestService:       uts,
		testSubmissionService: tss,
		suspendService:        ss,
		feedbackService:       fs,
	}
}

// GetAllTests godoc
// @Summary (User) List available tests
// @Description Students see the tests of their groups, staff see every test. Each entry says whether a suspended draft exists and whether the caller already submitted.
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests [get]
func (c *UserTestController) GetAllTests(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	tests, err := c.userTestService.GetAllTests(actor)
	if err != nil {
		controller.RespondError(ctx, "User GetAllTests", err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetails godoc
// @Summary (User) Get a test to take
// @Description Returns the test with its questions and options. Correct answers are never included.
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestViewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID or test not open yet"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests/{test_id} [get]
func (c *UserTestController) GetTestDetails(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	testDetails, err := c.userTestService.GetTestDetails(actor, testID)
	if err != nil {
		controller.RespondError(ctx, "User GetTestDetails", err)
		return
	}
	ctx.JSON(http.StatusOK, testDetails)
}

// SubmitTest godoc
// @Summary (User) Submit answers for a test
// @Description Grades the answers, records one attempt and clears the caller's suspended draft.
// @Tags User - Tests & Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Param submission body dto.TestSubmitDTO true "Answers and the time the attempt started"
// @Success 200 {object} dto.SubmitResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input, test not open or expired"
// @Failure 403 {object} dto.ErrorResponse "Maximum number of attempts reached"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests/{test_id}/submit [post]
func (c *UserTestController) SubmitTest(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.TestSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "User SubmitTest", err)
		return
	}

	log.Info().Uint("testID", testID).Uint("userID", actor.UserID).Int("answerCount", len(req.Answers)).Msg("Received request to submit test")
	result, err := c.testSubmissionService.SubmitTest(actor, testID, req)
	if err != nil {
		controller.RespondError(ctx, "User SubmitTest", err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// SuspendTest godoc
// @Summary (User) Save in-progress answers
// @Description Replaces the caller's suspended draft for the test.
// @Tags User - Tests & Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Param draft body dto.TestSuspendDTO true "Answers so far and the time the attempt started"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or test not open"
// @Failure 403 {object} dto.ErrorResponse "Maximum number of attempts reached"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests/{test_id}/suspend [post]
func (c *UserTestController) SuspendTest(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.TestSuspendDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "User SuspendTest", err)
		return
	}
	resp, err := c.suspendService.Suspend(actor, testID, req)
	if err != nil {
		controller.RespondError(ctx, "User SuspendTest", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ContinueTest godoc
// @Summary (User) Resume a suspended test
// @Description Returns the test view with the saved answers filled in.
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.DraftTestDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID"
// @Failure 404 {object} dto.ErrorResponse "Test or draft not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests/{test_id}/continue [get]
func (c *UserTestController) ContinueTest(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	draft, err := c.suspendService.Resume(actor, testID)
	if err != nil {
		controller.RespondError(ctx, "User ContinueTest", err)
		return
	}
	ctx.JSON(http.StatusOK, draft)
}

// GetUserTestAttempts godoc
// @Summary (User) List my attempts on a test
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Success 200 {array} dto.TestAttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tests/{test_id}/my-attempts [get]
func (c *UserTestController) GetUserTestAttempts(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	attempts, err := c.testSubmissionService.GetUserAttemptsForTest(actor, testID)
	if err != nil {
		controller.RespondError(ctx, "User GetUserTestAttempts", err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetSpecificTestAttemptDetails godoc
// @Summary (User) Review one attempt
// @Description Returns every answer with its correctness and the question's explanation. Only the owner and staff may read it.
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Test Attempt ID"
// @Success 200 {object} dto.TestAttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /test-attempts/{attempt_id} [get]
func (c *UserTestController) GetSpecificTestAttemptDetails(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	attemptID, ok := controller.ParseID(ctx, "attempt_id")
	if !ok {
		return
	}
	detail, err := c.testSubmissionService.GetTestAttemptDetails(actor, attemptID)
	if err != nil {
		controller.RespondError(ctx, "User GetSpecificTestAttemptDetails", err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// RequestWritingFeedback godoc
// @Summary (User) Ask AI feedback on writing answers
// @Description Generates feedback for every writing answer of the attempt. Scores are not changed.
// @Tags User - Tests & Attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Test Attempt ID"
// @Success 200 {object} dto.AttemptFeedbackDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID or feedback not configured"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /test-attempts/{attempt_id}/feedback [post]
func (c *UserTestController) RequestWritingFeedback(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	attemptID, ok := controller.ParseID(ctx, "attempt_id")
	if !ok {
		return
	}
	feedback, err := c.feedbackService.GenerateWritingFeedback(actor, attemptID)
	if err != nil {
		controller.RespondError(ctx, "User RequestWritingFeedback", err)
		return
	}
	ctx.JSON(http.StatusOK, feedback)
}
