package sat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/internal/controller"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/service"
)

type SatTestController struct {
	satService service.SatSubmissionService
}

func NewSatTestController(satService service.SatSubmissionService) *SatTestController {
	return &SatTestController{satService: satService}
}

// GetSatTest godoc
// @Summary (User) Get a SAT test to take
// @Description Returns the questions grouped by section, without correct answers.
// @Tags User - SAT
// @Produce json
// @Security BearerAuth
// @Param id path int true "SAT Test ID"
// @Success 200 {object} dto.SatTestViewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID, test not open or no deadline"
// @Failure 404 {object} dto.ErrorResponse "SAT test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /satTests/{id} [get]
func (c *SatTestController) GetSatTest(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.satService.GetSatTest(actor, id)
	if err != nil {
		controller.RespondError(ctx, "SAT GetSatTest", err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// SubmitSatTest godoc
// @Summary (User) Submit a SAT test
// @Description Grades the answers per section and records one attempt. The response holds one score per section plus totalScore.
// @Tags User - SAT
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "SAT Test ID"
// @Param submission body dto.SatTestSubmitDTO true "Answers keyed by section"
// @Success 200 {object} dto.SatSubmitResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input, outside the group's deadline or no deadline"
// @Failure 404 {object} dto.ErrorResponse "SAT test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /satTests/{id}/submit [post]
func (c *SatTestController) SubmitSatTest(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SatTestSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "SAT SubmitSatTest", err)
		return
	}
	result, err := c.satService.SubmitSatTest(actor, id, req)
	if err != nil {
		controller.RespondError(ctx, "SAT SubmitSatTest", err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetAttemptAnswers godoc
// @Summary (User) Review a SAT attempt
// @Description Returns the attempt, per-section scores and every question with the submitted answer and its correctness. Reading never modifies the attempt.
// @Tags User - SAT
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "SAT Attempt ID"
// @Param user_id path int true "Owner of the attempt"
// @Success 200 {object} dto.SatAttemptAnswersDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 403 {object} dto.ErrorResponse "Caller is neither the owner nor staff"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found for this user"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /satAttempts/{attempt_id}/user/{user_id}/answers [get]
func (c *SatTestController) GetAttemptAnswers(ctx *gin.Context) {
	actor, ok := controller.Actor(ctx)
	if !ok {
		return
	}
	attemptID, ok := controller.ParseID(ctx, "attempt_id")
	if !ok {
		return
	}
	userID, ok := controller.ParseID(ctx, "user_id")
	if !ok {
		return
	}
	review, err := c.satService.GetAttemptAnswers(actor, attemptID, userID)
	if err != nil {
		controller.RespondError(ctx, "SAT GetAttemptAnswers", err)
		return
	}
	ctx.JSON(http.StatusOK, review)
}
