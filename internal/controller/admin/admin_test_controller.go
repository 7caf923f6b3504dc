package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/internal/controller"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/service"
)

type AdminTestController struct {
	adminTestService service.AdminTestService
	deadlineService  service.DeadlineService
}

func NewAdminTestController(adminTestService service.AdminTestService, deadlineService service.DeadlineService) *AdminTestController {
	return &AdminTestController{adminTestService: adminTestService, deadlineService: deadlineService}
}

// CreateTest godoc
// @Summary (Admin) Create a test
// @Description Creates a generic test with all its questions and answer options. Single and writing questions need exactly one correct option, multiply questions at least one.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_data body dto.CreateTestDTO true "Test with questions"
// @Success 201 {object} dto.CreatedDTO "Test created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 403 {object} dto.ErrorResponse "Staff role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.CreateTestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "Admin CreateTest", err)
		return
	}
	created, err := c.adminTestService.CreateTest(req)
	if err != nil {
		controller.RespondError(ctx, "Admin CreateTest", err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// CreateSatTest godoc
// @Summary (Admin) Create a SAT test
// @Description Creates a sectioned SAT test. The section name totalScore is reserved.
// @Tags Admin - SAT
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param test_data body dto.CreateSatTestDTO true "SAT test with sectioned questions"
// @Success 201 {object} dto.CreatedDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 403 {object} dto.ErrorResponse "Staff role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/sat-tests [post]
func (c *AdminTestController) CreateSatTest(ctx *gin.Context) {
	var req dto.CreateSatTestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "Admin CreateSatTest", err)
		return
	}
	created, err := c.adminTestService.CreateSatTest(req)
	if err != nil {
		controller.RespondError(ctx, "Admin CreateSatTest", err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// GetExplanations godoc
// @Summary (Admin) Questions with answers and explanations
// @Tags Admin - Tests
// @Produce json
// @Security BearerAuth
// @Param test_id path int true "Test ID"
// @Success 200 {array} dto.ReviewQuestionDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Test ID"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/{test_id}/explanations [get]
func (c *AdminTestController) GetExplanations(ctx *gin.Context) {
	testID, ok := controller.ParseID(ctx, "test_id")
	if !ok {
		return
	}
	questions, err := c.adminTestService.GetExplanations(testID)
	if err != nil {
		controller.RespondError(ctx, "Admin GetExplanations", err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// CreateDeadline godoc
// @Summary (Admin) Open a SAT test to a group
// @Tags Admin - SAT
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param deadline body dto.DeadlineCreateDTO true "Window for one group"
// @Success 201 {object} dto.DeadlineDTO
// @Failure 400 {object} dto.ErrorResponse "Due not after opens, or group already has a deadline"
// @Failure 404 {object} dto.ErrorResponse "SAT test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/deadlines [post]
func (c *AdminTestController) CreateDeadline(ctx *gin.Context) {
	var req dto.DeadlineCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "Admin CreateDeadline", err)
		return
	}
	deadline, err := c.deadlineService.Create(req)
	if err != nil {
		controller.RespondError(ctx, "Admin CreateDeadline", err)
		return
	}
	ctx.JSON(http.StatusCreated, deadline)
}

// UpdateDeadline godoc
// @Summary (Admin) Move a deadline window
// @Tags Admin - SAT
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deadline ID"
// @Param window body dto.DeadlineUpdateDTO true "New window"
// @Success 200 {object} dto.DeadlineDTO
// @Failure 400 {object} dto.ErrorResponse "Due not after opens"
// @Failure 404 {object} dto.ErrorResponse "Deadline not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/deadlines/{id} [put]
func (c *AdminTestController) UpdateDeadline(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	var req dto.DeadlineUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "Admin UpdateDeadline", err)
		return
	}
	deadline, err := c.deadlineService.Update(id, req)
	if err != nil {
		controller.RespondError(ctx, "Admin UpdateDeadline", err)
		return
	}
	ctx.JSON(http.StatusOK, deadline)
}

// DeleteDeadline godoc
// @Summary (Admin) Remove a deadline
// @Tags Admin - SAT
// @Security BearerAuth
// @Param id path int true "Deadline ID"
// @Success 204 "Deadline deleted"
// @Failure 404 {object} dto.ErrorResponse "Deadline not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/deadlines/{id} [delete]
func (c *AdminTestController) DeleteDeadline(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.deadlineService.Delete(id); err != nil {
		controller.RespondError(ctx, "Admin DeleteDeadline", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListDeadlines godoc
// @Summary (Admin) List the deadlines of a SAT test
// @Tags Admin - SAT
// @Produce json
// @Security BearerAuth
// @Param id path int true "SAT Test ID"
// @Success 200 {array} dto.DeadlineDTO
// @Failure 404 {object} dto.ErrorResponse "SAT test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/sat-tests/{id}/deadlines [get]
func (c *AdminTestController) ListDeadlines(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "id")
	if !ok {
		return
	}
	deadlines, err := c.deadlineService.ListForSatTest(id)
	if err != nil {
		controller.RespondError(ctx, "Admin ListDeadlines", err)
		return
	}
	ctx.JSON(http.StatusOK, deadlines)
}
