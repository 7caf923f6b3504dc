// Package controller holds the helpers shared by the HTTP handlers.
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/middleware"
	"github.com/lshigami/testhall/internal/service"
	"github.com/rs/zerolog/log"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindPolicy:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an ErrorResponse. Internal causes are logged
// and never sent to the client.
func RespondError(ctx *gin.Context, op string, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("request_id", ctx.GetString(middleware.ContextRequestID)).Msgf("%s: Unexpected error", op)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"})
		return
	}
	status := StatusFor(appErr.Kind)
	if status == http.StatusInternalServerError {
		log.Error().Err(appErr.Err).Str("request_id", ctx.GetString(middleware.ContextRequestID)).Msgf("%s: Service error", op)
	} else {
		log.Warn().Str("kind", appErr.Kind.String()).Str("reason", appErr.Message).Msgf("%s: Request rejected", op)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, dto.ErrorResponse{Message: appErr.Message})
}

// BindError answers a request whose body failed to bind.
func BindError(ctx *gin.Context, op string, err error) {
	log.Warn().Err(err).Msgf("%s: Failed to bind JSON", op)
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
}

// ParseID reads a positive numeric path parameter. On failure it writes a 400
// and returns false.
func ParseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// Actor returns the authenticated caller. On failure it writes a 401 and
// returns false.
func Actor(ctx *gin.Context) (service.Actor, bool) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "authentication required"})
		return service.Actor{}, false
	}
	return actor, true
}
