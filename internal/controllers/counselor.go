package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"counsel-dispatch/internal/dto"
	"counsel-dispatch/internal/services"
	"counsel-dispatch/pkg/api"
	"counsel-dispatch/pkg/utils"
)

type CounselorController struct {
	counselorService services.CounselorServiceInterface
	directory        services.DirectoryServiceInterface
	presence         services.PresenceServiceInterface
	logger           *zap.Logger
}

func NewCounselorController(
	counselorService services.CounselorServiceInterface,
	directory services.DirectoryServiceInterface,
	presence services.PresenceServiceInterface,
	logger *zap.Logger,
) *CounselorController {
	return &CounselorController{
		counselorService: counselorService,
		directory:        directory,
		presence:         presence,
		logger:           logger,
	}
}

func (c *CounselorController) Register(ctx echo.Context) error {
	var payload dto.RegisterCounselorDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	id, err := c.counselorService.Register(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("counselor registration failed", zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "counselor registered", map[string]string{"id": id})
}

func (c *CounselorController) Update(ctx echo.Context) error {
	var payload dto.UpdateCounselorDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.counselorService.Update(ctx.Request().Context(), ctx.Param("id"), payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "counselor updated", struct{}{})
}

func (c *CounselorController) GetCounselors(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.directory.GetCounselors(ctx.Request().Context(), filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "counselors", res, total, filter.Page, filter.Limit)
}

func (c *CounselorController) FindCounselor(ctx echo.Context) error {
	res, err := c.directory.FindCounselor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "counselor found", res)
}

// Heartbeat keeps the counselor live in the directory; a counselor that stops
// heartbeating drops out of broadcast sets once the presence TTL lapses.
func (c *CounselorController) Heartbeat(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.presence.Heartbeat(reqCtx, counselorID); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "heartbeat recorded", struct{}{})
}

func (c *CounselorController) SetAvailability(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.AvailabilityDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}

	if err := c.presence.SetAvailability(reqCtx, counselorID, payload.Online, payload.Available); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "availability updated", struct{}{})
}

// ApplyRating is the callback surface of the external review subsystem.
func (c *CounselorController) ApplyRating(ctx echo.Context) error {
	var payload dto.RatingDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.counselorService.ApplyRating(ctx.Request().Context(), ctx.Param("id"), payload.Score); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "rating applied", struct{}{})
}
