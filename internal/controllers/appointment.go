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

type AppointmentController struct {
	scheduler services.SchedulerServiceInterface
	arbiter   services.ArbiterServiceInterface
	logger    *zap.Logger
}

func NewAppointmentController(
	scheduler services.SchedulerServiceInterface,
	arbiter services.ArbiterServiceInterface,
	logger *zap.Logger,
) *AppointmentController {
	return &AppointmentController{
		scheduler: scheduler,
		arbiter:   arbiter,
		logger:    logger,
	}
}

func (c *AppointmentController) ScheduleBooking(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.ScheduleBookingDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	requestID, err := c.scheduler.ScheduleBooking(reqCtx, userID, payload)
	if err != nil {
		c.logger.Error("ScheduleBooking failed", zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "booking queued", map[string]string{"request_id": requestID})
}

func (c *AppointmentController) ListQueued(ctx echo.Context) error {
	res, err := c.scheduler.ListQueued(ctx.Request().Context(), ctx.QueryParam("region"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "queued appointments", res)
}

func (c *AppointmentController) ListMine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.scheduler.ListByCounselor(reqCtx, counselorID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "my appointments", res)
}

// AcceptQueued claims an appointment from the pull queue under the same
// one-winner contract as a live accept.
func (c *AppointmentController) AcceptQueued(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	appointmentID := ctx.Param("id")
	if appointmentID == "" {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "missing appointment id"))
	}

	res, err := c.arbiter.AcceptQueued(reqCtx, appointmentID, counselorID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "appointment accepted", res)
}
