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

type RequestController struct {
	dispatcher services.DispatcherServiceInterface
	arbiter    services.ArbiterServiceInterface
	lifecycle  services.LifecycleServiceInterface
	logger     *zap.Logger
}

func NewRequestController(
	dispatcher services.DispatcherServiceInterface,
	arbiter services.ArbiterServiceInterface,
	lifecycle services.LifecycleServiceInterface,
	logger *zap.Logger,
) *RequestController {
	return &RequestController{
		dispatcher: dispatcher,
		arbiter:    arbiter,
		lifecycle:  lifecycle,
		logger:     logger,
	}
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.dispatcher.CreateRequest(reqCtx, userID, payload)
	if err != nil {
		c.logger.Error("CreateRequest failed", zap.Error(err))
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "request dispatched", res)
}

// Accept is the race: many counselors may call this for the same request and
// exactly one gets success.
func (c *RequestController) Accept(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	requestID := ctx.Param("id")
	if requestID == "" {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "missing request id"))
	}

	res, err := c.arbiter.Accept(reqCtx, requestID, counselorID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "request accepted", res)
}

func (c *RequestController) Complete(ctx echo.Context) error {
	requestID := ctx.Param("id")
	if requestID == "" {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "missing request id"))
	}

	if err := c.lifecycle.Complete(ctx.Request().Context(), requestID); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "request completed", struct{}{})
}

func (c *RequestController) Cancel(ctx echo.Context) error {
	requestID := ctx.Param("id")
	if requestID == "" {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "missing request id"))
	}

	var payload dto.CancelRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}

	var reason *string
	if payload.Reason.Valid {
		reason = &payload.Reason.String
	}

	if err := c.lifecycle.Cancel(ctx.Request().Context(), requestID, reason); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "request cancelled", struct{}{})
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	res, err := c.dispatcher.FindRequest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "request found", res)
}

// ListOpen serves counselor-side UIs: claimable requests in a region,
// already filtered to non-expired.
func (c *RequestController) ListOpen(ctx echo.Context) error {
	region := ctx.QueryParam("region")
	if region == "" {
		return api.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "missing region"))
	}

	res, err := c.dispatcher.ListOpenByRegion(ctx.Request().Context(), region)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "open requests", res)
}

func (c *RequestController) ListNotified(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	counselorID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.dispatcher.ListBroadcastedTo(reqCtx, counselorID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "notified requests", res)
}

func (c *RequestController) ListMine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	userID, err := utils.GetActorIDFromCtx(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	res, err := c.dispatcher.ListByUser(reqCtx, userID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "my requests", res)
}
