package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "counsel-dispatch/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// statusForError maps the service error taxonomy onto HTTP codes. Contention
// and capacity rejections are 409, expiry is 410, so counselor clients can
// distinguish "you lost the race" from "this request is gone".
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyClaimed),
		errors.Is(err, apperrors.ErrTerminalState),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrCounselorAtCapacity):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRequestExpired):
		return http.StatusGone
	case errors.Is(err, apperrors.ErrNotBroadcasted),
		errors.Is(err, apperrors.ErrRegionNotServed):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrActorNotFoundInContext):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func ErrorResponse(c echo.Context, err error) error {
	code := statusForError(err)
	msg := err.Error()

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		msg = httpErr.Message
	}
	var inputErr *apperrors.InvalidInputError
	if errors.As(err, &inputErr) {
		code = http.StatusBadRequest
		msg = inputErr.Message
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		code = echoErr.Code
		if s, ok := echoErr.Message.(string); ok {
			msg = s
		}
	}

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
	})
}
