package gateway

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/veedubyou/audius-shake-be/src/server/api_error"
	"github.com/veedubyou/audius-shake-be/src/server/internal/errors/api"
	stemerrors "github.com/veedubyou/audius-shake-be/src/server/internal/stem/errors"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:              http.StatusInternalServerError,
	stemerrors.TrackNotFoundCode:      http.StatusNotFound,
	stemerrors.StreamURLNotFoundCode:  http.StatusNotFound,
	stemerrors.JobNotFoundCode:        http.StatusNotFound,
	stemerrors.SeparationUpstreamCode: http.StatusInternalServerError,
	stemerrors.CatalogUpstreamCode:    http.StatusInternalServerError,
	stemerrors.StemUploadFailedCode:   http.StatusInternalServerError,
	stemerrors.BadRequestDataCode:     http.StatusBadRequest,
	stemerrors.InvalidAmountCode:      http.StatusBadRequest,
	stemerrors.PollTimeoutCode:        http.StatusGatewayTimeout,
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := httpStatusCodeMap[err.ErrorCode]
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
