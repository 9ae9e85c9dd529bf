package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sitterboard/internal/common"
)

// ErrorCodeKey holds the code of the error written for the request, if any.
const ErrorCodeKey = "error_code"

type errorBody struct {
	Error  string            `json:"error"`
	Code   common.Code       `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error writes err as a JSON error body and aborts the chain. Internal causes
// are logged, never sent.
func Error(c *gin.Context, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal server error", err)
	}
	status := appErr.HTTPStatus()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("code", string(appErr.Code)).Msg("request failed")
		message = "internal server error"
	}
	c.Set(ErrorCodeKey, string(appErr.Code))
	c.AbortWithStatusJSON(status, errorBody{Error: message, Code: appErr.Code, Fields: appErr.Fields})
}
