package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
	"sitterboard/internal/http/middleware"
)

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
}

func callerFrom(c *gin.Context) (user.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return user.Caller{}, errUnauthorized()
	}
	return caller, nil
}

// idParam parses a uuid path parameter. Malformed ids cannot name an existing
// record, so they report not found rather than a validation error.
func idParam(c *gin.Context, name, what string) (common.UUID, error) {
	id, err := common.ParseUUID(c.Param(name))
	if err != nil {
		return "", common.NewError(common.CodeNotFound, what+" not found", err)
	}
	return id, nil
}

func decodeJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return common.NewValidationError("request body too large", nil)
		}
		return common.NewValidationError("invalid json body", map[string]string{"body": err.Error()})
	}
	return nil
}

// bindLenient ignores a body it cannot decode. The service then reports the
// missing values after its existence and ownership checks.
func bindLenient(c *gin.Context, dst any) {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("ignoring unreadable request body")
	}
}
