package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bidgate-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError renders err with the status its code maps to. Internal
// failures are logged upstream and reported without their message.
func RespondError(c *gin.Context, err error, details any) {
	ae := apierr.From(err)
	msg := "unknown error"
	if ae != nil {
		msg = ae.Error()
	}
	status := http.StatusInternalServerError
	code := ""
	if ae != nil {
		status, code = ae.Status, ae.Code
	}
	if status >= 500 {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Details: details,
		},
	})
}

// RespondBadRequest reports a malformed request body or parameter.
func RespondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{Message: err.Error(), Code: "invalid_request"},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
