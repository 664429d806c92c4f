package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// Message is the data payload of endpoints that only confirm an action.
type Message struct {
	Message string `json:"message"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload})
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: payload})
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, Envelope{
		Error: &APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders caller errors as they are and hides everything
// else behind a logged 500.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, apierr.StatusOf(ae), ae.Code, ae)
		return
	}
	if log != nil {
		log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
		Error: &APIError{Message: "internal server error", Code: apierr.CodeInternal},
	})
}
