package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRespondOK(t *testing.T) {
	rec, env := run(t, func(c *gin.Context) { RespondOK(c, Message{Message: "done"}) })
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.Nil(t, env.Error)
	require.JSONEq(t, `{"success":true,"data":{"message":"done"}}`, rec.Body.String())
}

func TestRespondAPIErrorKeepsCallerErrors(t *testing.T) {
	err := fmt.Errorf("load: %w", apierr.NotFound("ticket not found"))
	rec, env := run(t, func(c *gin.Context) { RespondAPIError(c, logger.Nop(), err) })
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "ticket not found", env.Error.Message)
	require.Equal(t, apierr.CodeNotFound, env.Error.Code)
}

func TestRespondAPIErrorHidesInternalErrors(t *testing.T) {
	rec, env := run(t, func(c *gin.Context) { RespondAPIError(c, logger.Nop(), errors.New("dial tcp: refused")) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, apierr.CodeInternal, env.Error.Code)
	require.NotContains(t, rec.Body.String(), "refused")
}
