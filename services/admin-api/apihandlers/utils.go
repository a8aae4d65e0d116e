package apihandlers

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduadmin/school-backend/pkg/accounts"
	mw "github.com/eduadmin/school-backend/pkg/apihelpers/middlewares"
)

// sendSuccess writes the response envelope used by all endpoints.
func sendSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func sendError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	var vErr *accounts.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, accounts.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, accounts.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, accounts.ErrAlreadyVerified),
		errors.Is(err, accounts.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidCode),
		errors.Is(err, accounts.ErrCodeExpired),
		errors.Is(err, accounts.ErrAccountNotVerified),
		errors.Is(err, accounts.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func sendServiceError(c *gin.Context, err error) {
	sendError(c, statusForError(err), err.Error())
}

func (h *HttpEndpoints) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		mw.SESSION_COOKIE_NAME,
		token,
		int(h.tokenExpiresIn.Seconds()),
		"/",
		"",
		h.useSecureCookies,
		true,
	)
}

func (h *HttpEndpoints) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		mw.SESSION_COOKIE_NAME,
		"",
		-1,
		"/",
		"",
		h.useSecureCookies,
		true,
	)
}

// randomWait makes response timing less useful for account probing.
func randomWait(maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec*1000)) * time.Millisecond)
}
