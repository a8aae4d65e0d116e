package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduadmin/school-backend/pkg/accounts"
	mw "github.com/eduadmin/school-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/eduadmin/school-backend/pkg/jwt-handling"
	"github.com/eduadmin/school-backend/pkg/utils"
)

var allowedPhotoTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailReq struct {
	Code string `json:"otp"`
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

type resetPasswordReq struct {
	Password string `json:"password"`
}

// AddAccountAPI mounts the credential lifecycle endpoints for one account kind
// under /{pathSegment}. The service decides the role; admins can additionally
// manage accounts of the other kinds through the /profile/:id variants.
func (h *HttpEndpoints) AddAccountAPI(rg *gin.RouterGroup, pathSegment string, svc *accounts.Service) {
	grp := rg.Group("/" + pathSegment)

	grp.POST("/register", h.registerHandl(svc))
	grp.POST("/:id/verify-email", mw.RequirePayload(), h.verifyEmailHandl(svc))
	grp.POST("/signin", mw.RequirePayload(), h.signInHandl(svc))
	grp.POST("/signout", h.signOutHandl())
	grp.POST("/forgot-password", mw.RequirePayload(), h.forgotPasswordHandl(svc))
	grp.POST("/reset-password", mw.RequirePayload(), h.resetPasswordHandl(svc))

	authed := grp.Group("")
	authed.Use(mw.GetAndValidateSessionToken(h.tokenSignKey, svc.Role(), accounts.ROLE_ADMIN))
	{
		authed.GET("", h.listAccountsHandl(svc))
		authed.GET("/profile", h.getProfileHandl(svc, false))
		authed.PUT("/profile", h.updateProfileHandl(svc, false))
		authed.DELETE("/profile", h.deleteAccountHandl(svc, false))
		authed.GET("/profile/:id", h.getProfileHandl(svc, true))
		authed.PUT("/profile/:id", h.updateProfileHandl(svc, true))
		authed.DELETE("/profile/:id", h.deleteAccountHandl(svc, true))
	}
}

func (h *HttpEndpoints) registerHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := accounts.RegisterInput{
			Name:     c.PostForm("name"),
			Email:    c.PostForm("email"),
			Password: c.PostForm("password"),
		}

		fileHeader, err := c.FormFile("photo")
		if err == nil {
			contentType, err := utils.ValidateFileTypeFromContent(fileHeader, allowedPhotoTypes)
			if err != nil {
				sendError(c, http.StatusBadRequest, "unsupported photo format")
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				sendError(c, http.StatusInternalServerError, "failed to read photo")
				return
			}
			defer file.Close()

			input.Photo = &accounts.PhotoUpload{
				FileName:    fileHeader.Filename,
				ContentType: contentType,
				Size:        fileHeader.Size,
				Content:     file,
			}
		}

		if err := svc.Register(c.Request.Context(), input); err != nil {
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusCreated, "A verification email has been sent.", nil)
	}
}

func (h *HttpEndpoints) verifyEmailHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyEmailReq
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "invalid payload")
			return
		}

		token, err := svc.VerifyEmail(c.Request.Context(), c.Param("id"), req.Code)
		if err != nil {
			sendServiceError(c, err)
			return
		}

		h.setSessionCookie(c, token)
		sendSuccess(c, http.StatusOK, "Email verified successfully.", nil)
	}
}

func (h *HttpEndpoints) signInHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signInReq
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "invalid payload")
			return
		}

		account, token, err := svc.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			randomWait(5)
			sendServiceError(c, err)
			return
		}

		h.setSessionCookie(c, token)
		sendSuccess(c, http.StatusOK, "Signed in successfully.", account)
	}
}

func (h *HttpEndpoints) signOutHandl() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.clearSessionCookie(c)
		sendSuccess(c, http.StatusOK, "Signed out successfully.", nil)
	}
}

func (h *HttpEndpoints) forgotPasswordHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forgotPasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "invalid payload")
			return
		}

		if err := svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
			randomWait(5)
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, "A password reset email has been sent.", nil)
	}
}

func (h *HttpEndpoints) resetPasswordHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "invalid payload")
			return
		}

		accountID := c.Query("id")
		token := c.Query("token")

		if err := svc.CompletePasswordReset(c.Request.Context(), accountID, token, req.Password); err != nil {
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, "Password has been reset.", nil)
	}
}

func (h *HttpEndpoints) listAccountsHandl(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListAccounts(c.Request.Context())
		if err != nil {
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, "Accounts fetched.", list)
	}
}

// targetAccountID resolves the account a profile endpoint acts on: the path id
// when the route carries one, otherwise the signed-in account from the token.
func targetAccountID(c *gin.Context, fromPath bool) string {
	if fromPath {
		return c.Param("id")
	}
	token := c.MustGet("validatedToken").(*jwthandling.AccountUserClaims)
	return token.Subject
}

func (h *HttpEndpoints) getProfileHandl(svc *accounts.Service, fromPath bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := svc.GetProfile(c.Request.Context(), targetAccountID(c, fromPath))
		if err != nil {
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, "Profile fetched.", account)
	}
}

func (h *HttpEndpoints) updateProfileHandl(svc *accounts.Service, fromPath bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch := accounts.ProfilePatch{
			Name:            c.PostForm("name"),
			Email:           c.PostForm("email"),
			CurrentPassword: c.PostForm("currentPassword"),
			NewPassword:     c.PostForm("newPassword"),
		}

		fileHeader, err := c.FormFile("photo")
		if err == nil {
			contentType, err := utils.ValidateFileTypeFromContent(fileHeader, allowedPhotoTypes)
			if err != nil {
				sendError(c, http.StatusBadRequest, "unsupported photo format")
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				sendError(c, http.StatusInternalServerError, "failed to read photo")
				return
			}
			defer file.Close()

			patch.Photo = &accounts.PhotoUpload{
				FileName:    fileHeader.Filename,
				ContentType: contentType,
				Size:        fileHeader.Size,
				Content:     file,
			}
		}

		account, err := svc.UpdateProfile(c.Request.Context(), targetAccountID(c, fromPath), patch)
		if err != nil {
			sendServiceError(c, err)
			return
		}
		sendSuccess(c, http.StatusOK, "Profile updated.", account)
	}
}

func (h *HttpEndpoints) deleteAccountHandl(svc *accounts.Service, fromPath bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := targetAccountID(c, fromPath)

		if err := svc.DeleteAccount(c.Request.Context(), accountID); err != nil {
			sendServiceError(c, err)
			return
		}

		if !fromPath {
			h.clearSessionCookie(c)
		}
		sendSuccess(c, http.StatusOK, "Account deleted.", nil)
	}
}
