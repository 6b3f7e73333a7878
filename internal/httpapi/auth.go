package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/internal/auth"
)

type loginRequest struct {
	Role     string `json:"role" binding:"required,oneof=admin university spoc faculty student"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.Cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, value, maxAge, "/", "", h.Cookie.Secure, true)
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setSessionCookie(c, sess.Token, int(h.Auth.TTL().Seconds()))
	ok(c, http.StatusOK, "login successful", sess)
}

func (h *handler) logout(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
		h.fail(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	ok(c, http.StatusOK, "logged out", nil)
}

func (h *handler) me(c *gin.Context) {
	ok(c, http.StatusOK, "current session", principal(c))
}
