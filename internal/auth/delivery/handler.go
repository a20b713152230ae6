package delivery

import (
	"net/http"

	"recommend-backend/internal/apperr"
	authdomain "recommend-backend/internal/auth/domain"
	authdto "recommend-backend/internal/auth/dto"
	"recommend-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionUsecase usecase.SessionUsecase
	cookies        CookiePolicy
}

func NewSessionHandler(sessionUc usecase.SessionUsecase, cookies CookiePolicy) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUc,
		cookies:        cookies,
	}
}

// IssueSession signs the posted identity and stores it in the session cookie.
func (h *SessionHandler) IssueSession(c *gin.Context) {
	var claims authdomain.Claims
	if err := c.ShouldBindJSON(&claims); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, _, err := h.sessionUsecase.IssueSession(claims)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.cookies.SetSessionCookie(c, token)
	c.JSON(http.StatusOK, authdto.SessionResponse{Success: true})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.cookies.ClearSessionCookie(c)
	c.JSON(http.StatusOK, authdto.SessionResponse{Success: true})
}

// Me must run behind AuthMiddleware.
func (h *SessionHandler) Me(c *gin.Context) {
	v, _ := c.Get(UserKey)
	claims, ok := v.(authdomain.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
		return
	}
	c.JSON(http.StatusOK, authdto.MeResponse{User: claims})
}
