package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/auth/oauth"
)

type registerRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	DisplayName *string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type resetRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type resetConfirmBody struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.Register(c.Request.Context(), authdomain.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pair, err := s.authsvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (s *Server) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pair, err := s.authsvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, authdomain.ErrInvalidCredentials)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (s *Server) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, authdomain.ErrInvalidCredentials)
		return
	}

	var req changePasswordBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "password updated"})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, authdomain.ErrInvalidCredentials)
		return
	}

	if err := s.authsvc.DeactivateAndAnonymize(c.Request.Context(), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPasswordReset acknowledges with the same body and status whether or
// not the account exists.
func (s *Server) RequestPasswordReset(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authsvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": authdomain.ResetRequestAck})
}

func (s *Server) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authsvc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "password has been reset"})
}

func (s *Server) OAuthLogin(c *gin.Context) {
	url, err := s.oauthsvc.AuthorizationURL(c.Param("provider"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorization_url": url})
}

func (s *Server) OAuthCallback(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))

	var ex oauth.Exchange
	if err := c.ShouldBindJSON(&ex); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	identity, err := s.oauthsvc.ExchangeAndIdentify(c.Request.Context(), provider, ex)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pair, err := s.authsvc.FederatedLogin(c.Request.Context(), provider, identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}
