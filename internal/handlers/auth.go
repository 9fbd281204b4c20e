package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest binds the body into dst, writing a 400 envelope on
// failure. Returns false if the request was already handled.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": statusError, "message": err.Error()})
		return false
	}
	return true
}

// @Summary      Create account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signUpRequest  true  "Account details"
// @Success      201  {object}  map[string]interface{}  "token, user"
// @Failure      400  {object}  map[string]string
// @Router       /api/auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input signUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.SignUp(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		h.respondError(c, err, "sign_up_failed", "email", input.Email)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": statusSuccess,
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  loginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "token, user"
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err, "login_failed", "email", input.Email)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// @Summary      Log out
// @Description  Revokes the presented token for the rest of the process lifetime.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	if token := c.GetString(ctxTokenKey); token != "" {
		h.services.Logout(token)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "logged out successfully",
	})
}

// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  statusError,
			"message": "please log in to access this resource",
		})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}
