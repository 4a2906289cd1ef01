package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"mediafeed/backend/api/middleware"
	"mediafeed/backend/common"
	mferrors "mediafeed/backend/common/errors"
	"mediafeed/backend/common/i18n"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type emailPayload struct {
	Email string `json:"email"`
}

type resetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type verifyPayload struct {
	Token string `json:"token"`
}

// UserHandler serves the /auth and /users routes.
type UserHandler struct {
	auth  *service.AuthService
	users *service.UserManager
}

func NewUserHandler(auth *service.AuthService, users *service.UserManager) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func invalidParam(c *gin.Context, err error) {
	common.RespDetail(c, http.StatusBadRequest, i18n.InvalidParamError(c.GetString("lang"), err.Error()).Error())
}

func internalError(c *gin.Context, op string, err error) {
	common.SysError(op, "err", err)
	common.RespDetail(c, http.StatusInternalServerError, i18n.InternalServerError(c.GetString("lang")).Error())
}

// Login godoc
// @Summary Exchange email and password for a bearer token
// @Accept x-www-form-urlencoded
// @Param username formData string true "email"
// @Param password formData string true "password"
// @Success 200 {object} TokenResponse
// @Router /auth/jwt/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		invalidParam(c, errors.New("username and password are required"))
		return
	}

	token, err := h.users.Login(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			common.RespDetail(c, http.StatusBadRequest, mferrors.ErrLoginBadCredentials)
			return
		}
		internalError(c, "login failed", err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		internalError(c, "logout failed", err)
		return
	}
	common.RespNoContent(c)
}

func (h *UserHandler) Register(c *gin.Context) {
	var create service.UserCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		invalidParam(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), create)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user.Read())
	case errors.Is(err, service.ErrUserAlreadyExists):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrRegisterUserAlreadyExists)
	case errors.Is(err, service.ErrInvalidPassword):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrRegisterInvalidPassword)
	case errors.Is(err, service.ErrInvalidUserInput):
		invalidParam(c, err)
	default:
		internalError(c, "register failed", err)
	}
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var payload emailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidParam(c, err)
		return
	}
	if err := h.users.ForgotPassword(c.Request.Context(), payload.Email); err != nil {
		internalError(c, "forgot password failed", err)
		return
	}
	c.JSON(http.StatusAccepted, nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var payload resetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidParam(c, err)
		return
	}

	_, err := h.users.ResetPassword(c.Request.Context(), payload.Token, payload.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, nil)
	case errors.Is(err, service.ErrBadResetToken):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrResetPasswordBadToken)
	case errors.Is(err, service.ErrInvalidPassword):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrResetPasswordInvalidPass)
	default:
		internalError(c, "reset password failed", err)
	}
}

func (h *UserHandler) RequestVerifyToken(c *gin.Context) {
	var payload emailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidParam(c, err)
		return
	}
	if err := h.users.RequestVerify(c.Request.Context(), payload.Email); err != nil {
		internalError(c, "request verify failed", err)
		return
	}
	c.JSON(http.StatusAccepted, nil)
}

func (h *UserHandler) Verify(c *gin.Context) {
	var payload verifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidParam(c, err)
		return
	}

	user, err := h.users.Verify(c.Request.Context(), payload.Token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user.Read())
	case errors.Is(err, service.ErrBadVerifyToken):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrVerifyUserBadToken)
	case errors.Is(err, service.ErrAlreadyVerified):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrVerifyUserAlreadyVerified)
	default:
		internalError(c, "verify failed", err)
	}
}

func (h *UserHandler) GetSelf(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Read())
}

func (h *UserHandler) UpdateSelf(c *gin.Context) {
	h.update(c, middleware.CurrentUser(c), true)
}

func (h *UserHandler) update(c *gin.Context, user *model.User, safe bool) {
	var patch service.UserUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidParam(c, err)
		return
	}

	updated, err := h.users.Update(c.Request.Context(), user, patch, safe)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, updated.Read())
	case errors.Is(err, service.ErrEmailAlreadyExists):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrUpdateUserEmailExists)
	case errors.Is(err, service.ErrInvalidPassword):
		common.RespDetail(c, http.StatusBadRequest, mferrors.ErrUpdateUserInvalidPassword)
	case errors.Is(err, service.ErrInvalidUserInput):
		invalidParam(c, err)
	default:
		internalError(c, "update user failed", err)
	}
}

func GetAllUsers(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	if maxPage := math.MaxInt32 / common.ItemsPerPage; p > maxPage {
		p = maxPage
	}
	users, err := model.GetAllUsers(p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		internalError(c, "list users failed", err)
		return
	}
	resp := make([]model.UserRead, 0, len(users))
	for _, user := range users {
		resp = append(resp, user.Read())
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// userFromParam loads the user named by the :id path parameter or responds
// 404, or 500 when the store fails.
func userFromParam(c *gin.Context) (*model.User, bool) {
	lang := c.GetString("lang")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespDetail(c, http.StatusNotFound, mferrors.ErrUserNotFound)
		return nil, false
	}
	user, err := model.GetUserById(id, lang)
	if i18n.IsErrorCode(err, mferrors.ErrUserNotFound) || i18n.IsErrorCode(err, mferrors.ErrEmptyID) {
		common.RespDetail(c, http.StatusNotFound, mferrors.ErrUserNotFound)
		return nil, false
	}
	if err != nil {
		internalError(c, "get user failed", err)
		return nil, false
	}
	return user, true
}

func GetUser(c *gin.Context) {
	user, ok := userFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.Read())
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	user, ok := userFromParam(c)
	if !ok {
		return
	}
	h.update(c, user, false)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, ok := userFromParam(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), user); err != nil {
		internalError(c, "delete user failed", err)
		return
	}
	common.RespNoContent(c)
}
