package middleware

import (
	"errors"
	"net/http"
	"strings"

	"mediafeed/backend/common"
	mferrors "mediafeed/backend/common/errors"
	"mediafeed/backend/common/i18n"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey  = "user"
	ctxTokenKey = "token"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	common.AbortDetail(c, http.StatusUnauthorized, mferrors.ErrUnauthorized)
}

// CurrentActiveUser admits requests carrying a valid bearer token of an
// active user and stores that user in the context. Missing, malformed,
// expired or revoked tokens get 401; inactive users get 403.
func CurrentActiveUser(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, service.ErrInactiveUser):
			common.AbortDetail(c, http.StatusForbidden, mferrors.ErrForbidden)
			return
		case errors.Is(err, service.ErrInvalidToken):
			abortUnauthorized(c)
			return
		case err != nil:
			common.SysError("authenticate bearer token", "err", err)
			common.AbortDetail(c, http.StatusInternalServerError, i18n.Translate(mferrors.ErrInternalServer, c.GetString("lang")))
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// SuperuserAuth must run after CurrentActiveUser.
func SuperuserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c)
			return
		}
		if !user.IsSuperuser {
			common.AbortDetail(c, http.StatusForbidden, mferrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by CurrentActiveUser, or nil.
func CurrentUser(c *gin.Context) *model.User {
	value, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}

// CurrentToken returns the bearer token accepted by CurrentActiveUser.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}
