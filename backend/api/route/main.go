package route

import (
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies the routes are served from.
type Services struct {
	Posts  *service.PostService
	Lander *service.Lander
	Auth   *service.AuthService
	Users  *service.UserManager
}

func SetRouter(route *gin.Engine, services Services) {
	SetApiRouter(route, services)
	setUploadRouter(route, services.Lander)
}
