package route

import (
	"mediafeed/backend/api/handler"
	"mediafeed/backend/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetApiRouter(route *gin.Engine, services Services) {
	postHandler := handler.NewPostHandler(services.Posts)
	userHandler := handler.NewUserHandler(services.Auth, services.Users)
	activeUser := middleware.CurrentActiveUser(services.Auth)

	// Post routes are public
	route.GET("/", handler.Root)
	route.POST("/upload_file", postHandler.UploadFile)
	route.GET("/feed", postHandler.GetFeed)
	route.DELETE("/post/:post_id", postHandler.DeletePost)

	authRoutes := route.Group("/auth")
	{
		authRoutes.POST("/jwt/login", userHandler.Login)
		authRoutes.POST("/jwt/logout", activeUser, userHandler.Logout)
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/forgot-password", userHandler.ForgotPassword)
		authRoutes.POST("/reset-password", userHandler.ResetPassword)
		authRoutes.POST("/request-verify-token", userHandler.RequestVerifyToken)
		authRoutes.POST("/verify", userHandler.Verify)
	}

	userRoute := route.Group("/users")
	userRoute.Use(activeUser)
	{
		userRoute.GET("/me", userHandler.GetSelf)
		userRoute.PATCH("/me", userHandler.UpdateSelf)

		adminRoute := userRoute.Group("")
		adminRoute.Use(middleware.SuperuserAuth())
		{
			adminRoute.GET("", handler.GetAllUsers)
			adminRoute.GET("/:id", handler.GetUser)
			adminRoute.PATCH("/:id", userHandler.UpdateUser)
			adminRoute.DELETE("/:id", userHandler.DeleteUser)
		}
	}
}
