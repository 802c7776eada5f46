package router

import (
	"net/http"

	_ "github.com/3Eeeecho/go-docmanager/docs"
	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/handlers"
	"github.com/3Eeeecho/go-docmanager/internal/middlewares"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/cache"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// multipart 头部和表单字段的额外余量
const uploadOverhead = 1 << 20

func InitRouter(
	authHandler *handlers.AuthHandler,
	folderHandler *handlers.FolderHandler,
	fileHandler *handlers.FileHandler,
	userHandler *handlers.UserHandler,
	blocklist cache.TokenBlocklist,
	cfg *config.Config,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middlewares.RequestLogger(), middlewares.Recovery())

	// Health Check 路由
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authRequired := middlewares.AuthMiddleware(cfg, blocklist)

	v1 := router.Group("/api/v1")
	{
		// 认证相关路由
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", middlewares.RateLimit(cfg.RateLimit), authHandler.Login)
			authGroup.GET("/check-username/:username", authHandler.CheckUsername)
			authGroup.GET("/check-email/:email", authHandler.CheckEmail)

			authGroup.GET("/me", authRequired, authHandler.Me)
			authGroup.POST("/logout", authRequired, authHandler.Logout)
			authGroup.PUT("/password", authRequired, authHandler.ChangePassword)
		}

		// 目录相关路由
		folderGroup := v1.Group("/folders", authRequired)
		{
			folderGroup.POST("", folderHandler.CreateFolder)
			folderGroup.GET("", folderHandler.ListFolders)
			folderGroup.GET("/:id", folderHandler.GetFolder)
			folderGroup.PUT("/:id", folderHandler.RenameFolder)
			folderGroup.PUT("/:id/move", folderHandler.MoveFolder)
			folderGroup.DELETE("/:id", folderHandler.DeleteFolder)
			folderGroup.DELETE("/:id/force", middlewares.AdminOnly(), folderHandler.ForceDeleteFolder)
			folderGroup.GET("/:id/breadcrumb", folderHandler.Breadcrumb)
			folderGroup.GET("/:id/archive", folderHandler.ArchiveFolder)
		}

		// 文件相关路由
		fileGroup := v1.Group("/files", authRequired)
		{
			uploadLimit := middlewares.UploadBodyLimit(cfg.Storage.MaxUploadBytes() + uploadOverhead)
			fileGroup.POST("/upload", uploadLimit, fileHandler.UploadFiles)
			fileGroup.GET("", fileHandler.ListFiles)
			fileGroup.GET("/recent", fileHandler.RecentFiles)
			fileGroup.GET("/download/:id", fileHandler.DownloadFile)
			fileGroup.GET("/:id", fileHandler.GetFile)
			fileGroup.POST("/:id/open", fileHandler.OpenFile)
			fileGroup.PATCH("/open/:id", fileHandler.OpenFile)
			fileGroup.DELETE("/:id", fileHandler.DeleteFile)
		}

		// 管理员路由
		adminGroup := v1.Group("/admin", authRequired, middlewares.AdminOnly())
		{
			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.POST("/users/:id/roles", userHandler.AssignRole)
			adminGroup.DELETE("/users/:id/roles/:role", userHandler.RemoveRole)
			adminGroup.PUT("/users/:id/active", userHandler.SetActive)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		xerr.Error(c, http.StatusNotFound, xerr.NotFoundCode, "Route not found")
	})

	return router
}
