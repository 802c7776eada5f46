package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/handlers"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/cache"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"github.com/3Eeeecho/go-docmanager/internal/router"
	"github.com/3Eeeecho/go-docmanager/internal/services/admin"
	"github.com/3Eeeecho/go-docmanager/internal/services/explorer"
	"github.com/3Eeeecho/go-docmanager/internal/setup"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
}

// NewServer 负责构建所有依赖
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	// 初始化数据库连接
	db, err := setup.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 初始化 Redis 连接，未配置时为 nil
	redisClient, err := setup.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		setup.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var blocklist cache.TokenBlocklist = cache.NewMemoryCache()
	if redisClient != nil {
		blocklist = cache.NewRedisCache(redisClient)
	}

	ss, err := setup.InitStorage(ctx, cfg)
	if err != nil {
		setup.CloseRedis(redisClient)
		setup.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	//  初始化 Repositories
	userRepo := repositories.NewUserRepository(db)
	folderRepo := repositories.NewFolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)

	if err := userRepo.EnsureRoles(ctx, authz.RoleAdmin, authz.RoleUser); err != nil {
		return nil, fmt.Errorf("failed to seed roles: %w", err)
	}

	//  初始化 Services
	tm := explorer.NewTransactionManager(db)
	domainService := explorer.NewDomainService(folderRepo, fileRepo)
	authService := admin.NewAuthService(userRepo, tm, blocklist, cfg)
	userService := admin.NewUserService(userRepo)
	folderService := explorer.NewFolderService(folderRepo, fileRepo, domainService, tm, ss)
	fileService := explorer.NewFileService(fileRepo, domainService, tm, ss, cfg)

	if err := userService.BootstrapAdmin(ctx, cfg.Admin); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	//  初始化 Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	folderHandler := handlers.NewFolderHandler(folderService)
	fileHandler := handlers.NewFileHandler(fileService)
	userHandler := handlers.NewUserHandler(userService)

	// 初始化 Gin 引擎和注册路由
	engine := router.InitRouter(authHandler, folderHandler, fileHandler, userHandler, blocklist, cfg)

	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return &Server{
		router:      engine,
		httpServer:  httpServer,
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
	}, nil
}

// Run 启动 HTTP 服务器并处理优雅关机
func (s *Server) Run(stopChan chan os.Signal) {
	defer setup.CloseDatabase(s.db)
	defer setup.CloseRedis(s.redisClient)

	// 启动 HTTP 服务器
	go func() {
		logger.Info(fmt.Sprintf("Server is running on %s", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 等待停止信号
	<-stopChan
	logger.Info("Shutting down server...")

	// 优雅关机
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("Server exited gracefully")
}
