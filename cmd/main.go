package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/3Eeeecho/go-docmanager/cmd/server"
	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"go.uber.org/zap"
)

// @title Go DocManager API
// @version 1.0
// @description 多用户文档管理服务
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer {token}
func main() {
	configPath := flag.String("config", "", "配置文件路径，默认在 . 和 ./configs 下查找 config.yaml")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("加载配置出错", zap.Error(err))
	}

	//初始化日志系统
	logger.InitLogger(cfg.Log)
	defer logger.Sync() // 确保在应用退出时刷新所有缓冲的日志条目

	logger.Info("启动文档管理服务...")

	// 创建并构建应用服务器实例
	srv, err := server.NewServer(context.Background(), cfg)
	if err != nil {
		logger.Fatal("无法启动应用程序", zap.Error(err))
	}

	// 创建一个通道用于接收停止信号
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器
	srv.Run(stopChan)

	logger.Info("文档管理服务已退出。")
}
