// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qna-console-go/internal/config"
	"qna-console-go/internal/handler"
	"qna-console-go/internal/middleware"
	"qna-console-go/internal/repository"
	"qna-console-go/internal/service"
	"qna-console-go/pkg/database"
	"qna-console-go/pkg/log"
	"qna-console-go/pkg/webhook"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化持久化后端并创建 Repository。
	// 存储不可用不是致命错误：任何一步失败都退化为纯内存仓库，本次会话照常工作。
	historyRepo, settingsRepo := initRepositories(cfg)

	// 4. 初始化 Service (依赖注入)
	webhookClient := webhook.NewClient(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second)
	historyService := service.NewHistoryService(historyRepo, cfg.History.Capacity)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Webhook.DefaultURL)
	askService := service.NewAskService(webhookClient, historyService, settingsService)

	// 5. 启动时恢复持久化状态
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	historyService.Load(startupCtx)
	settingsService.Load(startupCtx)
	cancelStartup()

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件、CORS 与 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), middleware.CORS(cfg.Server.AllowedOrigins), gin.Recovery())

	// 7. 注册路由：每个路由直接对应渲染器的一个意图
	apiV1 := r.Group("/api/v1")
	{
		askHandler := handler.NewAskHandler(askService)
		apiV1.POST("/ask", askHandler.Ask)
		apiV1.GET("/status", askHandler.GetStatus)
		apiV1.GET("/status/ws", askHandler.StreamStatus)

		historyHandler := handler.NewHistoryHandler(historyService)
		history := apiV1.Group("/history")
		{
			history.GET("", historyHandler.List)
			history.DELETE("", historyHandler.Clear)
			history.DELETE("/:id", historyHandler.Remove)
			history.POST("/:id/pin", historyHandler.TogglePin)
		}

		settingsHandler := handler.NewSettingsHandler(settingsService)
		settings := apiV1.Group("/settings")
		{
			settings.GET("/endpoint", settingsHandler.GetEndpoint)
			settings.PUT("/endpoint", settingsHandler.UpdateEndpoint)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	database.CloseBolt()
	log.Info("服务已优雅关闭")
}

// initRepositories 根据配置选择持久化后端。
// 默认使用本地 BoltDB 单文件；配置为 redis 时复用远端 Redis。
func initRepositories(cfg config.Config) (repository.HistoryRepository, repository.SettingsRepository) {
	switch cfg.Storage.Backend {
	case "redis":
		database.InitRedis(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		return repository.NewRedisHistoryRepository(database.RDB), repository.NewRedisSettingsRepository(database.RDB)
	case "bolt":
		if err := database.InitBolt(cfg.Storage.Bolt.Path); err != nil {
			log.Warnf("BoltDB 打开失败，历史将只保留在内存中: %v", err)
			return repository.NewMemoryHistoryRepository(), repository.NewMemorySettingsRepository()
		}
		return repository.NewBoltHistoryRepository(database.BoltDB), repository.NewBoltSettingsRepository(database.BoltDB)
	default:
		log.Warnf("未知的存储后端 '%s'，历史将只保留在内存中", cfg.Storage.Backend)
		return repository.NewMemoryHistoryRepository(), repository.NewMemorySettingsRepository()
	}
}
