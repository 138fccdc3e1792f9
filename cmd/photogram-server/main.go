// 文件: cmd/photogram-server/main.go
package main

import (
	"PhotoGram/config"
	"PhotoGram/internal/api"
	"PhotoGram/internal/service"
	"PhotoGram/pkg/database"
	"PhotoGram/pkg/database/mongo"
	"PhotoGram/pkg/logger"
	"PhotoGram/pkg/storage"
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	// --- 1. 初始化 ---
	if err := config.LoadConfig("."); err != nil {
		log.Fatalf("FATAL: 无法加载配置: %v", err)
	}
	if err := logger.InitLogger(); err != nil {
		log.Fatalf("FATAL: 无法初始化日志: %v", err)
	}
	slog.Info("应用启动")
	defer slog.Info("应用关闭")

	// --- 2. 连接数据库 ---
	// Store 在这里构造一次，之后显式注入到各个 service，
	// 不依赖任何隐式的全局连接。
	var db database.Store
	var err error
	db, err = mongo.NewStore(context.Background(), config.C)
	if err != nil {
		slog.Error("FATAL: 无法连接到数据库", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureIndexes(context.Background()); err != nil {
		slog.Error("FATAL: 无法创建/验证数据库索引", "error", err)
		os.Exit(1)
	}
	slog.Info("数据库连接成功并已验证索引")

	// --- 3. 创建核心服务实例 ---
	blobs, err := storage.NewLocalBlobStore(config.C.Uploads.Dir)
	if err != nil {
		slog.Error("FATAL: 无法初始化上传目录", "error", err)
		os.Exit(1)
	}

	userService := service.NewUserService(db, config.C)
	photoService := service.NewPhotoService(db)
	slog.Info("业务服务创建成功")

	// --- 4. 设置并启动HTTP服务器 ---
	router := api.RegisterRoutes(photoService, userService, blobs)

	server := &http.Server{
		Addr:         config.C.Server.Port,
		Handler:      router,
		ReadTimeout:  config.C.Server.Timeout,
		WriteTimeout: config.C.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("HTTP服务器正在启动...", "地址", config.C.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("无法启动HTTP服务器", "error", err)
		os.Exit(1)
	}
}
