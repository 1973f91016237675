// Package server 提供求解服务的 HTTP 服务器封装与路由。
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/config"
)

const shutdownTimeout = 10 * time.Second

// GinServer 封装了标准的 http.Server，用于运行 Gin 引擎，并提供优雅的启动和关闭。
type GinServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewGinServer 按配置创建服务器，Addr 为空时监听所有地址。
func NewGinServer(engine *gin.Engine, cfg config.ServerConfig, logger *slog.Logger) *GinServer {
	return &GinServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Addr 返回监听地址。
func (s *GinServer) Addr() string { return s.server.Addr }

// Start 启动服务器并阻塞；ctx 取消时执行优雅关闭。
func (s *GinServer) Start(ctx context.Context) error {
	s.logger.Info("starting http server", "addr", s.server.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("http server stopping due to context cancellation")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Stop 优雅地停止服务器。
func (s *GinServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server gracefully")
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
