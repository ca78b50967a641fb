package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gridsync/server"
)

// gridsync 入口：加载配置，启动 HTTP + WebSocket 服务和广播循环
func main() {
	var addr, envFile string
	flag.StringVar(&addr, "addr", "", "server listen address, overrides GRIDSYNC_ADDR, e.g. 127.0.0.1:8080")
	flag.StringVar(&envFile, "env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := server.LoadConfig(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// 使用第三方 zap 日志库写入滚动日志文件
	if err := server.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer server.SyncLogger()
	log := server.Log

	srv := server.NewServer(cfg, log)

	// 监听失败是唯一的致命错误
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	httpSrv := &http.Server{Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("gridsync listening on %s", ln.Addr())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx, httpSrv)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("exit: %v", err)
	}
}
