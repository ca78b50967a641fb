package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes 构建 HTTP 路由：WebSocket 接入、健康检查、监控与管理接口
func (s *Server) Routes() http.Handler {
	// 连接日志以握手 session 关联，这里不再另发请求 ID
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
		r.Get("/metrics", s.HandleMetrics)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/config", s.HandleAdminConfig)
			r.Get("/world", s.HandleWorld)
		})
	})

	// 前后端分离：可选地将 / 映射到静态资源目录
	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return r
}
