package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server 持有共享的世界状态与连接注册表，并驱动广播循环。
//
// 实体表与注册表分别加锁、独立更新，所以顺序是约定好的：
// 注册时先建实体再登记句柄，拆除时先删句柄再删实体，
// 注册表中的 ID 因此总能找到对应实体。
type Server struct {
	cfg      Config
	log      *zap.SugaredLogger
	ids      IDAllocator
	entities *EntityStore
	registry *Registry
	metrics  *Metrics
	upgrader websocket.Upgrader

	sends sync.WaitGroup // 在途的发送单元
}

func NewServer(cfg Config, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		entities: NewEntityStore(),
		registry: NewRegistry(),
		metrics:  &Metrics{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
	}
}

// register 为新连接分配 ID、在原点创建实体并登记发送句柄
func (s *Server) register(sink Sink) ConnID {
	id := s.ids.Next()
	s.entities.Insert(id)
	s.registry.Register(id, sink)
	s.metrics.IncAccepted()
	return id
}

// disconnect 是连接消失时唯一的清理入口，读端结束、发送失败、进程退出都走这里。
// 重复调用是安全的。
func (s *Server) disconnect(id ConnID, reason string) {
	sink, registered := s.registry.Remove(id)
	removed := s.entities.Remove(id)
	if registered {
		_ = sink.Close()
	}
	if registered || removed {
		s.metrics.IncClosed()
		s.log.Infow("connection closed", "id", id, "reason", reason)
	}
}

// CloseAll 拆除所有仍然在线的连接
func (s *Server) CloseAll() {
	for _, id := range s.registry.IDs() {
		s.disconnect(id, "server shutdown")
	}
}

// Shutdown 先停止 HTTP 监听，之后不会再有新连接注册，再拆除已升级的连接
func (s *Server) Shutdown(ctx context.Context, hs *http.Server) error {
	err := hs.Shutdown(ctx)
	s.CloseAll()
	return err
}
