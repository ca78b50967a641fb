package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HandleWS WebSocket 接入。net/http 为每个请求单独起协程，
// 一个慢握手不会阻塞后续连接的接入。
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	session := uuid.NewString()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已经向客户端写回了 HTTP 错误，这里不创建任何状态
		s.metrics.IncHandshakeFailures()
		s.log.Warnw("upgrade failed", "session", session, "remote", r.RemoteAddr, "error", err)
		return
	}

	id := s.register(newWSSink(ws, s.cfg.SendTimeout))
	s.log.Infow("connection registered", "id", id, "session", session, "remote", r.RemoteAddr)

	go s.readPump(id, ws)
}

// readPump 每个连接一个：读取文本指令并更新实体，流结束或出错时拆除连接
func (s *Server) readPump(id ConnID, ws *websocket.Conn) {
	done := make(chan struct{})
	reason := "stream closed"
	defer func() {
		close(done)
		s.disconnect(id, reason)
	}()
	go s.pingLoop(ws, done)

	ws.SetReadLimit(s.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		mt, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				reason = "read error"
				s.log.Infow("unexpected close", "id", id, "error", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			s.metrics.IncCommandsIgnored()
			continue
		}
		s.handleCommand(id, string(payload))
	}
}

// handleCommand 解析并应用一条指令；无法识别的文本直接忽略
func (s *Server) handleCommand(id ConnID, text string) {
	s.log.Debugw("received", "id", id, "msg", text)

	dir := ParseDirection(text)
	if dir == DirNone {
		s.metrics.IncCommandsIgnored()
		return
	}
	pos, ok := s.entities.Move(id, dir)
	if !ok {
		s.metrics.IncCommandsIgnored()
		return
	}
	s.metrics.IncCommandsApplied()
	s.log.Debugw("moved", "id", id, "dir", dir, "x", pos.X, "y", pos.Y)
}

// pingLoop 定期发送 ping；WriteControl 可与数据帧写入并发调用
func (s *Server) pingLoop(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.SendTimeout)); err != nil {
				return
			}
		}
	}
}

// checkOrigin 按配置的来源白名单校验握手请求，"*" 允许所有来源；
// 与 CORS 一样按完整来源比较
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		n, err := normalizeOrigin(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, n) {
				return true
			}
		}
		return false
	}
}
