package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsSink 基于 WebSocket 连接的发送句柄。
// 每次发送都带写超时，卡住的对端会在超时后发送失败并被拆除。
type wsSink struct {
	ws        *websocket.Conn
	writeWait time.Duration

	closeOnce sync.Once
	closeErr  error
}

func newWSSink(ws *websocket.Conn, writeWait time.Duration) *wsSink {
	return &wsSink{ws: ws, writeWait: writeWait}
}

func (s *wsSink) Send(payload []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.TextMessage, payload)
}

// Close 尽力发送 close 帧后关闭底层连接，可重复调用
func (s *wsSink) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.closeErr = s.ws.Close()
	})
	return s.closeErr
}
