package server

import (
	"context"
	"errors"
	"time"
)

// Run 启动广播循环，直到 ctx 被取消；返回前等待在途发送结束
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	defer s.sends.Wait()

	s.log.Infow("broadcast loop started", "interval", s.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick 执行一次广播：快照 → 编码一次 → 每个连接独立发送。
// 本函数不等待发送完成，慢连接不会拖慢其它连接或下一帧。
func (s *Server) Tick() {
	start := time.Now()

	payload, err := EncodeSnapshot(s.entities.Snapshot())
	if err != nil {
		s.log.DPanicw("encoding snapshot", "error", err)
		return
	}

	for _, id := range s.registry.IDs() {
		sink, err := s.registry.CheckOut(id)
		if err != nil {
			// 上一帧的发送还没结束：本帧跳过，不排队
			if errors.Is(err, ErrInFlight) {
				s.metrics.IncSendsSkipped()
			}
			continue
		}
		s.sends.Add(1)
		go s.deliver(id, sink, payload)
	}

	s.metrics.AddTick(time.Since(start))
}

// deliver 一个发送单元：成功则归还句柄，失败则拆除连接
func (s *Server) deliver(id ConnID, sink Sink, payload []byte) {
	defer s.sends.Done()

	if err := sink.Send(payload); err != nil {
		s.metrics.IncSendsFailed()
		s.log.Debugw("send failed", "id", id, "error", err)
		s.disconnect(id, "send failed")
		return
	}
	s.metrics.AddSent(len(payload))
	if !s.registry.Return(id, sink) {
		// 发送期间连接已被拆除，丢弃句柄
		s.log.Debugw("connection gone during send", "id", id)
	}
}
