package server

import (
	"sync/atomic"
	"time"
)

// Metrics 记录运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount           int64 // 广播 Tick 次数
	TotalTickNs         int64 // Tick 累计耗时（纳秒），不含异步发送
	ConnectionsAccepted int64 // 握手成功并注册的连接数
	HandshakeFailures   int64 // 握手失败数
	ConnectionsClosed   int64 // 已拆除的连接数
	CommandsApplied     int64 // 生效的移动指令
	CommandsIgnored     int64 // 被忽略的入站消息（未知文本、二进制帧、实体已不存在）
	SendsOK             int64
	SendsFailed         int64
	SendsSkipped        int64 // 上一帧发送尚未完成而跳过的次数
	BytesSent           int64
}

func (m *Metrics) IncAccepted() { atomic.AddInt64(&m.ConnectionsAccepted, 1) }
func (m *Metrics) IncHandshakeFailures() { atomic.AddInt64(&m.HandshakeFailures, 1) }
func (m *Metrics) IncClosed() { atomic.AddInt64(&m.ConnectionsClosed, 1) }
func (m *Metrics) IncCommandsApplied() { atomic.AddInt64(&m.CommandsApplied, 1) }
func (m *Metrics) IncCommandsIgnored() { atomic.AddInt64(&m.CommandsIgnored, 1) }
func (m *Metrics) IncSendsFailed() { atomic.AddInt64(&m.SendsFailed, 1) }
func (m *Metrics) IncSendsSkipped() { atomic.AddInt64(&m.SendsSkipped, 1) }

func (m *Metrics) AddSent(n int) {
	atomic.AddInt64(&m.SendsOK, 1)
	atomic.AddInt64(&m.BytesSent, int64(n))
}

func (m *Metrics) AddTick(d time.Duration) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, d.Nanoseconds())
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"ticks":                tick,
		"avg_tick_ms":          avgMs,
		"connections_accepted": atomic.LoadInt64(&m.ConnectionsAccepted),
		"handshake_failures":   atomic.LoadInt64(&m.HandshakeFailures),
		"connections_closed":   atomic.LoadInt64(&m.ConnectionsClosed),
		"commands_applied":     atomic.LoadInt64(&m.CommandsApplied),
		"commands_ignored":     atomic.LoadInt64(&m.CommandsIgnored),
		"sends_ok":             atomic.LoadInt64(&m.SendsOK),
		"sends_failed":         atomic.LoadInt64(&m.SendsFailed),
		"sends_skipped":        atomic.LoadInt64(&m.SendsSkipped),
		"bytes_sent":           atomic.LoadInt64(&m.BytesSent),
	}
}
