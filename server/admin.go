package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 返回当前生效的运行配置（只读，广播周期在启动时确定）
// GET /admin/config
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		Addr           string   `json:"addr"`
		TickInterval   string   `json:"tickInterval"`
		SendTimeout    string   `json:"sendTimeout"`
		PingInterval   string   `json:"pingInterval"`
		PongWait       string   `json:"pongWait"`
		ReadLimit      int64    `json:"readLimit"`
		LogLevel       string   `json:"logLevel"`
		AllowedOrigins []string `json:"allowedOrigins"`
	}
	writeJSON(w, cfg{
		Addr:           s.cfg.Addr,
		TickInterval:   s.cfg.TickInterval.String(),
		SendTimeout:    s.cfg.SendTimeout.String(),
		PingInterval:   s.cfg.PingInterval.String(),
		PongWait:       s.cfg.PongWait.String(),
		ReadLimit:      s.cfg.ReadLimit,
		LogLevel:       s.cfg.LogLevel,
		AllowedOrigins: s.cfg.AllowedOrigins,
	})
}

// HandleMetrics 输出运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"connections": s.registry.Len(),
		"entities":    s.entities.Len(),
		"metrics":     s.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

// HandleWorld 输出当前世界快照，编码与广播一致
// GET /admin/world
func (s *Server) HandleWorld(w http.ResponseWriter, r *http.Request) {
	b, err := EncodeSnapshot(s.entities.Snapshot())
	if err != nil {
		http.Error(w, "encoding snapshot", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
