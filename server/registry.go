package server

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotRegistered 连接不在注册表中（尚未注册或已拆除）
	ErrNotRegistered = errors.New("connection not registered")
	// ErrInFlight 该连接已有一次发送在进行中
	ErrInFlight = errors.New("send already in flight")
)

// Sink 向单个客户端推送消息的独占句柄，同一时刻最多一个发送在进行
type Sink interface {
	Send(payload []byte) error
	Close() error
}

// slot 注册表中的一个连接槽位；checkedOut 表示句柄正被某次发送持有
type slot struct {
	sink       Sink
	checkedOut bool
}

// Registry 连接注册表：连接 ID → 发送句柄。
// 发送前 CheckOut、发送成功后 Return，槽位本身始终留在表中，
// 因此"正在发送"的状态对外可见。
type Registry struct {
	mu    sync.RWMutex
	slots map[ConnID]*slot
}

func NewRegistry() *Registry {
	return &Registry{slots: make(map[ConnID]*slot)}
}

// Register 登记一个连接的发送句柄
func (r *Registry) Register(id ConnID, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = &slot{sink: sink}
}

// IDs 当前已注册连接的 ID 列表
func (r *Registry) IDs() []ConnID {
	r.mu.RLock()
	ids := make([]ConnID, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CheckOut 取得句柄的临时独占权
func (r *Registry) CheckOut(id ConnID) (Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrNotRegistered
	}
	if s.checkedOut {
		return nil, ErrInFlight
	}
	s.checkedOut = true
	return s.sink, nil
}

// Return 归还句柄。连接在发送期间已被拆除（或槽位已换成别的句柄）时返回 false，
// 调用方直接丢弃该句柄即可。
func (r *Registry) Return(id ConnID, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok || s.sink != sink {
		return false
	}
	s.checkedOut = false
	return true
}

// InFlight 报告该连接当前是否有发送在进行
func (r *Registry) InFlight(id ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	return ok && s.checkedOut
}

// Remove 删除槽位并交出句柄（无论是否处于发送中），由调用方负责关闭
func (r *Registry) Remove(id ConnID) (Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	delete(r.slots, id)
	return s.sink, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}
