package server

import "sync/atomic"

// ConnID 连接唯一标识，同时作为实体 ID（两者共享同一个键空间）
//
// 64 位无符号计数：进程生命周期内只增不减、不复用。
// 用尽 2^64-1 个 ID 后会回绕到 0，按预期连接量视为不可达。
type ConnID uint64

// IDAllocator 进程级单调递增计数器，零值可用
type IDAllocator struct {
	last atomic.Uint64
}

// Next 原子地自增并读出新值；首个 ID 为 1
func (a *IDAllocator) Next() ConnID {
	return ConnID(a.last.Add(1))
}
