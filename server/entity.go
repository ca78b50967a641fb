package server

import (
	"sort"
	"sync"
)

// Position 离散网格坐标
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Entity 一个客户端在服务端的权威状态，字段顺序即线上 JSON 的字段顺序
type Entity struct {
	Position Position `json:"position"`
	ID       ConnID   `json:"id"`
}

// EntityStore 以连接 ID 为键的实体表，读写锁保护。
// 锁只覆盖内存读写，绝不跨越网络 I/O。
type EntityStore struct {
	mu       sync.RWMutex
	entities map[ConnID]Position
}

func NewEntityStore() *EntityStore {
	return &EntityStore{entities: make(map[ConnID]Position)}
}

// Insert 在原点创建实体；ID 已存在时返回 false 且不覆盖
func (s *EntityStore) Insert(id ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; ok {
		return false
	}
	s.entities[id] = Position{}
	return true
}

// Remove 删除实体，返回删除前是否存在
func (s *EntityStore) Remove(id ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return false
	}
	delete(s.entities, id)
	return true
}

// Move 对仍然存在的实体应用一次方向移动；实体已被拆除时不做任何事
func (s *EntityStore) Move(id ConnID, dir Direction) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entities[id]
	if !ok {
		return Position{}, false
	}
	p = dir.Apply(p)
	s.entities[id] = p
	return p, true
}

func (s *EntityStore) Get(id ConnID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.entities[id]
	return Entity{ID: id, Position: p}, ok
}

func (s *EntityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Snapshot 返回某一时刻的只读副本。
// 按 ID 排序只是为了输出稳定，客户端不应依赖数组顺序。
func (s *EntityStore) Snapshot() []Entity {
	s.mu.RLock()
	out := make([]Entity, 0, len(s.entities))
	for id, p := range s.entities {
		out = append(out, Entity{ID: id, Position: p})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
