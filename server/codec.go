package server

import "encoding/json"

// EncodeSnapshot 将一帧世界快照编码为 JSON 数组文本。
// 空快照编码为 []，而不是 null。
func EncodeSnapshot(entities []Entity) ([]byte, error) {
	if entities == nil {
		entities = []Entity{}
	}
	return json.Marshal(entities)
}
