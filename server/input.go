package server

// Direction 客户端发来的移动指令
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// moveStep 每条指令的位移
const moveStep = 10

// ParseDirection 将文本帧解析为指令，大小写敏感、完全匹配；
// 其它任何文本都是 DirNone（忽略，不算错误）
func ParseDirection(text string) Direction {
	switch text {
	case "up":
		return DirUp
	case "down":
		return DirDown
	case "left":
		return DirLeft
	case "right":
		return DirRight
	default:
		return DirNone
	}
}

// Apply 返回移动后的坐标；y 轴向下为正
func (d Direction) Apply(p Position) Position {
	switch d {
	case DirUp:
		p.Y -= moveStep
	case DirDown:
		p.Y += moveStep
	case DirLeft:
		p.X -= moveStep
	case DirRight:
		p.X += moveStep
	}
	return p
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}
