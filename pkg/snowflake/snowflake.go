package snowflake

import (
	"fmt"
	"sync"
	"time"

	sf "github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *sf.Node
)

// Init 初始化雪花算法节点
// startTime 格式为 2006-01-02，作为 ID 中时间戳部分的起点
func Init(startTime string, machineID int64) (err error) {
	st, err := time.Parse("2006-01-02", startTime)
	if err != nil {
		return fmt.Errorf("parse snowflake start time failed: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	sf.Epoch = st.UnixMilli()
	node, err = sf.NewNode(machineID)
	return err
}

// GenID 生成一个全局唯一 ID
// 未调用 Init 时使用默认起点和 0 号机器，方便测试直接使用
func GenID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = sf.NewNode(0)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
