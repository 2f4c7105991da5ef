package common

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	snowNode *snowflake.Node
	snowOnce sync.Once
)

func node() *snowflake.Node {
	snowOnce.Do(func() {
		n, err := snowflake.NewNode(1)
		if err != nil {
			zap.S().Errorf("snowflake node init error %s", err.Error())
			return
		}
		snowNode = n
	})
	return snowNode
}

// UUIDint64 returns a time ordered unique id.
func UUIDint64() int64 {
	n := node()
	if n == nil {
		return int64(uuid.New().ID())
	}
	return n.Generate().Int64()
}

// UUID returns a random uuid string.
func UUID() string {
	return uuid.NewString()
}
