package common

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// nodeID is taken from FEEDSTORE_NODE_ID so several instances never collide.
func nodeID() int64 {
	if v, err := strconv.ParseInt(os.Getenv("FEEDSTORE_NODE_ID"), 10, 64); err == nil && v >= 0 && v < 1024 {
		return v
	}
	return 1
}

// UUIDint64 returns a time-ordered unique id.
func UUIDint64() int64 {
	idNodeOnce.Do(func() {
		var err error
		idNode, err = snowflake.NewNode(nodeID())
		if err != nil {
			zap.L().Fatal("snowflake node init failed", zap.Error(err))
		}
	})
	return idNode.Generate().Int64()
}
