package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string. Account ids use this
// form: opaque, sortable by creation time, safe in URLs.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from the
// SNOWFLAKE_NODE environment variable, defaulting to node 1. Request ids use
// this form.
func NewSnowflakeID() string {
	nodeID := int64(1)
	if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
		if parsed, err := strconv.ParseInt(env, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		// out-of-range node; fall back to a KSUID so an id is still produced
		return NewKSUID()
	}
	return node.Generate().String()
}
