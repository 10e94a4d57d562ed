// Package snowflake generates the int64 identifiers used as primary keys
// across the store. IDs are time-ordered, so insertion order and ID order
// agree within one process.
package snowflake

import "github.com/bwmarrin/snowflake"

var node *snowflake.Node

// Init sets up the generator and must run before the first NextID call.
// nodeID (0-1023) distinguishes concurrently running instances.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node = n
	return nil
}

// NextID returns a fresh unique ID.
func NextID() int64 {
	return node.Generate().Int64()
}
