// Package idgen issues the snowflake ids used for products, transactions and audit rows.
package idgen

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// Generator hands out unique int64 ids.
type Generator interface {
	NextID() int64
}

type Snowflake struct {
	node *snowflake.Node
}

// New creates a generator for the given node number (0..1023).
func New(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrapf(err, "snowflake node %d", nodeID)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) NextID() int64 {
	return s.node.Generate().Int64()
}

// Parse converts a client supplied id string. ok is false for anything that is
// not a positive decimal integer.
func Parse(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
