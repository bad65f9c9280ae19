package queue

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// PartitionFor maps a tenant onto one of n partitions
func PartitionFor(tenantID string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(tenantID) % uint64(n))
}

// StreamName returns the stream backing a partition. A single partition uses the bare name.
func StreamName(name string, partitions, partition int) string {
	if partitions <= 1 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, partition)
}
