package placement

import (
	"fmt"
)

// AssignShards binds queued Shards to Hosts. For each replica, Hosts of its
// LoadTally are visited in order and each dequeues exactly its tallied count
// of Shards from queues[replica], binding them to itself. Which shard indices
// land on a Host follows from traversal order alone.
//
// An error is returned if a queue underflows, or isn't drained once all
// Hosts of its replica have been visited.
func AssignShards(tallies []LoadTally, queues []*ShardQueue) error {
	if len(tallies) != len(queues) {
		return fmt.Errorf("tallies and queues differ in length (%d vs %d)", len(tallies), len(queues))
	}
	for i, tally := range tallies {
		var queue = queues[i]

		for j, h := range tally.Hosts {
			var shards, ok = queue.Dequeue(tally.Counts[j])
			if !ok {
				return fmt.Errorf("replica %d: queue underflow binding %d shards to host %s (%d remain)",
					i, tally.Counts[j], h.Name, queue.Len())
			}
			for _, s := range shards {
				s.Host = h.Ref()
				h.Shards = append(h.Shards, s)
			}
			shardSlotsAssignedTotal.Add(float64(len(shards)))
		}
		if !queue.Drained() {
			return fmt.Errorf("replica %d: %d shards remain unassigned", i, queue.Len())
		}
	}
	return nil
}
