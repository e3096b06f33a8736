package placement

// ShardQueue is a FIFO queue of unassigned Shard slots of one ReplicaSet.
type ShardQueue struct {
	shards []*Shard
}

// NewShardQueue returns a ShardQueue seeded with the Shards of |rs| in shard
// index order, rotated left by |offset| positions. The ReplicaSet itself is
// not modified: dequeued Shards are shared with it.
func NewShardQueue(rs *ReplicaSet, offset int) *ShardQueue {
	var n = len(rs.Shards)
	var q = &ShardQueue{shards: make([]*Shard, 0, n)}

	if n != 0 {
		offset %= n
		q.shards = append(q.shards, rs.Shards[offset:]...)
		q.shards = append(q.shards, rs.Shards[:offset]...)
	}
	return q
}

// Len returns the number of queued Shards.
func (q *ShardQueue) Len() int { return len(q.shards) }

// Drained returns true if no Shards remain.
func (q *ShardQueue) Drained() bool { return len(q.shards) == 0 }

// Dequeue removes and returns exactly |n| Shards from the front of the queue.
// It returns false, and dequeues nothing, if fewer than |n| Shards remain.
func (q *ShardQueue) Dequeue(n int) ([]*Shard, bool) {
	if n < 0 || n > len(q.shards) {
		return nil, false
	}
	var out = q.shards[:n:n]
	q.shards = q.shards[n:]
	return out, true
}
