package etcd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// batchedTxn queues operations across multiple checkpoints and applies them
// together as larger transactions of at most maxOps operations each. All
// operations of a checkpoint are issued in the same underlying transaction.
type batchedTxn struct {
	// txnDo executes a OpTxn.
	txnDo func(txn clientv3.Op) (*clientv3.TxnResponse, error)
	// Completed checkpoints ready to flush.
	ops []clientv3.Op
	// Checkpoint currently being built.
	nextOps []clientv3.Op
	// Maximum operations of an underlying transaction.
	maxOps int
	// Number of committed underlying transactions.
	commits int
}

func newBatchedTxn(ctx context.Context, kv clientv3.KV, maxOps int) *batchedTxn {
	return &batchedTxn{
		txnDo: func(txn clientv3.Op) (*clientv3.TxnResponse, error) {
			if r, err := kv.Do(ctx, txn); err != nil {
				return nil, err
			} else {
				return r.Txn(), nil
			}
		},
		maxOps: maxOps,
	}
}

func (b *batchedTxn) Then(o ...clientv3.Op) *batchedTxn {
	b.nextOps = append(b.nextOps, o...)
	return b
}

// Checkpoint ensures that all Then invocations since the last Checkpoint are
// issued in the same underlying Txn. It may partially flush the transaction.
func (b *batchedTxn) Checkpoint() error {
	if len(b.nextOps) == 0 {
		return nil // This checkpoint is a no-op.
	} else if len(b.nextOps) > b.maxOps {
		return fmt.Errorf("checkpoint of %d operations exceeds max transaction size %d",
			len(b.nextOps), b.maxOps)
	}

	var no = b.nextOps
	b.nextOps = nil

	if len(b.ops)+len(no) > b.maxOps {
		if _, err := b.Commit(); err != nil {
			return err
		}
	}
	b.ops = append(b.ops, no...)
	return nil
}

func (b *batchedTxn) Commit() (*clientv3.TxnResponse, error) {
	if len(b.nextOps) != 0 {
		panic("must call Checkpoint before Commit")
	} else if len(b.ops) == 0 {
		return nil, nil // No-op.
	}

	var response, err = b.txnDo(clientv3.OpTxn(nil, b.ops, nil))

	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(log.Fields{
			"ops": len(b.ops),
			"err": err,
		}).Debug("committed etcd transaction")
	}

	if err != nil {
		return nil, err
	} else if !response.Succeeded {
		return response, fmt.Errorf("transaction checks did not succeed")
	}
	b.ops = nil
	b.commits++
	return response, nil
}
