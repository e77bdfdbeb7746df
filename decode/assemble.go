package decode

import (
	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

// AssembleTrace decodes the record keyed by traceID and every transaction
// reachable from it: the record of each out message's hash is the child
// transaction that message triggered. The walk is breadth-first over an
// explicit queue, so trace depth is bounded by the input, not by the call
// stack. A child hash absent from records aborts assembly with
// MissingTransactionError; no partial trace is returned.
func AssembleTrace(traceID models.HashType, records map[models.HashType][]byte) (*models.Trace, error) {
	root, ok := records[traceID]
	if !ok {
		return nil, &MissingTransactionError{MsgHash: traceID}
	}
	rootTx, err := Transaction(root)
	if err != nil {
		return nil, err
	}

	trace := &models.Trace{
		TraceId:             traceID,
		Transactions:        []*models.Transaction{rootTx},
		ClassificationState: "unclassified",
	}
	seen := map[models.HashType]bool{rootTx.Hash: true}
	queue := []*models.Transaction{rootTx}
	for len(queue) > 0 {
		tx := queue[0]
		queue = queue[1:]
		for _, msg := range tx.Messages {
			if msg.Direction != "out" {
				continue
			}
			data, ok := records[msg.MsgHash]
			if !ok {
				return nil, &MissingTransactionError{ParentTx: tx.Hash, MsgHash: msg.MsgHash}
			}
			child, err := Transaction(data)
			if err != nil {
				return nil, err
			}
			trace.Edges = append(trace.Edges, models.TraceEdge{
				TraceId: traceID,
				LeftTx:  tx.Hash,
				RightTx: child.Hash,
				MsgHash: msg.MsgHash,
			})
			// A well-formed trace is a tree; the guard only stops the walk
			// from looping on malformed inputs that alias a transaction
			// under several message hashes.
			if seen[child.Hash] {
				continue
			}
			seen[child.Hash] = true
			trace.Transactions = append(trace.Transactions, child)
			queue = append(queue, child)
		}
	}
	trace.State = "complete"
	return trace, nil
}
