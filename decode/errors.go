package decode

import (
	"fmt"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

// DecodeError reports a malformed packed transaction record. Hash names
// the offending record when it was read before the failure.
type DecodeError struct {
	Hash models.HashType
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Hash != "" {
		return fmt.Sprintf("decode transaction %s: %v", e.Hash, e.Err)
	}
	return fmt.Sprintf("decode transaction: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingTransactionError reports a trace child that has no record in the
// lookup table. ParentTx is empty when the root record itself is missing.
type MissingTransactionError struct {
	ParentTx models.HashType
	MsgHash  models.HashType
}

func (e *MissingTransactionError) Error() string {
	if e.ParentTx == "" {
		return fmt.Sprintf("no transaction record for trace root %s", e.MsgHash)
	}
	return fmt.Sprintf("no transaction record for message %s emitted by %s", e.MsgHash, e.ParentTx)
}
