package decode

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

func hashBytes(b byte) []byte {
	h := make([]byte, 32)
	h[31] = b
	return h
}

func hashB64(b byte) models.HashType {
	return models.HashType(base64.StdEncoding.EncodeToString(hashBytes(b)))
}

// msgTuple builds the 15-element positional message tuple.
func msgTuple(hash []byte, source, destination any, value uint64, createdLt uint64) []any {
	return []any{
		hash, source, destination, value,
		uint64(1000), uint64(0), createdLt, uint32(1700000000),
		int32(0x10), false, true, false,
		nil, "te6ccgEBAQEAAgAAAA==", nil,
	}
}

func storageTuple(statusChange int) []any {
	return []any{uint64(100), nil, statusChange}
}

func vmComputeTuple() []any {
	return []any{
		1,
		[]any{
			true, false, false,
			uint64(3000), uint64(2500), uint64(1000000), nil,
			0, int32(0), nil, uint32(88),
			hashBytes(0xEE), hashBytes(0xEF),
		},
	}
}

func actionTuple() []any {
	return []any{
		true, true, false, 0,
		int64(400), nil, int32(0), nil,
		int32(2), int32(0), int32(0), int32(2),
		hashBytes(0xAA), []any{int64(1), int64(256)},
	}
}

func descrTuple(storage []any, compute []any, action any) []any {
	credit := []any{nil, uint64(0)}
	return []any{false, storage, credit, compute, action, false, nil, false}
}

// txTuple builds the 14-element positional transaction tuple.
func txTuple(hash []byte, lt uint64, origStatus, endStatus int, inMsg []any, outMsgs [][]any, descr []any) []any {
	outs := make([]any, len(outMsgs))
	for i := range outMsgs {
		outs[i] = outMsgs[i]
	}
	return []any{
		hash, "0:3333333333333333333333333333333333333333333333333333333333333333",
		lt, hashBytes(0x01), lt - 1, uint32(1700000000),
		origStatus, endStatus, inMsg, outs,
		uint64(500), hashBytes(0x02), hashBytes(0x03), descr,
	}
}

func record(t *testing.T, tx []any, emulated bool) []byte {
	t.Helper()
	data, err := msgpack.Marshal([]any{tx, emulated})
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return data
}

func TestDecodeTransactionFields(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 1000000000, 99)
	out1 := msgTuple(hashBytes(0x21), "0:bbbb", "0:cccc", 500, 101)
	out2 := msgTuple(hashBytes(0x22), "0:bbbb", "0:dddd", 600, 102)
	descr := descrTuple(storageTuple(0), vmComputeTuple(), actionTuple())
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, [][]any{out1, out2}, descr), false)

	tx, err := Transaction(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if tx.Hash != hashB64(0x42) {
		t.Errorf("unexpected hash %s", tx.Hash)
	}
	if tx.Lt != 100 || tx.PrevTransLt != 99 {
		t.Errorf("unexpected lt %d / prev lt %d", tx.Lt, tx.PrevTransLt)
	}
	if tx.OrigStatus != "active" || tx.EndStatus != "active" {
		t.Errorf("unexpected statuses %s / %s", tx.OrigStatus, tx.EndStatus)
	}
	if tx.TotalFees != 500 || tx.Emulated {
		t.Errorf("unexpected fees %d / emulated %v", tx.TotalFees, tx.Emulated)
	}

	if len(tx.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(tx.Messages))
	}
	if tx.Messages[0].Direction != "out" || tx.Messages[1].Direction != "out" {
		t.Errorf("out messages must come first")
	}
	last := tx.Messages[2]
	if last.Direction != "in" {
		t.Errorf("in message must be last, got %s", last.Direction)
	}
	if tx.InMsg() != last {
		t.Errorf("InMsg must return the last message")
	}
	if last.MsgHash != hashB64(0x20) || *last.Value != 1000000000 {
		t.Errorf("unexpected in message %s / %d", last.MsgHash, *last.Value)
	}
	if last.TxHash != tx.Hash || last.TxLt != tx.Lt {
		t.Errorf("message must reference its owning transaction")
	}
	if *last.Source != "0:aaaa" || *last.Destination != "0:bbbb" {
		t.Errorf("unexpected message endpoints")
	}
	if last.MessageContent == nil || last.MessageContent.Body == "" {
		t.Errorf("message body content missing")
	}
	if last.InitState != nil {
		t.Errorf("init state must be absent for nil init_state element")
	}

	vm := tx.Descr.ComputePh.Vm
	if vm == nil || tx.Descr.ComputePh.Skipped != nil {
		t.Fatalf("expected vm compute phase")
	}
	if !vm.Success || vm.GasUsed != 2500 || vm.VmSteps != 88 {
		t.Errorf("unexpected vm phase %+v", vm)
	}
	if vm.VmInitStateHash != hashB64(0xEE) {
		t.Errorf("unexpected vm init state hash %s", vm.VmInitStateHash)
	}
	if tx.Descr.StoragePh.StatusChange != "unchanged" || tx.Descr.StoragePh.StorageFeesCollected != 100 {
		t.Errorf("unexpected storage phase %+v", tx.Descr.StoragePh)
	}

	action := tx.Descr.Action
	if action == nil {
		t.Fatalf("expected action phase")
	}
	if !action.Success || *action.TotActions != 2 || *action.MsgsCreated != 2 {
		t.Errorf("unexpected action phase %+v", action)
	}
	if *action.ResultCode != 0 || *action.SpecActions != 0 || *action.SkippedActions != 0 {
		t.Errorf("unexpected action counters %+v", action)
	}
	if *action.TotalFwdFees != 400 {
		t.Errorf("unexpected total fwd fees %d", *action.TotalFwdFees)
	}
	if action.TotMsgSize.Cells != 1 || action.TotMsgSize.Bits != 256 {
		t.Errorf("unexpected msg size %+v", action.TotMsgSize)
	}
}

func TestDecodeNoActionPhase(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), nil, "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), true)

	tx, err := Transaction(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if tx.Descr.Action != nil {
		t.Errorf("action phase must be absent")
	}
	if !tx.Emulated {
		t.Errorf("emulated flag lost")
	}
	if tx.Messages[0].Source != nil {
		t.Errorf("nil source must stay nil")
	}
}

func TestDecodeActionPhaseNullCounters(t *testing.T) {
	// Emulated transactions may carry an action phase with unset counters;
	// nulls on the wire must survive as nil fields, not fail the decode.
	action := []any{
		true, true, false, 0,
		nil, nil, nil, nil,
		nil, nil, nil, nil,
		hashBytes(0xAA), []any{int64(0), int64(0)},
	}
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), vmComputeTuple(), action)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), false)

	tx, err := Transaction(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	ph := tx.Descr.Action
	if ph == nil {
		t.Fatalf("expected action phase")
	}
	if ph.ResultCode != nil || ph.TotActions != nil || ph.SpecActions != nil ||
		ph.SkippedActions != nil || ph.MsgsCreated != nil {
		t.Errorf("null counters must stay nil, got %+v", ph)
	}
	if !ph.Success || !ph.Valid {
		t.Errorf("unexpected flags %+v", ph)
	}
}

func TestDecodeSkippedComputePhase(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), []any{0, []any{2}}, nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), false)

	tx, err := Transaction(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if tx.Descr.ComputePh.Vm != nil || tx.Descr.ComputePh.Skipped == nil {
		t.Fatalf("expected skipped compute phase")
	}
	if tx.Descr.ComputePh.Skipped.Reason != "no_gas" {
		t.Errorf("unexpected skip reason %s", tx.Descr.ComputePh.Skipped.Reason)
	}
}

func TestAccountStatusCodes(t *testing.T) {
	expected := []string{"uninit", "frozen", "active", "nonexist"}
	for code, want := range expected {
		inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
		descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
		data := record(t, txTuple(hashBytes(0x42), 100, code, code, inMsg, nil, descr), false)
		tx, err := Transaction(data)
		if err != nil {
			t.Fatalf("code %d: decode failed: %v", code, err)
		}
		if tx.OrigStatus != want || tx.EndStatus != want {
			t.Errorf("code %d: expected %s, got %s / %s", code, want, tx.OrigStatus, tx.EndStatus)
		}
	}

	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 9, 2, inMsg, nil, descr), false)
	_, err := Transaction(data)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for status code 9, got %v", err)
	}
	if decodeErr.Hash != hashB64(0x42) {
		t.Errorf("error must identify the offending record, got %q", decodeErr.Hash)
	}
}

func TestStatusChangeMapping(t *testing.T) {
	expected := []string{"unchanged", "frozen", "deleted"}
	for code, want := range expected {
		inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
		descr := descrTuple(storageTuple(code), vmComputeTuple(), nil)
		data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), false)
		tx, err := Transaction(data)
		if err != nil {
			t.Fatalf("code %d: decode failed: %v", code, err)
		}
		if tx.Descr.StoragePh.StatusChange != want {
			t.Errorf("code %d: expected %s, got %s", code, want, tx.Descr.StoragePh.StatusChange)
		}
	}

	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(3), vmComputeTuple(), nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), false)
	_, err := Transaction(data)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for status change code 3, got %v", err)
	}
}

func TestArityMismatch(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)

	shortStorage := descrTuple([]any{uint64(100), nil}, vmComputeTuple(), nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, shortStorage), false)
	var decodeErr *DecodeError
	if _, err := Transaction(data); !errors.As(err, &decodeErr) {
		t.Errorf("short storage phase must fail, got %v", err)
	}

	shortMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)[:14]
	descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
	data = record(t, txTuple(hashBytes(0x42), 100, 2, 2, shortMsg, nil, descr), false)
	if _, err := Transaction(data); !errors.As(err, &decodeErr) {
		t.Errorf("short message tuple must fail, got %v", err)
	}

	raw, err := msgpack.Marshal([]any{txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Transaction(raw); !errors.As(err, &decodeErr) {
		t.Errorf("record without emulated flag must fail, got %v", err)
	}
}

func TestUnknownComputeVariantTag(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), []any{7, []any{0}}, nil)
	data := record(t, txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr), false)
	var decodeErr *DecodeError
	if _, err := Transaction(data); !errors.As(err, &decodeErr) {
		t.Errorf("unknown compute variant must fail, got %v", err)
	}
}

func TestStringEncodedHashes(t *testing.T) {
	// Some producers pack hashes as pre-encoded base64 strings instead of
	// raw bytes; both forms must decode to the same canonical value.
	inMsg := msgTuple([]byte(nil), "0:aaaa", "0:bbbb", 0, 99)
	inMsg[0] = string(hashB64(0x20))
	descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
	tx := txTuple(hashBytes(0x42), 100, 2, 2, inMsg, nil, descr)
	tx[0] = string(hashB64(0x42))
	data := record(t, tx, false)

	decoded, err := Transaction(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Hash != hashB64(0x42) {
		t.Errorf("unexpected hash %s", decoded.Hash)
	}
	if decoded.InMsg().MsgHash != hashB64(0x20) {
		t.Errorf("unexpected in message hash %s", decoded.InMsg().MsgHash)
	}
}

func TestTruncatedHash(t *testing.T) {
	inMsg := msgTuple(hashBytes(0x20), "0:aaaa", "0:bbbb", 0, 99)
	descr := descrTuple(storageTuple(0), vmComputeTuple(), nil)
	data := record(t, txTuple(hashBytes(0x42)[:16], 100, 2, 2, inMsg, nil, descr), false)
	var decodeErr *DecodeError
	if _, err := Transaction(data); !errors.As(err, &decodeErr) {
		t.Errorf("16-byte hash must fail, got %v", err)
	}
}
