package models

import "fmt"

type HashType string       // @name HashType
type AccountAddress string // @name AccountAddress
type OpcodeType int64      // @name OpcodeType

func (v *OpcodeType) String() string {
	return fmt.Sprintf("0x%08x", uint32(*v))
}

// MessageContent is a reference to a serialized cell carried by a message,
// either its body or its init state.
type MessageContent struct {
	Hash *HashType
	Body string
}

type Message struct {
	MsgHash        HashType
	TxHash         HashType
	TxLt           uint64
	Direction      string // "in" or "out"
	Source         *AccountAddress
	Destination    *AccountAddress
	Value          *uint64
	FwdFee         *uint64
	IhrFee         *uint64
	CreatedLt      *uint64
	CreatedAt      *uint32
	Opcode         *OpcodeType
	IhrDisabled    *bool
	Bounce         *bool
	Bounced        *bool
	ImportFee      *uint64
	MessageContent *MessageContent
	InitState      *MessageContent
}

type StoragePhase struct {
	StorageFeesCollected uint64
	StorageFeesDue       *uint64
	StatusChange         string // unchanged|frozen|deleted
}

type CreditPhase struct {
	DueFeesCollected *uint64
	Credit           uint64
}

type ComputePhaseSkipped struct {
	Reason string
}

type ComputePhaseVm struct {
	Success          bool
	MsgStateUsed     bool
	AccountActivated bool
	GasFees          uint64
	GasUsed          uint64
	GasLimit         uint64
	GasCredit        *uint64
	Mode             int8
	ExitCode         int32
	ExitArg          *int32
	VmSteps          uint32
	VmInitStateHash  HashType
	VmFinalStateHash HashType
}

// ComputePhase is a tagged variant: exactly one of Skipped or Vm is set.
type ComputePhase struct {
	Skipped *ComputePhaseSkipped
	Vm      *ComputePhaseVm
}

type MsgSize struct {
	Cells int64
	Bits  int64
}

type ActionPhase struct {
	Success         bool
	Valid           bool
	NoFunds         bool
	StatusChange    string
	TotalFwdFees    *int64
	TotalActionFees *int64
	ResultCode      *int32
	ResultArg       *int32
	TotActions      *int32
	SpecActions     *int32
	SkippedActions  *int32
	MsgsCreated     *int32
	ActionListHash  HashType
	TotMsgSize      MsgSize
}

type TransactionDescr struct {
	CreditFirst bool
	StoragePh   StoragePhase
	CreditPh    CreditPhase
	ComputePh   ComputePhase
	Action      *ActionPhase // nil when the transaction produced no output actions
	Aborted     bool
	Bounce      *bool
	Destroyed   bool
}

type Transaction struct {
	Hash                   HashType
	Account                AccountAddress
	Lt                     uint64
	PrevTransHash          HashType
	PrevTransLt            uint64
	Now                    uint32
	OrigStatus             string // uninit|frozen|active|nonexist
	EndStatus              string
	TotalFees              uint64
	AccountStateHashBefore HashType
	AccountStateHashAfter  HashType
	Descr                  TransactionDescr
	Emulated               bool
	// Messages holds all out messages followed by the single in message.
	// Downstream consumers rely on the in message being last.
	Messages []*Message
}

// InMsg returns the transaction's single in message.
func (t *Transaction) InMsg() *Message {
	for _, m := range t.Messages {
		if m.Direction == "in" {
			return m
		}
	}
	return nil
}

// TraceEdge links the message MsgHash emitted by LeftTx to RightTx,
// whose in message it is.
type TraceEdge struct {
	TraceId HashType
	LeftTx  HashType
	RightTx HashType
	MsgHash HashType
}

type Trace struct {
	TraceId             HashType
	Transactions        []*Transaction
	Edges               []TraceEdge
	ClassificationState string
	State               string
}
