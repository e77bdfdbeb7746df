package decode

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

type accountStatus int

const (
	accountStatusUninit accountStatus = iota
	accountStatusFrozen
	accountStatusActive
	accountStatusNonexist
)

func (s accountStatus) str() (string, error) {
	switch s {
	case accountStatusUninit:
		return "uninit", nil
	case accountStatusFrozen:
		return "frozen", nil
	case accountStatusActive:
		return "active", nil
	case accountStatusNonexist:
		return "nonexist", nil
	default:
		return "", fmt.Errorf("unknown account status code: %d", s)
	}
}

type accStatusChange int

const (
	accStatusUnchanged accStatusChange = iota
	accStatusFrozen
	accStatusDeleted
)

func (s accStatusChange) str() (string, error) {
	switch s {
	case accStatusUnchanged:
		return "unchanged", nil
	case accStatusFrozen:
		return "frozen", nil
	case accStatusDeleted:
		return "deleted", nil
	default:
		return "", fmt.Errorf("unknown status change code: %d", s)
	}
}

type computeSkipReason int

const (
	computeSkipNoState computeSkipReason = iota
	computeSkipBadState
	computeSkipNoGas
	computeSkipSuspended
)

func (r computeSkipReason) str() (string, error) {
	switch r {
	case computeSkipNoState:
		return "no_state", nil
	case computeSkipBadState:
		return "bad_state", nil
	case computeSkipNoGas:
		return "no_gas", nil
	case computeSkipSuspended:
		return "suspended", nil
	default:
		return "", fmt.Errorf("unknown compute skip reason: %d", r)
	}
}

type rawStoragePhase struct {
	FeesCollected uint64
	FeesDue       *uint64
	StatusChange  accStatusChange
}

var _ msgpack.CustomDecoder = (*rawStoragePhase)(nil)

func (p *rawStoragePhase) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 3 {
		return fmt.Errorf("storage phase: expected 3 elements, got %d", n)
	}
	return dec.DecodeMulti(&p.FeesCollected, &p.FeesDue, &p.StatusChange)
}

type rawCreditPhase struct {
	DueFeesCollected *uint64
	Credit           uint64
}

var _ msgpack.CustomDecoder = (*rawCreditPhase)(nil)

func (p *rawCreditPhase) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("credit phase: expected 2 elements, got %d", n)
	}
	return dec.DecodeMulti(&p.DueFeesCollected, &p.Credit)
}

type rawComputeSkipped struct {
	Reason computeSkipReason
}

var _ msgpack.CustomDecoder = (*rawComputeSkipped)(nil)

func (p *rawComputeSkipped) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("skipped compute phase: expected 1 element, got %d", n)
	}
	return dec.Decode(&p.Reason)
}

type rawComputeVm struct {
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
	VmInitStateHash  hashValue
	VmFinalStateHash hashValue
}

var _ msgpack.CustomDecoder = (*rawComputeVm)(nil)

func (p *rawComputeVm) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 13 {
		return fmt.Errorf("vm compute phase: expected 13 elements, got %d", n)
	}
	return dec.DecodeMulti(
		&p.Success, &p.MsgStateUsed, &p.AccountActivated,
		&p.GasFees, &p.GasUsed, &p.GasLimit, &p.GasCredit,
		&p.Mode, &p.ExitCode, &p.ExitArg, &p.VmSteps,
		&p.VmInitStateHash, &p.VmFinalStateHash,
	)
}

// rawComputePhase is the (tag, payload) variant: 0 is skipped, 1 is vm.
type rawComputePhase struct {
	Skipped *rawComputeSkipped
	Vm      *rawComputeVm
}

var _ msgpack.CustomDecoder = (*rawComputePhase)(nil)

func (p *rawComputePhase) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("compute phase: expected 2 elements, got %d", n)
	}
	tag, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		var s rawComputeSkipped
		err = dec.Decode(&s)
		p.Skipped = &s
	case 1:
		var vm rawComputeVm
		err = dec.Decode(&vm)
		p.Vm = &vm
	default:
		return fmt.Errorf("compute phase: unknown variant tag %d", tag)
	}
	return err
}

type rawMsgSize struct {
	Cells int64
	Bits  int64
}

var _ msgpack.CustomDecoder = (*rawMsgSize)(nil)

func (p *rawMsgSize) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("msg size: expected 2 elements, got %d", n)
	}
	return dec.DecodeMulti(&p.Cells, &p.Bits)
}

type rawActionPhase struct {
	Success         bool
	Valid           bool
	NoFunds         bool
	StatusChange    accStatusChange
	TotalFwdFees    *int64
	TotalActionFees *int64
	ResultCode      *int32
	ResultArg       *int32
	TotActions      *int32
	SpecActions     *int32
	SkippedActions  *int32
	MsgsCreated     *int32
	ActionListHash  hashValue
	TotMsgSize      rawMsgSize
}

var _ msgpack.CustomDecoder = (*rawActionPhase)(nil)

func (p *rawActionPhase) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 14 {
		return fmt.Errorf("action phase: expected 14 elements, got %d", n)
	}
	return dec.DecodeMulti(
		&p.Success, &p.Valid, &p.NoFunds, &p.StatusChange,
		&p.TotalFwdFees, &p.TotalActionFees, &p.ResultCode, &p.ResultArg,
		&p.TotActions, &p.SpecActions, &p.SkippedActions, &p.MsgsCreated,
		&p.ActionListHash, &p.TotMsgSize,
	)
}

type rawDescription struct {
	CreditFirst bool
	StoragePh   rawStoragePhase
	CreditPh    rawCreditPhase
	ComputePh   rawComputePhase
	Action      *rawActionPhase
	Aborted     bool
	Bounce      any // assigned opaquely by the upstream encoder
	Destroyed   bool
}

var _ msgpack.CustomDecoder = (*rawDescription)(nil)

func (d *rawDescription) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 8 {
		return fmt.Errorf("description: expected 8 elements, got %d", n)
	}
	return dec.DecodeMulti(
		&d.CreditFirst, &d.StoragePh, &d.CreditPh, &d.ComputePh,
		&d.Action, &d.Aborted, &d.Bounce, &d.Destroyed,
	)
}

func (d *rawDescription) toModel() (models.TransactionDescr, error) {
	out := models.TransactionDescr{
		CreditFirst: d.CreditFirst,
		Aborted:     d.Aborted,
		Destroyed:   d.Destroyed,
	}
	if b, ok := d.Bounce.(bool); ok {
		out.Bounce = &b
	}

	statusChange, err := d.StoragePh.StatusChange.str()
	if err != nil {
		return out, fmt.Errorf("storage phase: %w", err)
	}
	out.StoragePh = models.StoragePhase{
		StorageFeesCollected: d.StoragePh.FeesCollected,
		StorageFeesDue:       d.StoragePh.FeesDue,
		StatusChange:         statusChange,
	}
	out.CreditPh = models.CreditPhase{
		DueFeesCollected: d.CreditPh.DueFeesCollected,
		Credit:           d.CreditPh.Credit,
	}

	switch {
	case d.ComputePh.Skipped != nil:
		reason, err := d.ComputePh.Skipped.Reason.str()
		if err != nil {
			return out, fmt.Errorf("compute phase: %w", err)
		}
		out.ComputePh.Skipped = &models.ComputePhaseSkipped{Reason: reason}
	case d.ComputePh.Vm != nil:
		vm := d.ComputePh.Vm
		out.ComputePh.Vm = &models.ComputePhaseVm{
			Success:          vm.Success,
			MsgStateUsed:     vm.MsgStateUsed,
			AccountActivated: vm.AccountActivated,
			GasFees:          vm.GasFees,
			GasUsed:          vm.GasUsed,
			GasLimit:         vm.GasLimit,
			GasCredit:        vm.GasCredit,
			Mode:             vm.Mode,
			ExitCode:         vm.ExitCode,
			ExitArg:          vm.ExitArg,
			VmSteps:          vm.VmSteps,
			VmInitStateHash:  vm.VmInitStateHash.hash(),
			VmFinalStateHash: vm.VmFinalStateHash.hash(),
		}
	}

	if d.Action != nil {
		statusChange, err := d.Action.StatusChange.str()
		if err != nil {
			return out, fmt.Errorf("action phase: %w", err)
		}
		out.Action = &models.ActionPhase{
			Success:         d.Action.Success,
			Valid:           d.Action.Valid,
			NoFunds:         d.Action.NoFunds,
			StatusChange:    statusChange,
			TotalFwdFees:    d.Action.TotalFwdFees,
			TotalActionFees: d.Action.TotalActionFees,
			ResultCode:      d.Action.ResultCode,
			ResultArg:       d.Action.ResultArg,
			TotActions:      d.Action.TotActions,
			SpecActions:     d.Action.SpecActions,
			SkippedActions:  d.Action.SkippedActions,
			MsgsCreated:     d.Action.MsgsCreated,
			ActionListHash:  d.Action.ActionListHash.hash(),
			TotMsgSize: models.MsgSize{
				Cells: d.Action.TotMsgSize.Cells,
				Bits:  d.Action.TotMsgSize.Bits,
			},
		}
	}
	return out, nil
}
