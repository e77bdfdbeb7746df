package decode

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

// hashValue canonicalizes a wire hash to std base64. The packer emits
// either raw 32-byte binary or an already-encoded base64 string.
type hashValue string

var _ msgpack.CustomDecoder = (*hashValue)(nil)

func (h *hashValue) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*h = hashValue(s)
	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		if len(b) != 32 {
			return fmt.Errorf("invalid hash length: expected 32 bytes, got %d", len(b))
		}
		*h = hashValue(base64.StdEncoding.EncodeToString(b))
	default:
		return fmt.Errorf("invalid hash encoding: code 0x%02x", c)
	}
	return nil
}

func (h hashValue) hash() models.HashType {
	return models.HashType(h)
}

type rawMessage struct {
	Hash         hashValue
	Source       *string
	Destination  *string
	Value        *uint64
	FwdFee       *uint64
	IhrFee       *uint64
	CreatedLt    *uint64
	CreatedAt    *uint32
	Opcode       *int32
	IhrDisabled  *bool
	Bounce       *bool
	Bounced      *bool
	ImportFee    *uint64
	BodyBoc      string
	InitStateBoc *string
}

var _ msgpack.CustomDecoder = (*rawMessage)(nil)

func (m *rawMessage) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 15 {
		return fmt.Errorf("message: expected 15 elements, got %d", n)
	}
	return dec.DecodeMulti(
		&m.Hash, &m.Source, &m.Destination, &m.Value,
		&m.FwdFee, &m.IhrFee, &m.CreatedLt, &m.CreatedAt,
		&m.Opcode, &m.IhrDisabled, &m.Bounce, &m.Bounced,
		&m.ImportFee, &m.BodyBoc, &m.InitStateBoc,
	)
}

func (m *rawMessage) toModel(txHash models.HashType, txLt uint64, direction string) *models.Message {
	msg := &models.Message{
		MsgHash:     m.Hash.hash(),
		TxHash:      txHash,
		TxLt:        txLt,
		Direction:   direction,
		Value:       m.Value,
		FwdFee:      m.FwdFee,
		IhrFee:      m.IhrFee,
		CreatedLt:   m.CreatedLt,
		CreatedAt:   m.CreatedAt,
		IhrDisabled: m.IhrDisabled,
		Bounce:      m.Bounce,
		Bounced:     m.Bounced,
		ImportFee:   m.ImportFee,
		MessageContent: &models.MessageContent{
			Body: m.BodyBoc,
		},
	}
	if m.Source != nil {
		src := models.AccountAddress(*m.Source)
		msg.Source = &src
	}
	if m.Destination != nil {
		dst := models.AccountAddress(*m.Destination)
		msg.Destination = &dst
	}
	if m.Opcode != nil {
		op := models.OpcodeType(*m.Opcode)
		msg.Opcode = &op
	}
	if m.InitStateBoc != nil {
		msg.InitState = &models.MessageContent{Body: *m.InitStateBoc}
	}
	return msg
}

type rawTransaction struct {
	Hash                   hashValue
	Account                string
	Lt                     uint64
	PrevTransHash          hashValue
	PrevTransLt            uint64
	Now                    uint32
	OrigStatus             accountStatus
	EndStatus              accountStatus
	InMsg                  rawMessage
	OutMsgs                []rawMessage
	TotalFees              uint64
	AccountStateHashBefore hashValue
	AccountStateHashAfter  hashValue
	Description            rawDescription
}

var _ msgpack.CustomDecoder = (*rawTransaction)(nil)

func (t *rawTransaction) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 14 {
		return fmt.Errorf("transaction: expected 14 elements, got %d", n)
	}
	return dec.DecodeMulti(
		&t.Hash, &t.Account, &t.Lt, &t.PrevTransHash, &t.PrevTransLt,
		&t.Now, &t.OrigStatus, &t.EndStatus, &t.InMsg, &t.OutMsgs,
		&t.TotalFees, &t.AccountStateHashBefore, &t.AccountStateHashAfter,
		&t.Description,
	)
}

// rawRecord is the outermost tuple: (transaction, emulated).
type rawRecord struct {
	Transaction rawTransaction
	Emulated    bool
}

var _ msgpack.CustomDecoder = (*rawRecord)(nil)

func (r *rawRecord) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("record: expected 2 elements, got %d", n)
	}
	return dec.DecodeMulti(&r.Transaction, &r.Emulated)
}

func (r *rawRecord) toModel() (*models.Transaction, error) {
	t := &r.Transaction
	origStatus, err := t.OrigStatus.str()
	if err != nil {
		return nil, err
	}
	endStatus, err := t.EndStatus.str()
	if err != nil {
		return nil, err
	}
	descr, err := t.Description.toModel()
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Hash:                   t.Hash.hash(),
		Account:                models.AccountAddress(t.Account),
		Lt:                     t.Lt,
		PrevTransHash:          t.PrevTransHash.hash(),
		PrevTransLt:            t.PrevTransLt,
		Now:                    t.Now,
		OrigStatus:             origStatus,
		EndStatus:              endStatus,
		TotalFees:              t.TotalFees,
		AccountStateHashBefore: t.AccountStateHashBefore.hash(),
		AccountStateHashAfter:  t.AccountStateHashAfter.hash(),
		Descr:                  descr,
		Emulated:               r.Emulated,
	}
	tx.Messages = make([]*models.Message, 0, len(t.OutMsgs)+1)
	for i := range t.OutMsgs {
		tx.Messages = append(tx.Messages, t.OutMsgs[i].toModel(tx.Hash, tx.Lt, "out"))
	}
	tx.Messages = append(tx.Messages, t.InMsg.toModel(tx.Hash, tx.Lt, "in"))
	return tx, nil
}

// Transaction decodes one packed transaction record into its model form.
func Transaction(data []byte) (*models.Transaction, error) {
	var rec rawRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, &DecodeError{Hash: rec.Transaction.Hash.hash(), Err: err}
	}
	tx, err := rec.toModel()
	if err != nil {
		return nil, &DecodeError{Hash: rec.Transaction.Hash.hash(), Err: err}
	}
	return tx, nil
}
