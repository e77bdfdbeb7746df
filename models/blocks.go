package models

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// AccountId is a parsed account address as it appears in classified block
// payloads. AsStr renders the canonical raw form used across the indexer.
type AccountId struct {
	addr *address.Address
}

// NewAccountId parses an address in user-friendly (std or url base64) or
// raw workchain:hex form.
func NewAccountId(raw string) (*AccountId, error) {
	addr, err := address.ParseAddr(raw)
	if err != nil {
		fixed := strings.NewReplacer("+", "-", "/", "_").Replace(raw)
		addr, err = address.ParseAddr(fixed)
	}
	if err != nil {
		addr, err = address.ParseRawAddr(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse account %q: %w", raw, err)
	}
	return &AccountId{addr: addr}, nil
}

func (a *AccountId) AsStr() string {
	return fmt.Sprintf("%d:%s", a.addr.Workchain(), strings.ToUpper(hex.EncodeToString(a.addr.Data())))
}

// Asset is either the native coin or a jetton identified by its minter.
type Asset struct {
	IsTon         bool
	JettonAddress *AccountId
}

// EventNode is one contributing event of a classified block: a transaction
// and, when the event was triggered by a message, that message.
type EventNode struct {
	Lt      uint64
	TxHash  HashType
	MsgHash *HashType
}

// Block is a classified operation produced by the external block
// classifier. Data is the type-dependent payload; its values are
// *AccountId, *Asset, *big.Int (amounts), string, []byte, bool, integer
// ids or nested map[string]any, with nil for explicit nulls.
type Block struct {
	Btype      string
	EventNodes []EventNode
	Failed     bool
	MinLt      uint64
	MaxLt      uint64
	MinUtime   uint32
	MaxUtime   uint32
	Opcode     *OpcodeType
	Value      *big.Int
	Data       map[string]any
}
