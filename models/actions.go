package models

type TonTransferDetails struct {
	Content   *string
	Encrypted bool
}

type JettonTransferDetails struct {
	QueryId             *string
	ResponseDestination *AccountAddress
	ForwardAmount       *string
	CustomPayload       *string
	ForwardPayload      *string
	Comment             *string
	IsEncryptedComment  bool
}

type NftTransferDetails struct {
	QueryId             *string
	IsPurchase          bool
	Price               *string
	NftItemIndex        *string
	ForwardAmount       *string
	CustomPayload       *string
	ForwardPayload      *string
	ResponseDestination *AccountAddress
}

type NftMintDetails struct {
	NftItemIndex *string
}

type DexTransferDetails struct {
	Amount                  *string
	Source                  *AccountAddress
	SourceJettonWallet      *AccountAddress
	Destination             *AccountAddress
	DestinationJettonWallet *AccountAddress
	Asset                   *AccountAddress
}

type JettonSwapDetails struct {
	Dex                 *string
	Sender              *AccountAddress
	DexIncomingTransfer DexTransferDetails
	DexOutgoingTransfer DexTransferDetails
}

type ChangeDnsRecordDetails struct {
	Key         *string
	ValueSchema *string
	Address     *string
	Flags       *int64
	DnsText     *string
}

// Action is the canonical summary of one classified block. The common
// fields are always set; the optional fields and the per-type *Data
// payload depend on Type.
type Action struct {
	TraceId              HashType
	ActionId             HashType
	Type                 string
	TxHashes             []HashType
	StartLt              uint64
	EndLt                uint64
	StartUtime           uint32
	EndUtime             uint32
	Success              bool
	Source               *AccountAddress
	SourceSecondary      *AccountAddress
	Destination          *AccountAddress
	DestinationSecondary *AccountAddress
	Value                *string
	Amount               *string
	Asset                *AccountAddress
	AssetSecondary       *AccountAddress
	Asset2               *AccountAddress
	Opcode               *OpcodeType

	TonTransferData     *TonTransferDetails
	JettonTransferData  *JettonTransferDetails
	NftTransferData     *NftTransferDetails
	NftMintData         *NftMintDetails
	JettonSwapData      *JettonSwapDetails
	ChangeDnsRecordData *ChangeDnsRecordDetails
}
