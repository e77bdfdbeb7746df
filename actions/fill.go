package actions

import (
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

func fieldValue(b *models.Block, m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return v, nil
}

// accountField reads a mandatory account key that may hold an explicit null.
func accountField(b *models.Block, m map[string]any, key string) (*models.AccountId, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	a, ok := v.(*models.AccountId)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return a, nil
}

// requiredAccount reads a mandatory, non-null account key.
func requiredAccount(b *models.Block, m map[string]any, key string) (*models.AccountId, error) {
	a, err := accountField(b, m, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return a, nil
}

// optionalAccount reads a key that the classifier may omit entirely.
func optionalAccount(m map[string]any, key string) *models.AccountId {
	if v, ok := m[key]; ok {
		if a, ok := v.(*models.AccountId); ok {
			return a
		}
	}
	return nil
}

// amountField reads a mandatory, non-null amount key.
func amountField(b *models.Block, m map[string]any, key string) (*big.Int, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	x, ok := v.(*big.Int)
	if !ok || x == nil {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return x, nil
}

// nullableAmount reads a mandatory amount key that may hold an explicit null.
func nullableAmount(b *models.Block, m map[string]any, key string) (*big.Int, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	x, ok := v.(*big.Int)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return x, nil
}

func optionalAmount(m map[string]any, key string) *big.Int {
	if v, ok := m[key]; ok {
		if x, ok := v.(*big.Int); ok {
			return x
		}
	}
	return nil
}

// assetField reads a mandatory asset key that may hold an explicit null.
func assetField(b *models.Block, m map[string]any, key string) (*models.Asset, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	a, ok := v.(*models.Asset)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return a, nil
}

func stringField(b *models.Block, m map[string]any, key string) (*string, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return &s, nil
}

func bytesField(b *models.Block, m map[string]any, key string) ([]byte, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return raw, nil
}

func boolField(b *models.Block, m map[string]any, key string) (bool, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return false, err
	}
	flag, ok := v.(bool)
	if !ok {
		return false, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return flag, nil
}

func int64Field(b *models.Block, m map[string]any, key string) (*int64, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return &x, nil
	case int:
		y := int64(x)
		return &y, nil
	case uint64:
		y := int64(x)
		return &y, nil
	}
	return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
}

func mapField(b *models.Block, m map[string]any, key string) (map[string]any, error) {
	v, err := fieldValue(b, m, key)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, &MissingRequiredFieldError{BlockType: b.Btype, Key: key}
	}
	return sub, nil
}

func bigStr(x *big.Int) *string {
	if x == nil {
		return nil
	}
	s := x.String()
	return &s
}

// idString renders a query id or item index however the classifier typed it.
func idString(v any) *string {
	switch x := v.(type) {
	case string:
		return &x
	case *big.Int:
		return bigStr(x)
	case uint64:
		s := strconv.FormatUint(x, 10)
		return &s
	case int64:
		s := strconv.FormatInt(x, 10)
		return &s
	case int:
		s := strconv.Itoa(x)
		return &s
	}
	return nil
}

func stripNul(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

func fillCallContract(b *models.Block, a *models.Action) error {
	a.Opcode = b.Opcode
	value, err := amountField(b, b.Data, "value")
	if err != nil {
		return err
	}
	a.Value = bigStr(value)
	src, err := accountField(b, b.Data, "source")
	if err != nil {
		return err
	}
	a.Source = accountStr(src)
	dst, err := accountField(b, b.Data, "destination")
	if err != nil {
		return err
	}
	a.Destination = accountStr(dst)
	return nil
}

func fillTonTransfer(b *models.Block, a *models.Action) error {
	a.Value = bigStr(b.Value)
	src, err := requiredAccount(b, b.Data, "source")
	if err != nil {
		return err
	}
	a.Source = accountStr(src)
	dst, err := accountField(b, b.Data, "destination")
	if err != nil {
		return err
	}
	if dst == nil {
		// Upstream classifier anomaly; the action is still produced.
		logrus.WithFields(logrus.Fields{
			"action_id": a.ActionId,
			"trace_id":  a.TraceId,
		}).Warn("ton_transfer block with null destination")
	}
	a.Destination = accountStr(dst)

	comment, err := stringField(b, b.Data, "comment")
	if err != nil {
		return err
	}
	if comment != nil {
		stripped := stripNul(*comment)
		comment = &stripped
	}
	encrypted, err := boolField(b, b.Data, "encrypted")
	if err != nil {
		return err
	}
	a.TonTransferData = &models.TonTransferDetails{
		Content:   comment,
		Encrypted: encrypted,
	}
	return nil
}

func fillJettonTransfer(b *models.Block, a *models.Action) error {
	sender, err := requiredAccount(b, b.Data, "sender")
	if err != nil {
		return err
	}
	a.Source = accountStr(sender)
	senderWallet, err := requiredAccount(b, b.Data, "sender_wallet")
	if err != nil {
		return err
	}
	a.SourceSecondary = accountStr(senderWallet)
	receiver, err := requiredAccount(b, b.Data, "receiver")
	if err != nil {
		return err
	}
	a.Destination = accountStr(receiver)
	a.DestinationSecondary = accountStr(optionalAccount(b.Data, "receiver_wallet"))

	amount, err := amountField(b, b.Data, "amount")
	if err != nil {
		return err
	}
	a.Amount = bigStr(amount)
	asset, err := assetField(b, b.Data, "asset")
	if err != nil {
		return err
	}
	a.Asset = assetStr(asset)

	queryID, err := fieldValue(b, b.Data, "query_id")
	if err != nil {
		return err
	}
	responseDst, err := accountField(b, b.Data, "response_address")
	if err != nil {
		return err
	}
	forwardAmount, err := amountField(b, b.Data, "forward_amount")
	if err != nil {
		return err
	}
	customPayload, err := stringField(b, b.Data, "custom_payload")
	if err != nil {
		return err
	}
	forwardPayload, err := stringField(b, b.Data, "forward_payload")
	if err != nil {
		return err
	}
	encryptedComment, err := boolField(b, b.Data, "encrypted_comment")
	if err != nil {
		return err
	}
	rawComment, err := bytesField(b, b.Data, "comment")
	if err != nil {
		return err
	}
	var comment *string
	if rawComment != nil {
		var s string
		if encryptedComment {
			s = base64.StdEncoding.EncodeToString(rawComment)
		} else {
			s = stripNul(string(rawComment))
		}
		comment = &s
	}

	a.JettonTransferData = &models.JettonTransferDetails{
		QueryId:             idString(queryID),
		ResponseDestination: accountStr(responseDst),
		ForwardAmount:       bigStr(forwardAmount),
		CustomPayload:       customPayload,
		ForwardPayload:      forwardPayload,
		Comment:             comment,
		IsEncryptedComment:  encryptedComment,
	}
	return nil
}

func fillNftTransfer(b *models.Block, a *models.Action) error {
	a.Source = accountStr(optionalAccount(b.Data, "prev_owner"))
	newOwner, err := requiredAccount(b, b.Data, "new_owner")
	if err != nil {
		return err
	}
	a.Destination = accountStr(newOwner)

	nft, err := mapField(b, b.Data, "nft")
	if err != nil {
		return err
	}
	nftAddr, err := requiredAccount(b, nft, "address")
	if err != nil {
		return err
	}
	a.AssetSecondary = accountStr(nftAddr)
	collection, err := fieldValue(b, nft, "collection")
	if err != nil {
		return err
	}
	if sub, ok := collection.(map[string]any); ok {
		collectionAddr, err := requiredAccount(b, sub, "address")
		if err != nil {
			return err
		}
		a.Asset = accountStr(collectionAddr)
	}
	index, err := fieldValue(b, nft, "index")
	if err != nil {
		return err
	}

	queryID, err := fieldValue(b, b.Data, "query_id")
	if err != nil {
		return err
	}
	isPurchase, err := boolField(b, b.Data, "is_purchase")
	if err != nil {
		return err
	}
	var price *big.Int
	if isPurchase {
		price = optionalAmount(b.Data, "price")
	}
	forwardAmount, err := nullableAmount(b, b.Data, "forward_amount")
	if err != nil {
		return err
	}
	customPayload, err := stringField(b, b.Data, "custom_payload")
	if err != nil {
		return err
	}
	forwardPayload, err := stringField(b, b.Data, "forward_payload")
	if err != nil {
		return err
	}
	responseDst, err := accountField(b, b.Data, "response_destination")
	if err != nil {
		return err
	}

	a.NftTransferData = &models.NftTransferDetails{
		QueryId:             idString(queryID),
		IsPurchase:          isPurchase,
		Price:               bigStr(price),
		NftItemIndex:        idString(index),
		ForwardAmount:       bigStr(forwardAmount),
		CustomPayload:       customPayload,
		ForwardPayload:      forwardPayload,
		ResponseDestination: accountStr(responseDst),
	}
	return nil
}

func fillNftMint(b *models.Block, a *models.Action) error {
	src, err := accountField(b, b.Data, "source")
	if err != nil {
		return err
	}
	a.Source = accountStr(src)
	addr, err := requiredAccount(b, b.Data, "address")
	if err != nil {
		return err
	}
	a.Destination = accountStr(addr)
	a.AssetSecondary = a.Destination
	collection, err := accountField(b, b.Data, "collection")
	if err != nil {
		return err
	}
	a.Asset = accountStr(collection)
	index, err := fieldValue(b, b.Data, "index")
	if err != nil {
		return err
	}
	a.NftMintData = &models.NftMintDetails{NftItemIndex: idString(index)}
	return nil
}

func fillJettonBurn(b *models.Block, a *models.Action) error {
	owner, err := requiredAccount(b, b.Data, "owner")
	if err != nil {
		return err
	}
	a.Source = accountStr(owner)
	wallet, err := requiredAccount(b, b.Data, "jetton_wallet")
	if err != nil {
		return err
	}
	a.SourceSecondary = accountStr(wallet)
	asset, err := assetField(b, b.Data, "asset")
	if err != nil {
		return err
	}
	a.Asset = assetStr(asset)
	if a.Asset == nil {
		return &MissingRequiredFieldError{BlockType: b.Btype, Key: "asset"}
	}
	amount, err := amountField(b, b.Data, "amount")
	if err != nil {
		return err
	}
	a.Amount = bigStr(amount)
	return nil
}

func dexTransfer(b *models.Block, key string) (models.DexTransferDetails, error) {
	m, err := mapField(b, b.Data, key)
	if err != nil {
		return models.DexTransferDetails{}, err
	}
	amount, err := amountField(b, m, "amount")
	if err != nil {
		return models.DexTransferDetails{}, err
	}
	d := models.DexTransferDetails{Amount: bigStr(amount)}
	for subKey, field := range map[string]**models.AccountAddress{
		"source":                    &d.Source,
		"source_jetton_wallet":      &d.SourceJettonWallet,
		"destination":               &d.Destination,
		"destination_jetton_wallet": &d.DestinationJettonWallet,
		"asset":                     &d.Asset,
	} {
		v, err := fieldValue(b, m, subKey)
		if err != nil {
			return models.DexTransferDetails{}, err
		}
		*field = refStr(v)
	}
	return d, nil
}

func fillJettonSwap(b *models.Block, a *models.Action) error {
	dex, err := stringField(b, b.Data, "dex")
	if err != nil {
		return err
	}
	sender, err := fieldValue(b, b.Data, "sender")
	if err != nil {
		return err
	}
	incoming, err := dexTransfer(b, "dex_incoming_transfer")
	if err != nil {
		return err
	}
	outgoing, err := dexTransfer(b, "dex_outgoing_transfer")
	if err != nil {
		return err
	}

	a.Asset = incoming.Asset
	a.Asset2 = outgoing.Asset
	a.Source = incoming.Source
	a.SourceSecondary = incoming.SourceJettonWallet
	a.Destination = outgoing.Destination
	a.DestinationSecondary = outgoing.DestinationJettonWallet
	a.JettonSwapData = &models.JettonSwapDetails{
		Dex:                 dex,
		Sender:              refStr(sender),
		DexIncomingTransfer: incoming,
		DexOutgoingTransfer: outgoing,
	}
	return nil
}

func fillChangeDnsRecord(b *models.Block, a *models.Action) error {
	src, err := accountField(b, b.Data, "source")
	if err != nil {
		return err
	}
	a.Source = accountStr(src)
	dst, err := requiredAccount(b, b.Data, "destination")
	if err != nil {
		return err
	}
	a.Destination = accountStr(dst)

	keyBytes, err := bytesField(b, b.Data, "key")
	if err != nil {
		return err
	}
	if keyBytes == nil {
		return &MissingRequiredFieldError{BlockType: b.Btype, Key: "key"}
	}
	hexKey := hex.EncodeToString(keyBytes)
	value, err := mapField(b, b.Data, "value")
	if err != nil {
		return err
	}
	schema, err := stringField(b, value, "schema")
	if err != nil {
		return err
	}

	details := &models.ChangeDnsRecordDetails{
		Key:         &hexKey,
		ValueSchema: schema,
	}
	if schema != nil {
		switch *schema {
		case "DNSNextResolver", "DNSSmcAddress":
			addr, err := requiredAccount(b, value, "address")
			if err != nil {
				return err
			}
			s := addr.AsStr()
			details.Address = &s
		case "DNSAdnlAddress":
			raw, err := bytesField(b, value, "address")
			if err != nil {
				return err
			}
			if raw == nil {
				return &MissingRequiredFieldError{BlockType: b.Btype, Key: "address"}
			}
			s := hex.EncodeToString(raw)
			details.Address = &s
		}
		if *schema == "DNSAdnlAddress" || *schema == "DNSSmcAddress" {
			flags, err := int64Field(b, value, "flags")
			if err != nil {
				return err
			}
			details.Flags = flags
		}
		if *schema == "DNSText" {
			text, err := stringField(b, value, "dns_text")
			if err != nil {
				return err
			}
			details.DnsText = text
		}
	}
	a.ChangeDnsRecordData = details
	return nil
}

func fillDeleteDnsRecord(b *models.Block, a *models.Action) error {
	src, err := accountField(b, b.Data, "source")
	if err != nil {
		return err
	}
	a.Source = accountStr(src)
	dst, err := requiredAccount(b, b.Data, "destination")
	if err != nil {
		return err
	}
	a.Destination = accountStr(dst)

	keyBytes, err := bytesField(b, b.Data, "key")
	if err != nil {
		return err
	}
	if keyBytes == nil {
		return &MissingRequiredFieldError{BlockType: b.Btype, Key: "key"}
	}
	hexKey := hex.EncodeToString(keyBytes)
	a.ChangeDnsRecordData = &models.ChangeDnsRecordDetails{Key: &hexKey}
	return nil
}

func fillSubscribe(b *models.Block, a *models.Action) error {
	subscriber, err := requiredAccount(b, b.Data, "subscriber")
	if err != nil {
		return err
	}
	a.Source = accountStr(subscriber)
	beneficiary, err := accountField(b, b.Data, "beneficiary")
	if err != nil {
		return err
	}
	a.Destination = accountStr(beneficiary)
	subscription, err := requiredAccount(b, b.Data, "subscription")
	if err != nil {
		return err
	}
	a.DestinationSecondary = accountStr(subscription)
	amount, err := amountField(b, b.Data, "amount")
	if err != nil {
		return err
	}
	a.Amount = bigStr(amount)
	return nil
}

func fillUnsubscribe(b *models.Block, a *models.Action) error {
	subscriber, err := requiredAccount(b, b.Data, "subscriber")
	if err != nil {
		return err
	}
	a.Source = accountStr(subscriber)
	beneficiary, err := accountField(b, b.Data, "beneficiary")
	if err != nil {
		return err
	}
	a.Destination = accountStr(beneficiary)
	subscription, err := requiredAccount(b, b.Data, "subscription")
	if err != nil {
		return err
	}
	a.DestinationSecondary = accountStr(subscription)
	return nil
}

func fillElection(b *models.Block, a *models.Action) error {
	stakeHolder, err := requiredAccount(b, b.Data, "stake_holder")
	if err != nil {
		return err
	}
	a.Source = accountStr(stakeHolder)
	a.Amount = bigStr(optionalAmount(b.Data, "amount"))
	return nil
}

func fillAuctionBid(b *models.Block, a *models.Action) error {
	bidder, err := requiredAccount(b, b.Data, "bidder")
	if err != nil {
		return err
	}
	a.Source = accountStr(bidder)
	auction, err := requiredAccount(b, b.Data, "auction")
	if err != nil {
		return err
	}
	a.Destination = accountStr(auction)
	nftAddr, err := requiredAccount(b, b.Data, "nft_address")
	if err != nil {
		return err
	}
	a.AssetSecondary = accountStr(nftAddr)
	amount, err := amountField(b, b.Data, "amount")
	if err != nil {
		return err
	}
	a.Value = bigStr(amount)
	return nil
}
