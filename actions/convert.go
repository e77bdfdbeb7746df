package actions

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/toncenter/ton-indexer/ton-events-go/models"
)

// calcActionId derives the deterministic action identity: the root event
// node is the one with the minimum lt; its message hash (or transaction
// hash when it has no message) concatenated with the block type is
// SHA-256 hashed and std-base64 encoded.
func calcActionId(block *models.Block) models.HashType {
	root := block.EventNodes[0]
	for _, n := range block.EventNodes[1:] {
		if n.Lt < root.Lt {
			root = n
		}
	}
	key := string(root.TxHash)
	if root.MsgHash != nil {
		key = string(*root.MsgHash)
	}
	sum := sha256.Sum256([]byte(key + block.Btype))
	return models.HashType(base64.StdEncoding.EncodeToString(sum[:]))
}

func baseAction(block *models.Block, traceID models.HashType) models.Action {
	hashes := mapset.NewSet()
	for _, n := range block.EventNodes {
		hashes.Add(n.TxHash)
	}
	txHashes := make([]models.HashType, 0, hashes.Cardinality())
	for h := range hashes.Iter() {
		txHashes = append(txHashes, h.(models.HashType))
	}
	return models.Action{
		TraceId:    traceID,
		ActionId:   calcActionId(block),
		Type:       block.Btype,
		TxHashes:   txHashes,
		StartLt:    block.MinLt,
		EndLt:      block.MaxLt,
		StartUtime: block.MinUtime,
		EndUtime:   block.MaxUtime,
		Success:    !block.Failed,
	}
}

// Convert builds the canonical action for one classified block. A block
// type without an extractor yields the base action alone; new classifier
// types are expected to appear before this package learns about them.
func Convert(block *models.Block, traceID models.HashType) (*models.Action, error) {
	if len(block.EventNodes) == 0 {
		return nil, fmt.Errorf("block %s has no event nodes", block.Btype)
	}
	action := baseAction(block, traceID)

	var err error
	switch block.Btype {
	case "call_contract":
		err = fillCallContract(block, &action)
	case "ton_transfer":
		err = fillTonTransfer(block, &action)
	case "jetton_transfer":
		err = fillJettonTransfer(block, &action)
	case "nft_transfer":
		err = fillNftTransfer(block, &action)
	case "nft_mint":
		err = fillNftMint(block, &action)
	case "jetton_burn":
		err = fillJettonBurn(block, &action)
	case "jetton_swap":
		err = fillJettonSwap(block, &action)
	case "change_dns":
		err = fillChangeDnsRecord(block, &action)
	case "delete_dns":
		err = fillDeleteDnsRecord(block, &action)
	case "subscribe":
		err = fillSubscribe(block, &action)
	case "unsubscribe":
		err = fillUnsubscribe(block, &action)
	case "election_deposit", "election_recover":
		err = fillElection(block, &action)
	case "auction_bid":
		err = fillAuctionBid(block, &action)
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// accountStr renders an account reference, nil for an absent one.
func accountStr(a *models.AccountId) *models.AccountAddress {
	if a == nil {
		return nil
	}
	s := models.AccountAddress(a.AsStr())
	return &s
}

// assetStr renders an asset reference: the jetton minter address, nil for
// the native coin or an absent asset.
func assetStr(a *models.Asset) *models.AccountAddress {
	if a == nil || a.IsTon {
		return nil
	}
	return accountStr(a.JettonAddress)
}

// refStr renders a payload value that may hold either kind of reference.
func refStr(v any) *models.AccountAddress {
	switch x := v.(type) {
	case *models.AccountId:
		return accountStr(x)
	case *models.Asset:
		return assetStr(x)
	}
	return nil
}
