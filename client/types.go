package client

import (
	"encoding/json"

	"github.com/habedi/nodecli/pkg/optional"
	"github.com/rs/zerolog/log"
)

// Status contains the node's self-reported state.
type Status struct {
	Network string                  `json:"network"`
	Version string                  `json:"version"`
	Height  int64                   `json:"height"`
	Peers   int                     `json:"peers"`
	Head    optional.Option[string] `json:"head"` // absent while the chain is empty
	Syncing bool                    `json:"syncing"`
}

// Block contains a single block as returned by the node.
type Block struct {
	Hash         string        `json:"hash"`
	Parent       string        `json:"parent"`
	Height       int64         `json:"height"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction is a single entry in a block.
type Transaction struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ParseBlock parses raw block JSON into a Block struct.
func ParseBlock(data []byte) (Block, error) {
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		log.Error().Err(err).Str("body_preview", string(data[:min(len(data), 200)])).Msg("Failed to parse block JSON")
		return Block{}, err
	}
	return block, nil
}
