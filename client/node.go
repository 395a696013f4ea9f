package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/rs/zerolog/log"
)

// FetchStatus retrieves and parses the node status.
func (c *Client) FetchStatus(ctx context.Context) (Status, error) {
	log.Info().Str("node", c.baseURL).Msg("Fetching node status")
	body, err := c.get(ctx, "/status")
	if err != nil {
		return Status{}, err
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		log.Error().Err(err).Str("body_preview", string(body[:min(len(body), 200)])).Msg("Failed to parse status JSON")
		return Status{}, apperr.JSON(err)
	}
	return status, nil
}

// FetchBlock retrieves a block by hash. It returns the parsed block and the
// raw JSON so callers can store it verbatim.
func (c *Client) FetchBlock(ctx context.Context, hash string) (Block, []byte, error) {
	hash = validation.NormalizeBlockHash(hash)
	log.Info().Str("node", c.baseURL).Str("hash", hash).Msg("Fetching block")
	body, err := c.get(ctx, "/blocks/"+url.PathEscape(hash))
	if err != nil {
		return Block{}, nil, err
	}

	block, err := ParseBlock(body)
	if err != nil {
		return Block{}, body, apperr.JSON(err)
	}
	if block.Hash == "" {
		return Block{}, body, apperr.Custom(`The node returned a block without the required field "hash".`)
	}
	if validation.NormalizeBlockHash(block.Hash) != hash {
		return Block{}, body, apperr.Customf("The node returned block %s when %s was requested.", block.Hash, hash)
	}
	block.Hash = hash

	log.Info().Str("hash", block.Hash).Int64("height", block.Height).Msg("Successfully fetched block")
	return block, body, nil
}

// FetchHead retrieves the block at the head of the chain. An empty chain
// has no head and yields a None error.
func (c *Client) FetchHead(ctx context.Context) (Block, []byte, error) {
	status, err := c.FetchStatus(ctx)
	if err != nil {
		return Block{}, nil, err
	}
	head, err := status.Head.Get()
	if err != nil {
		log.Warn().Str("node", c.baseURL).Msg("Node reported no head block")
		return Block{}, nil, apperr.None(err)
	}
	return c.FetchBlock(ctx, head)
}
