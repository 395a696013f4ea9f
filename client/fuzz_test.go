//go:build go1.18

package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzParseBlock(f *testing.F) {
	seed := []string{
		`{"hash":"aa","parent":"bb","height":1,"timestamp":0,"transactions":[]}`,
		`{"hash":"0xAA","transactions":[{"id":"t1","from":"a","to":"b","amount":1}]}`,
		`{}`,
		`null`,
		`{"height":"not a number"}`,
		`[`,
	}
	for _, s := range seed {
		f.Add([]byte(s))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		block, err := ParseBlock(data)
		if err != nil {
			require.Equal(t, Block{}, block)
			return
		}
		out, err := json.Marshal(block)
		require.NoError(t, err)
		again, err := ParseBlock(out)
		require.NoError(t, err)
		require.Equal(t, block.Hash, again.Hash)
		require.Equal(t, block.Height, again.Height)
		require.Len(t, again.Transactions, len(block.Transactions))
	})
}
