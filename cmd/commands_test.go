package cmd

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockHash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

// runCLI executes the root command with a private config file and history
// database under dir.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := createRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.json"),
		"--db", filepath.Join(dir, "history.db"),
	}, args...))
	err := run(root)
	return out.String(), err
}

// nodeArgs returns the --node and --port flags pointing at server.
func nodeArgs(t *testing.T, server *httptest.Server) []string {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return []string{"--node", host, "--port", port}
}

type fakeNode struct {
	head     string
	prefixed bool // report hashes as 0x<hex>
	snapshot []byte
	hits     atomic.Int64
}

func (n *fakeNode) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		n.hits.Add(1)
		status := map[string]any{"network": "testnet", "version": "1.4.2", "height": 42, "peers": 3}
		if n.head != "" {
			status["head"] = n.hash(n.head)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/blocks/", func(w http.ResponseWriter, r *http.Request) {
		n.hits.Add(1)
		hash := n.hash(strings.TrimPrefix(r.URL.Path, "/blocks/"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hash": hash, "parent": strings.Repeat("0", 64), "height": 42, "timestamp": 1700000000,
			"transactions": []map[string]any{{"id": "tx-1", "from": "alice", "to": "bob", "amount": 25}},
		})
	})
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		n.hits.Add(1)
		_, _ = w.Write(n.snapshot)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (n *fakeNode) hash(h string) string {
	if n.prefixed {
		return "0x" + strings.TrimPrefix(h, "0x")
	}
	return h
}

func TestStatusCmd(t *testing.T) {
	node := &fakeNode{head: blockHash}
	server := node.serve(t)

	out, err := runCLI(t, t.TempDir(), append(nodeArgs(t, server), "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "testnet")
	assert.Contains(t, out, "1.4.2")
	assert.Contains(t, out, blockHash)
}

func TestStatusCmd_NoHead(t *testing.T) {
	server := (&fakeNode{}).serve(t)

	out, err := runCLI(t, t.TempDir(), append(nodeArgs(t, server), "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")
}

func TestStatusCmd_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := runCLI(t, t.TempDir(), append(nodeArgs(t, server), "--timeout", "50ms", "status")...)
	require.Error(t, err)

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "✘ HTTP Reqwest Error!")
	assert.Contains(t, buf.String(), apperr.HTTPHint)
	assert.True(t, strings.HasSuffix(buf.String(), "✔ Exiting, goodbye!\n"))
}

func TestBlockCmd_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	server := (&fakeNode{}).serve(t)
	savePath := filepath.Join(dir, "block.json")

	out, err := runCLI(t, dir, append(nodeArgs(t, server), "block", "0x"+strings.ToUpper(blockHash), "--save", savePath)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Block "+blockHash)
	assert.Contains(t, out, "alice")

	saved, err := os.ReadFile(savePath)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "\n  \"hash\": \""+blockHash+"\"")

	out, err = runCLI(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, shortHash(blockHash))
	assert.Contains(t, out, "42")

	out, err = runCLI(t, dir, "history", "show", blockHash)
	require.NoError(t, err)
	assert.Contains(t, out, `"transactions"`)

	out, err = runCLI(t, dir, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	out, err = runCLI(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No lookups recorded yet")
}

func TestBlockCmd_Latest(t *testing.T) {
	dir := t.TempDir()
	server := (&fakeNode{head: blockHash}).serve(t)

	out, err := runCLI(t, dir, append(nodeArgs(t, server), "block", "--latest")...)
	require.NoError(t, err)
	assert.Contains(t, out, blockHash)
}

func TestBlockCmd_PrefixedNodeHashes(t *testing.T) {
	dir := t.TempDir()
	server := (&fakeNode{head: blockHash, prefixed: true}).serve(t)
	args := nodeArgs(t, server)

	out, err := runCLI(t, dir, append(args, "block", "0x"+blockHash)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Block "+blockHash)

	_, err = runCLI(t, dir, append(args, "block", blockHash)...)
	require.NoError(t, err)

	_, err = runCLI(t, dir, "history", "--clear")
	require.NoError(t, err)

	_, err = runCLI(t, dir, append(args, "block", "--latest")...)
	require.NoError(t, err)

	for _, form := range []string{blockHash, "0x" + blockHash, "0X" + strings.ToUpper(blockHash)} {
		out, err = runCLI(t, dir, "history", "show", form)
		require.NoError(t, err, form)
		assert.Contains(t, out, `"transactions"`)
	}
}

func TestBlockCmd_LatestWithoutHead(t *testing.T) {
	server := (&fakeNode{}).serve(t)

	_, err := runCLI(t, t.TempDir(), append(nodeArgs(t, server), "block", "--latest")...)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNone, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Render(), "✘ Nothing to unwrap!")
}

func TestBlockCmd_BadArguments(t *testing.T) {
	node := &fakeNode{}
	server := node.serve(t)
	args := nodeArgs(t, server)

	_, err := runCLI(t, t.TempDir(), append(args, "block")...)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))

	_, err = runCLI(t, t.TempDir(), append(args, "block", blockHash, "--latest")...)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))

	_, err = runCLI(t, t.TempDir(), append(args, "block", "abc")...)
	assert.Equal(t, apperr.KindHex, apperr.KindOf(err))

	assert.Zero(t, node.hits.Load(), "invalid input must not reach the node")
}

func TestHistoryShow_Unknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "history", "show", blockHash)
	require.Error(t, err)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "not in the lookup history")
}

func TestSnapshotCmd(t *testing.T) {
	payload := bytes.Repeat([]byte("chain"), 2048)
	sum := sha256.Sum256(payload)
	server := (&fakeNode{snapshot: payload}).serve(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "snap", "chain.snap")

	out, err := runCLI(t, dir, append(nodeArgs(t, server), "snapshot", dest, "--sha256", hex.EncodeToString(sum[:]))...)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 10240 bytes")
	assert.FileExists(t, dest)
}

func TestSnapshotCmd_ChecksumMismatch(t *testing.T) {
	server := (&fakeNode{snapshot: []byte("data")}).serve(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "chain.snap")

	_, err := runCLI(t, dir, append(nodeArgs(t, server), "snapshot", dest, "--sha256", strings.Repeat("00", 32))...)
	require.Error(t, err)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Checksum mismatch")
	assert.NoFileExists(t, dest)
}

func TestSnapshotCmd_MalformedDigest(t *testing.T) {
	node := &fakeNode{snapshot: []byte("data")}
	server := node.serve(t)
	dir := t.TempDir()

	_, err := runCLI(t, dir, append(nodeArgs(t, server), "snapshot", filepath.Join(dir, "s"), "--sha256", "xyz")...)
	require.Error(t, err)
	assert.Equal(t, apperr.KindHex, apperr.KindOf(err))
	assert.Zero(t, node.hits.Load())
}

func TestFileVerify_OddDigest(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "x")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))

	_, err := runCLI(t, dir, "file", "verify", target, "abc")
	require.Error(t, err)
	assert.Equal(t, apperr.KindHex, apperr.KindOf(err))

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "Hex Error")
	assert.Contains(t, buf.String(), "encoding/hex: odd length hex string")
}

func TestFileVerify(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hello")
	require.NoError(t, os.WriteFile(target, []byte("hello world"), 0o600))

	out, err := runCLI(t, dir, "file", "verify", "--algo", "md5", target, "5eb63bbbe01eeed093cb22bb8f5acdc3")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	_, err = runCLI(t, dir, "file", "verify", "--algo", "crc32", target, "00")
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "blocks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "chain.db"), []byte("hello world"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(data, "blocks", "1.blk"), []byte("hello world"), 0o600))

	out, err := runCLI(t, dir, "file", "hash", "--algo", "sha1", "--save", "--threads", "2", data)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"))
	assert.FileExists(t, filepath.Join(data, "blocks", "1.blk.sha1"))

	out, err = runCLI(t, dir, "file", "hash", "--clean", "--recursive=false", data)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(data, "chain.db.sha1"))
	assert.NotContains(t, out, "1.blk")

	_, err = runCLI(t, dir, "file", "hash", "--threads", "0", data)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))

	_, err = runCLI(t, dir, "file", "hash", filepath.Join(dir, "missing"))
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Save(config.Config{Host: "node.local", Port: 9000, Timeout: config.DefaultTimeout},
		filepath.Join(dir, "config.json")))

	out, err := runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, tableRow(out, "Host"), "node.local")
	assert.Contains(t, tableRow(out, "Port"), "9000")

	t.Setenv("NODECLI_PORT", "9100")
	out, err = runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, tableRow(out, "Port"), "9100")

	out, err = runCLI(t, dir, "--port", "9200", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, tableRow(out, "Port"), "9200")
}

// tableRow returns the rendered table line whose first cell is name.
func tableRow(out, name string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(line, "|")), name+" ") {
			return line
		}
	}
	return ""
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "--node", "10.0.0.2", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings written")

	cfg := config.Default()
	require.NoError(t, config.LoadFile(&cfg, filepath.Join(dir, "config.json")))
	assert.Equal(t, "10.0.0.2", cfg.Host)

	_, err = runCLI(t, dir, "config", "init")
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))

	_, err = runCLI(t, dir, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestBrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"host":`), 0o600))

	_, err := runCLI(t, dir, "status")
	require.Error(t, err)
	assert.Equal(t, apperr.KindJSON, apperr.KindOf(err))

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), "Serde-Json Error!")
}

func TestInvalidPortFlag(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "--port", "70000", "status")
	require.Error(t, err)
	assert.Equal(t, apperr.KindCustom, apperr.KindOf(err))
}

func TestProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, io.Discard, progressOutput(&buf))

	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, io.Discard, progressOutput(f), "regular files are not terminals")
}
