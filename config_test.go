package ledgersdk

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "client.toml", `
network = "testnet"
mirrorNetwork = ["mirror.example.com:443"]

[operator]
accountId = "0.0.1001"
privateKey = "deadbeef"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, []string{"mirror.example.com:443"}, cfg.MirrorNetwork)
	assert.Equal(t, "0.0.1001", cfg.Operator.AccountID)
	assert.Equal(t, "deadbeef", cfg.Operator.PrivateKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfig_AddressBook_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	bookPath := writeFile(t, dir, "book.yaml", `
"0.0.3":
  - "127.0.0.1:50211"
"0.0.4":
  - "127.0.0.2:50211"
  - "127.0.0.3:50212"
`)
	cfg := &Config{AddressBookFile: bookPath}
	book, err := cfg.addressBook()
	require.NoError(t, err)

	id3 := AccountID{Shard: 0, Realm: 0, Num: 3}
	id4 := AccountID{Shard: 0, Realm: 0, Num: 4}
	require.Contains(t, book, id3)
	require.Contains(t, book, id4)
	assert.Equal(t, []Endpoint{{IP: [4]byte{127, 0, 0, 1}, Port: 50211}}, book[id3])
	assert.Len(t, book[id4], 2)
}

func TestClientFromConfig_CustomNetwork(t *testing.T) {
	dir := t.TempDir()
	bookPath := writeFile(t, dir, "book.yaml", `
"0.0.3":
  - "127.0.0.1:50211"
`)

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	cfgPath := writeFile(t, dir, "client.toml", `
network = "custom"
addressBookFile = "`+bookPath+`"

[operator]
accountId = "0.0.1001"
privateKey = "`+hex.EncodeToString(priv)+`"
`)

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)

	client, err := ClientFromConfig(cfg)
	require.NoError(t, err)
	defer client.Close(context.Background())

	op := client.Operator()
	require.NotNil(t, op)
	assert.Equal(t, AccountID{Shard: 0, Realm: 0, Num: 1001}, op.AccountID)
}

func TestClientFromConfig_UnrecognizedNetwork(t *testing.T) {
	cfg := &Config{Network: "moon"}
	_, err := ClientFromConfig(cfg)
	require.Error(t, err)
}
