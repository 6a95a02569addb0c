package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReg_AddAndGet(t *testing.T) {
	r := Reg{}
	r.Add("did:key:z6Mk1", "/tmp/a")
	r.Add("did:key:z6Mk1", "/tmp/b")
	r.Add("did:key:z6Mk1", "/tmp/a")

	assert.True(t, r.Exist("did:key:z6Mk1"))
	assert.False(t, r.Exist("did:key:z6Mk2"))
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, r.Get("did:key:z6Mk1"))
	assert.Empty(t, r.Get("did:key:z6Mk2"))
}

func TestReg_SaveAndLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sub", "dids.json")

	r := Reg{}
	r.Add("did:dht:abc", "/home/x/.tool5/did/create/did:dht:abc")
	r.Add("did:key:z6Mk1", "/home/x/.tool5/did/create/did:key:z6Mk1")
	require.NoError(t, r.Save(filename))

	r2, err := LoadRegister(filename)
	require.NoError(t, err)
	assert.Equal(t, r.Get("did:dht:abc"), r2.Get("did:dht:abc"))
	assert.True(t, r2.Exist("did:key:z6Mk1"))
	assert.False(t, r2.Exist("did:key:z6Mk2"))
}

func TestReg_LoadMissingAndBroken(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadRegister(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, r.Exist("any"))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
	_, err = LoadRegister(broken)
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	h := &Hub{}
	h.SetHome("/h")
	assert.Equal(t, DefaultEndpoint, h.Endpoint())
	assert.Equal(t, DefaultGateway, h.Gateway())
	assert.Equal(t, HTTPReqTimeout, h.Timeout())
	assert.Equal(t, "/h", h.Home())

	h.SetGateway("http://localhost:8305/")
	h.SetEndpoint("http://localhost:3000")
	h.SetTimeout(5 * time.Second)
	assert.Equal(t, "http://localhost:8305/", h.Gateway())
	assert.Equal(t, "http://localhost:3000", h.Endpoint())
	assert.Equal(t, 5*time.Second, h.Timeout())

	t.Setenv(HomeEnv, "/env/home")
	assert.Equal(t, "/env/home", ToolHome())
}
