package useragent

import (
	"context"
	"crypto/ed25519"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnonni/tool5/core"
	"github.com/hyperledger/aries-framework-go/pkg/vdr/fingerprint"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

var _ core.Identity = (*Agent)(nil)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestCreateAndOpen(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	path := filepath.Join(t.TempDir(), "agent")
	a, phrase, err := Create(CreateParams{Path: path, Password: "secret"})
	assert.NoError(err)
	assert.SLen(strings.Fields(phrase), 24)
	assert.That(strings.HasPrefix(a.DID(), "did:key:z6Mk"))
	assert.That(strings.HasPrefix(a.KID(), a.DID()+"#"))
	assert.That(Exists(path))
	did := a.DID()
	assert.NoError(a.Close())

	_, _, err = Create(CreateParams{Path: path, Password: "secret"})
	assert.That(errors.Is(err, ErrExists))

	_, err = Open(path, "wrong")
	assert.That(errors.Is(err, ErrInvalidPassword))

	a, err = Open(path, "secret")
	assert.NoError(err)
	defer a.Close()
	assert.Equal(a.DID(), did)
	assert.Equal(a.Meta().DID, did)

	stored, err := a.Storage().DIDStorage().GetDID(did)
	assert.NoError(err)
	assert.Equal(stored.DID, did)

	msg := []byte("message")
	sig, err := a.Sign(msg)
	assert.NoError(err)
	pub := try.To1(fingerprint.PubKeyFromDIDKey(did))
	assert.That(ed25519.Verify(pub, msg, sig))
	assert.Equal(a.Alg(), "EdDSA")
}

func TestRecoveryPhrase(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	dir := t.TempDir()
	a1, phrase, err := Create(CreateParams{Path: filepath.Join(dir, "a1"), RecoveryPhrase: testPhrase})
	assert.NoError(err)
	assert.Equal(phrase, testPhrase)
	defer a1.Close()

	a2, _, err := Create(CreateParams{Path: filepath.Join(dir, "a2"), RecoveryPhrase: "  " + testPhrase + " "})
	assert.NoError(err)
	defer a2.Close()
	assert.Equal(a1.DID(), a2.DID())

	_, _, err = Create(CreateParams{Path: filepath.Join(dir, "a3"), RecoveryPhrase: "not a valid phrase"})
	assert.That(errors.Is(err, ErrInvalidPhrase))
	assert.ThatNot(Exists(filepath.Join(dir, "a3")))
}

func TestOpenMissing(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	_, err := Open(t.TempDir(), "")
	assert.That(errors.Is(err, ErrNotFound))
}

func TestProvisioner(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	path := filepath.Join(t.TempDir(), "agent")
	meta, phrase, err := Provisioner{}.Create(context.Background(),
		CreateParams{Path: path, RecoveryPhrase: testPhrase})
	assert.NoError(err)
	assert.Equal(phrase, testPhrase)
	assert.That(strings.HasPrefix(meta.DID, "did:key:"))

	// closed by the provisioner, so it opens again
	a, err := Open(path, "")
	assert.NoError(err)
	assert.Equal(a.DID(), meta.DID)
	assert.NoError(a.Close())
}
