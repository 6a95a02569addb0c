// Package useragent provisions and opens the local user agent: a data path
// holding agent.json and an encrypted bolt store with the agent's KMS keys,
// DIDs, issued credentials and DWN record metadata.
package useragent

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnonni/tool5/agent/storage/api"
	"github.com/bnonni/tool5/agent/storage/mgddb"
	"github.com/bnonni/tool5/method"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/kms"
	"github.com/hyperledger/aries-framework-go/pkg/vdr/fingerprint"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/argon2"
)

const (
	MetaFileName = "agent.json"
	storeName    = "agent"

	argonTime    = uint32(2)
	argonMemKB   = uint32(64 * 1024)
	argonThreads = uint8(1)
	keySize      = 32
	saltSize     = 16
)

var (
	ErrExists          = errors.New("agent already exists")
	ErrNotFound        = errors.New("agent not found")
	ErrInvalidPassword = errors.New("invalid agent password")
	ErrInvalidPhrase   = errors.New("invalid recovery phrase")
)

// Meta is the content of agent.json.
type Meta struct {
	DID     string    `json:"did"`
	KID     string    `json:"kid"`     // key ID in the KMS
	Salt    string    `json:"salt"`    // hex, argon2id salt of the store key
	Check   string    `json:"check"`   // hex, sha256 of the store key
	Created time.Time `json:"created"` // UTC
}

type CreateParams struct {
	Path           string
	Password       string
	RecoveryPhrase string // empty generates a new one
}

// Agent is an opened user agent. It signs with the agent DID's key which
// never leaves the KMS.
type Agent struct {
	path    string
	meta    Meta
	storage *mgddb.Storage
	kh      any
	verKID  string
}

// Exists tells if there is an agent in the path.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, MetaFileName))
	return err == nil
}

// NewRecoveryPhrase returns a new 24 word BIP-39 mnemonic.
func NewRecoveryPhrase() (phrase string, err error) {
	defer err2.Handle(&err, "new recovery phrase")

	entropy := try.To1(bip39.NewEntropy(256))
	return bip39.NewMnemonic(entropy)
}

// IdentityKey derives the agent's Ed25519 key from the recovery phrase.
func IdentityKey(phrase string) (ed25519.PrivateKey, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidPhrase
	}
	seed := bip39.NewSeed(phrase, "")
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}

func storeKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemKB, argonThreads, keySize)
}

func check(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

// closeOnError closes the storage if it's opened and the function fails.
func closeOnError(err *error, s **mgddb.Storage) {
	if *err != nil && *s != nil {
		_ = (*s).Close()
	}
}

// Create provisions a new agent to p.Path and returns it opened with the
// recovery phrase. The phrase is not stored anywhere.
func Create(p CreateParams) (a *Agent, phrase string, err error) {
	var storage *mgddb.Storage
	defer closeOnError(&err, &storage)
	defer err2.Handle(&err, "create agent %s", p.Path)

	if Exists(p.Path) {
		return nil, "", fmt.Errorf("%s: %w", p.Path, ErrExists)
	}
	if p.Password == "" {
		glog.Warningln("creating agent without password, the store is protected only by file permissions")
	}

	phrase = p.RecoveryPhrase
	if phrase == "" {
		phrase = try.To1(NewRecoveryPhrase())
	}
	priv := try.To1(IdentityKey(phrase))
	bearer := try.To1(method.KeyFromPrivate(priv))

	salt := make([]byte, saltSize)
	try.To1(rand.Read(salt))
	key := storeKey(p.Password, salt)

	try.To(os.MkdirAll(p.Path, 0700))
	storage = try.To1(mgddb.New(api.AgentStorageConfig{
		AgentKey: hex.EncodeToString(key),
		AgentID:  storeName,
		FilePath: p.Path,
	}))

	kid, kh := try.To2(storage.KMS().ImportPrivateKey(priv, kms.ED25519Type))
	doc := try.To1(bearer.Doc().JSONBytes())
	try.To(storage.DIDStorage().SaveDID(api.DID{
		ID:  bearer.URI(),
		DID: bearer.URI(),
		KID: kid,
		Doc: doc,
	}))

	meta := Meta{
		DID:     bearer.URI(),
		KID:     kid,
		Salt:    hex.EncodeToString(salt),
		Check:   check(key),
		Created: time.Now().UTC(),
	}
	data := try.To1(json.MarshalIndent(meta, "", "  "))
	try.To(os.WriteFile(filepath.Join(p.Path, MetaFileName), data, 0600))

	glog.V(1).Infof("agent %s created to %s", meta.DID, p.Path)
	return &Agent{
		path:    p.Path,
		meta:    meta,
		storage: storage,
		kh:      kh,
		verKID:  bearer.KID(),
	}, phrase, nil
}

// Open opens the agent in the path with the password.
func Open(path, password string) (a *Agent, err error) {
	var storage *mgddb.Storage
	defer closeOnError(&err, &storage)
	defer err2.Handle(&err, "open agent %s", path)

	data, err := os.ReadFile(filepath.Join(path, MetaFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	try.To(err)

	var meta Meta
	try.To(json.Unmarshal(data, &meta))

	salt := try.To1(hex.DecodeString(meta.Salt))
	key := storeKey(password, salt)
	if subtle.ConstantTimeCompare([]byte(check(key)), []byte(meta.Check)) != 1 {
		return nil, ErrInvalidPassword
	}

	storage = try.To1(mgddb.New(api.AgentStorageConfig{
		AgentKey: hex.EncodeToString(key),
		AgentID:  storeName,
		FilePath: path,
	}))

	kh := try.To1(storage.KMS().Get(meta.KID))
	pub, _ := try.To2(storage.KMS().ExportPubKeyBytes(meta.KID))
	uri, verKID := fingerprint.CreateDIDKey(pub)
	if uri != meta.DID {
		return nil, fmt.Errorf("agent key is for %s, not %s", uri, meta.DID)
	}
	try.To1(storage.DIDStorage().GetDID(meta.DID))

	glog.V(3).Infof("agent %s opened from %s", meta.DID, path)
	return &Agent{
		path:    path,
		meta:    meta,
		storage: storage,
		kh:      kh,
		verKID:  verKID,
	}, nil
}

func (a *Agent) Path() string {
	return a.path
}

func (a *Agent) Meta() Meta {
	return a.meta
}

// DID returns the agent DID.
func (a *Agent) DID() string {
	return a.meta.DID
}

func (a *Agent) String() string {
	return a.meta.DID
}

// KID returns the verification method ID of the agent key.
func (a *Agent) KID() string {
	return a.verKID
}

func (a *Agent) Sign(data []byte) ([]byte, error) {
	return a.storage.Crypto().Sign(data, a.kh)
}

func (a *Agent) Alg() string {
	return method.AlgEdDSA
}

func (a *Agent) Storage() api.AgentStorage {
	return a.storage
}

func (a *Agent) Close() error {
	return a.storage.Close()
}

// Provisioner is the agent façade of the agent command. It creates the agent
// and closes it right away.
type Provisioner struct{}

func (Provisioner) Create(_ context.Context, p CreateParams) (meta Meta, phrase string, err error) {
	a, phrase, err := Create(p)
	if err != nil {
		return Meta{}, "", err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	return a.Meta(), phrase, nil
}
