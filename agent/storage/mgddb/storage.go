package mgddb

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/bnonni/tool5/agent/storage/api"
	"github.com/bnonni/tool5/agent/storage/wrapper"
	"github.com/findy-network/findy-common-go/dto"
	cryptoapi "github.com/hyperledger/aries-framework-go/pkg/crypto"
	"github.com/hyperledger/aries-framework-go/pkg/crypto/tinkcrypto"
	"github.com/hyperledger/aries-framework-go/pkg/kms"
	"github.com/lainio/err2"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const (
	NameKey        = kms.AriesWrapperStoreName
	NameDID        = "did"
	NameCredential = "credential"
	NameRecord     = "record"
)

var bucketIDs = []string{
	NameKey,
	NameDID,
	NameCredential,
	NameRecord,
}

// Storage is the agent storage: KMS keys, DIDs, issued credentials and DWN
// record metadata in one encrypted bolt file.
type Storage struct {
	*wrapper.StorageProvider
	keys       kms.KeyManager
	crypto     *tinkcrypto.Crypto

	didStore    wrapper.Store
	credStore   wrapper.Store
	recordStore wrapper.Store
}

func New(config api.AgentStorageConfig) (a *Storage, err error) {
	defer err2.Handle(&err, "agent storage new")

	me := &Storage{
		StorageProvider: wrapper.New(wrapper.Config{
			Key:       config.AgentKey,
			FileName:  config.AgentID,
			FilePath:  config.FilePath,
			BucketIDs: bucketIDs,
		}),
	}

	try.To(me.Init())

	me.keys = try.To1(newKeyManager(me))
	me.crypto = try.To1(tinkcrypto.New())

	me.didStore = me.wrapperStore(NameDID)
	me.credStore = me.wrapperStore(NameCredential)
	me.recordStore = me.wrapperStore(NameRecord)

	return me, nil
}

func (s *Storage) wrapperStore(name string) wrapper.Store {
	store := try.To1(s.OpenStore(name))
	ws, ok := store.(wrapper.Store)
	assert.That(ok, "%s store should always be wrapper store", name)
	return ws
}

// GenerateKey returns a new random hex encoded storage key.
func GenerateKey() string {
	k := make([]byte, 32)
	try.To1(rand.Read(k))
	return hex.EncodeToString(k)
}

func (s *Storage) Open() error {
	return s.Init()
}

func (s *Storage) KMS() kms.KeyManager {
	return s.keys
}

func (s *Storage) Crypto() cryptoapi.Crypto {
	return s.crypto
}

func (s *Storage) DIDStorage() api.DIDStorage {
	return s
}

func (s *Storage) CredentialStorage() api.CredentialStorage {
	return s
}

func (s *Storage) RecordStorage() api.RecordStorage {
	return s
}

// DIDStorage

func (s *Storage) SaveDID(did api.DID) (err error) {
	defer err2.Handle(&err, "did storage save %s", did.ID)
	return s.didStore.Put(did.ID, dto.ToGOB(did))
}

func (s *Storage) GetDID(id string) (did *api.DID, err error) {
	defer err2.Handle(&err, "did storage get %s", id)

	bytes := try.To1(s.didStore.Get(id))

	did = &api.DID{}
	dto.FromGOB(bytes, did)
	return did, nil
}

func (s *Storage) ListDIDs() (res []api.DID, err error) {
	defer err2.Handle(&err, "did storage list")

	res = make([]api.DID, 0)
	try.To1(s.didStore.GetAll(func(bytes []byte) []byte {
		did := api.DID{}
		dto.FromGOB(bytes, &did)
		res = append(res, did)
		return bytes
	}))
	return res, nil
}

// CredentialStorage

func (s *Storage) SaveCredential(c api.Credential) (err error) {
	defer err2.Handle(&err, "credential storage save %s", c.ID)
	return s.credStore.Put(c.ID, dto.ToGOB(c))
}

func (s *Storage) GetCredential(id string) (c *api.Credential, err error) {
	defer err2.Handle(&err, "credential storage get %s", id)

	bytes := try.To1(s.credStore.Get(id))

	c = &api.Credential{}
	dto.FromGOB(bytes, c)
	return c, nil
}

func (s *Storage) ListCredentials() (res []api.Credential, err error) {
	defer err2.Handle(&err, "credential storage list")

	res = make([]api.Credential, 0)
	try.To1(s.credStore.GetAll(func(bytes []byte) []byte {
		c := api.Credential{}
		dto.FromGOB(bytes, &c)
		res = append(res, c)
		return bytes
	}))
	return res, nil
}

// RecordStorage

func (s *Storage) SaveRecord(r api.Record) (err error) {
	defer err2.Handle(&err, "record storage save %s", r.ID)
	return s.recordStore.Put(r.ID, dto.ToGOB(r))
}

func (s *Storage) GetRecord(id string) (r *api.Record, err error) {
	defer err2.Handle(&err, "record storage get %s", id)

	bytes := try.To1(s.recordStore.Get(id))

	r = &api.Record{}
	dto.FromGOB(bytes, r)
	return r, nil
}

func (s *Storage) ListRecords() (res []api.Record, err error) {
	defer err2.Handle(&err, "record storage list")

	res = make([]api.Record, 0)
	try.To1(s.recordStore.GetAll(func(bytes []byte) []byte {
		r := api.Record{}
		dto.FromGOB(bytes, &r)
		res = append(res, r)
		return bytes
	}))
	return res, nil
}
