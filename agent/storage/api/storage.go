package api

import (
	cryptoapi "github.com/hyperledger/aries-framework-go/pkg/crypto"
	"github.com/hyperledger/aries-framework-go/pkg/kms"
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

type AgentStorageConfig struct {
	AgentKey string // hex encoded 32 byte storage key
	AgentID  string // file name of the storage without extension
	FilePath string // directory of the storage file
}

type AgentStorage interface {
	Open() error
	Close() error

	KMS() kms.KeyManager
	Crypto() cryptoapi.Crypto

	DIDStorage() DIDStorage
	CredentialStorage() CredentialStorage
	RecordStorage() RecordStorage

	OpenStore(name string) (storage.Store, error)
}

type DIDStorage interface {
	SaveDID(did DID) error
	GetDID(id string) (*DID, error)
	ListDIDs() ([]DID, error)
}

// Credential is a credential the agent has issued.
type Credential struct {
	ID      string // credential ID, urn:uuid:...
	Issuer  string
	Subject string
	Type    string
	JWT     string
	Issued  int64 // unix seconds
}

type CredentialStorage interface {
	SaveCredential(c Credential) error
	GetCredential(id string) (*Credential, error)
	ListCredentials() ([]Credential, error)
}

// Record is the local metadata of a DWN record the agent has written.
type Record struct {
	ID          string // record ID
	Endpoint    string
	Target      string // tenant DID
	DataCID     string
	DataFormat  string
	DateCreated string
	Deleted     bool
}

type RecordStorage interface {
	SaveRecord(r Record) error
	GetRecord(id string) (*Record, error)
	ListRecords() ([]Record, error)
}
