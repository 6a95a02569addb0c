package mgddb

import (
	"github.com/hyperledger/aries-framework-go/pkg/kms"
	"github.com/hyperledger/aries-framework-go/pkg/kms/localkms"
	"github.com/hyperledger/aries-framework-go/pkg/secretlock"
	"github.com/hyperledger/aries-framework-go/pkg/secretlock/noop"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// keyLockURI is only a label with the noop secret lock. The key material is
// protected by the encryption of the storage file.
const keyLockURI = "local-lock://primary/tool5/"

// keyProvider gives localkms the key bucket of the agent storage.
type keyProvider struct {
	keys kms.Store
}

func (p keyProvider) StorageProvider() kms.Store {
	return p.keys
}

func (keyProvider) SecretLock() secretlock.Service {
	return &noop.NoLock{}
}

// newKeyManager returns a local KMS which keeps its keysets in the
// kms.AriesWrapperStoreName store of sp.
func newKeyManager(sp storage.Provider) (km kms.KeyManager, err error) {
	defer err2.Handle(&err, "new key manager")

	keys := try.To1(kms.NewAriesProviderWrapper(sp))
	return localkms.New(keyLockURI, keyProvider{keys: keys})
}
