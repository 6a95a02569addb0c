package wrapper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const level7 = 7

var ErrNotOpen = errors.New("storage not open")

type Store interface {
	storage.Store
	GetAll(transform db.Filter) ([][]byte, error)
}

type Config struct {
	Key       string
	FileName  string
	FilePath  string
	BucketIDs []string
}

// StorageProvider is an aries storage provider over one encrypted bolt file.
// Every store name maps to its own bucket. Keys are stored as keyed hashes
// and values encrypted with the storage key.
type StorageProvider struct {
	l sync.RWMutex

	conf    Config
	db      db.Handle
	buckets map[string]*bucket
	configs map[string]storage.StoreConfiguration
	cipher  *crypto.Cipher
	hashKey []byte
}

func New(config Config) *StorageProvider {
	s := &StorageProvider{
		conf:    config,
		buckets: make(map[string]*bucket),
		configs: make(map[string]storage.StoreConfiguration),
	}

	var bucketKey byte
	for _, name := range s.conf.BucketIDs {
		s.buckets[name] = newBucket(s, name, bucketKey)
		bucketKey++
	}

	return s
}

// Filename returns the full path of the bolt file.
func (s *StorageProvider) Filename() string {
	path := "."
	if s.conf.FilePath != "" {
		path = s.conf.FilePath
	}
	return filepath.Join(path, s.conf.FileName+".bolt")
}

func (s *StorageProvider) Init() (err error) {
	defer err2.Handle(&err, "storage provider open")

	s.l.Lock()
	defer s.l.Unlock()

	if s.db != nil {
		glog.V(3).Infof("skipping storage provider initialization for %s, already open", s.conf.FileName)
		return nil
	}
	if len(s.conf.BucketIDs) == 0 {
		return fmt.Errorf("no buckets specified")
	}

	k := try.To1(hex.DecodeString(s.conf.Key))

	mgdBuckets := make([][]byte, 0, len(s.conf.BucketIDs))
	var bucketKey byte
	for range s.conf.BucketIDs {
		mgdBuckets = append(mgdBuckets, []byte{bucketKey})
		bucketKey++
	}

	filename := s.Filename()

	// this will not open the file handle to db, just initializes it
	s.db = db.New(db.Cfg{
		Filename:   filename,
		Buckets:    mgdBuckets,
		BackupName: filename + "_backup",
	})

	s.cipher = crypto.NewCipher(k)
	mac := hmac.New(sha256.New, k)
	mac.Write([]byte("tool5 key hashing"))
	s.hashKey = mac.Sum(nil)

	return nil
}

func (s *StorageProvider) ID() string {
	return s.conf.FileName
}

// OpenStore is used by aries through the storage.Provider interface.
func (s *StorageProvider) OpenStore(name string) (storage.Store, error) {
	glog.V(level7).Infoln("StorageProvider::OpenStore", s.ID(), name)

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("store %s not found", name)
}

func (s *StorageProvider) Close() (err error) {
	defer err2.Handle(&err, "storage provider close")

	s.l.Lock()
	defer s.l.Unlock()

	if s.db == nil {
		glog.V(3).Infof("skipping storage provider close for %s, already closed", s.conf.FileName)
		return nil
	}

	try.To(s.db.Close())
	s.db = nil
	return nil
}

func (s *StorageProvider) SetStoreConfig(name string, config storage.StoreConfiguration) error {
	glog.V(level7).Infoln("StorageProvider::SetStoreConfig", name)

	if _, ok := s.buckets[name]; !ok {
		return fmt.Errorf("store %s: %w", name, storage.ErrStoreNotFound)
	}
	s.l.Lock()
	defer s.l.Unlock()
	s.configs[name] = config
	return nil
}

func (s *StorageProvider) GetStoreConfig(name string) (storage.StoreConfiguration, error) {
	glog.V(level7).Infoln("StorageProvider::GetStoreConfig", name)

	s.l.RLock()
	defer s.l.RUnlock()
	if config, ok := s.configs[name]; ok {
		return config, nil
	}
	return storage.StoreConfiguration{}, fmt.Errorf("store %s: %w", name, storage.ErrStoreNotFound)
}

func (s *StorageProvider) GetOpenStores() []storage.Store {
	glog.V(level7).Infoln("StorageProvider::GetOpenStores")

	stores := make([]storage.Store, 0, len(s.buckets))
	for _, b := range s.buckets {
		stores = append(stores, b)
	}
	return stores
}

// withDB runs f under the read lock if the database is open.
func (s *StorageProvider) withDB(f func(d db.Handle) error) error {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.db == nil {
		return ErrNotOpen
	}
	return f(s.db)
}

// hashedKey is the bucket key of k. Keys are never stored in clear.
func (s *StorageProvider) hashedKey(k []byte) *db.Data {
	return &db.Data{Data: k, Read: s.hash}
}

func (s *StorageProvider) hash(key []byte) []byte {
	mac := hmac.New(sha256.New, s.hashKey)
	mac.Write(key)
	return mac.Sum(nil)
}

func (s *StorageProvider) addData(bucketID byte, key, value []byte) error {
	return s.withDB(func(d db.Handle) error {
		return d.AddKeyValueToBucket([]byte{bucketID},
			&db.Data{Data: value, Read: s.cipher.TryEncrypt},
			s.hashedKey(key))
	})
}

func (s *StorageProvider) getData(bucketID byte, key []byte) (value []byte, err error) {
	err = s.withDB(func(d db.Handle) error {
		_, err := d.GetKeyValueFromBucket([]byte{bucketID}, s.hashedKey(key),
			&db.Data{
				Write: s.cipher.TryDecrypt,
				Use: func(b []byte) interface{} {
					value = b
					return nil
				},
			})
		return err
	})
	return value, err
}

func (s *StorageProvider) deleteData(bucketID byte, key string) error {
	return s.withDB(func(d db.Handle) error {
		return d.RmKeyValueFromBucket([]byte{bucketID}, s.hashedKey([]byte(key)))
	})
}

func (s *StorageProvider) getAll(bucketID byte, transform db.Filter) (res [][]byte, err error) {
	err = s.withDB(func(d db.Handle) (err error) {
		res, err = d.GetAllValuesFromBucket([]byte{bucketID}, s.cipher.TryDecrypt, transform)
		return err
	})
	return res, err
}
