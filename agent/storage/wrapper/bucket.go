package wrapper

import (
	"errors"
	"fmt"

	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

var ErrQueryNotSupported = errors.New("query not supported")

type bucket struct {
	name     string
	bucketID byte
	owner    *StorageProvider
}

func newBucket(owner *StorageProvider, name string, bucketID byte) *bucket {
	return &bucket{
		name:     name,
		owner:    owner,
		bucketID: bucketID,
	}
}

// Put stores the key + value pair. Tags are not supported and are ignored.
// If key is empty or value is nil, then an error will be returned.
func (b *bucket) Put(key string, value []byte, tags ...storage.Tag) (err error) {
	glog.V(level7).Infoln("bucket::Put", b.name, key)

	if key == "" || value == nil {
		return errors.New("key and value are mandatory")
	}
	if len(tags) > 0 {
		glog.V(3).Infof("bucket %s: ignoring %d tags", b.name, len(tags))
	}

	return b.owner.addData(b.bucketID, []byte(key), value)
}

// Get fetches the value associated with the given key.
// If key cannot be found, then an error wrapping ErrDataNotFound will be returned.
// If key is empty, then an error will be returned.
func (b *bucket) Get(key string) (data []byte, err error) {
	defer err2.Handle(&err, nil)

	glog.V(level7).Infoln("bucket::Get", b.name, key)

	if key == "" {
		return nil, errors.New("key is mandatory")
	}
	data = try.To1(b.owner.getData(b.bucketID, []byte(key)))

	if len(data) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", b.name, key, storage.ErrDataNotFound)
	}

	return data, nil
}

func (b *bucket) GetTags(key string) ([]storage.Tag, error) {
	if _, err := b.Get(key); err != nil {
		return nil, err
	}
	return nil, nil
}

func (b *bucket) GetBulk(keys ...string) (values [][]byte, err error) {
	defer err2.Handle(&err, "get bulk")

	values = make([][]byte, len(keys))
	for i, key := range keys {
		v, err := b.Get(key)
		if errors.Is(err, storage.ErrDataNotFound) {
			continue
		}
		try.To(err)
		values[i] = v
	}
	return values, nil
}

func (b *bucket) Query(expression string, _ ...storage.QueryOption) (storage.Iterator, error) {
	return nil, fmt.Errorf("%s: %q: %w", b.name, expression, ErrQueryNotSupported)
}

// Delete deletes the key + value pair associated with key.
func (b *bucket) Delete(key string) error {
	glog.V(level7).Infoln("bucket::Delete", b.name, key)

	return b.owner.deleteData(b.bucketID, key)
}

func (b *bucket) Batch(operations []storage.Operation) (err error) {
	defer err2.Handle(&err, "batch")

	for _, op := range operations {
		if op.Value == nil {
			try.To(b.Delete(op.Key))
			continue
		}
		try.To(b.Put(op.Key, op.Value, op.Tags...))
	}
	return nil
}

// Flush is a no-op, every write is committed immediately.
func (b *bucket) Flush() error {
	return nil
}

// Close is a no-op, the provider owns the database handle.
func (b *bucket) Close() error {
	return nil
}

func (b *bucket) GetAll(transform db.Filter) ([][]byte, error) {
	glog.V(level7).Infoln("bucket::GetAll", b.name)

	return b.owner.getAll(b.bucketID, transform)
}
