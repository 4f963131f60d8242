// Package kv is the bbolt-backed implementation of db.Database: one bucket
// per content-addressed collection (blocks, states) plus a small sentinel
// bucket for the head root and fork choice checkpoints, matching the
// teacher's db/kv.Store bucket layout.
package kv

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prombbolt"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var log = logrus.WithField("prefix", "db-kv")

const (
	databaseFileName = "beaconchain.db"
	blockCacheSize   = 1 << 20
)

var (
	blocksBucket      = []byte("blocks")
	statesBucket      = []byte("states")
	sentinelBucket    = []byte("sentinel")
	blockSlotIndexBkt = []byte("block-slot-index")
)

var (
	headBlockRootKey       = []byte("head-block-root")
	genesisBlockRootKey    = []byte("genesis-block-root")
	justifiedCheckpointKey = []byte("justified-checkpoint")
	finalizedCheckpointKey = []byte("finalized-checkpoint")
)

// Store is the bbolt-backed Database implementation.
type Store struct {
	db           *bolt.DB
	databasePath string
	blockCache   *ristretto.Cache
}

// NewKVStore opens (creating if absent) a bbolt database at dirPath and
// registers its bucket collector with prometheus, following the teacher's
// NewKVStore.
func NewKVStore(dirPath string) (*Store, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, errors.Wrap(err, "could not create db directory")
	}
	datafile := filepath.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{Timeout: 1})
	if err != nil {
		return nil, errors.Wrap(err, "could not open bolt db")
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: blockCacheSize * 10,
		MaxCost:     blockCacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize block cache")
	}
	kv := &Store{db: boltDB, databasePath: dirPath, blockCache: cache}
	if err := kv.createBuckets(); err != nil {
		return nil, err
	}
	registerCollectorOnce.Do(func() {
		prombbolt.Register(boltDB)
	})
	return kv, nil
}

// registerCollectorOnce guards against the prometheus collector panicking on
// a duplicate registration when tests spin up more than one store.
var registerCollectorOnce sync.Once

func (s *Store) createBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{blocksBucket, statesBucket, sentinelBucket, blockSlotIndexBkt} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// DatabasePath returns the directory the store was opened against.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

// ClearDB removes the database file entirely, used by tests that need a
// clean slate between runs.
func (s *Store) ClearDB() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	return os.Remove(filepath.Join(s.databasePath, databaseFileName))
}

// Close releases the underlying bbolt file handle.
func (s *Store) Close() error {
	s.blockCache.Close()
	return s.db.Close()
}
