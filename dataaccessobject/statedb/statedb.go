package statedb

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// objectPrefix namespaces keys the way GenerateXObjectKey does in the
// teacher's stateobject_blockmerkle.go, one byte per persisted concern
// (spec.md 6.4: BranchDb, BranchChainTxRecordsDb both live here).
type objectPrefix byte

const (
	prefixBranchHeader   objectPrefix = 0x01
	prefixBranchBestTip  objectPrefix = 0x02
	prefixBranchHeight   objectPrefix = 0x03
	prefixReportStatus   objectPrefix = 0x04
	prefixBranchTxRecord objectPrefix = 0x05
	prefixRawTx          objectPrefix = 0x06
)

func objectKey(prefix objectPrefix, parts ...[]byte) []byte {
	key := []byte{byte(prefix)}
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// StateDB is the flat LevelDB-backed keyspace BranchDb and
// BranchChainTxRecordsDb are persisted in (spec.md 6.4). The teacher backs
// its statedb on a Merkle-Patricia trie committed per block; that trie
// (go-ethereum's `trie` package) buys state-root commitments this module
// has no consensus use for, so the persistence backend here is a plain
// goleveldb keyspace instead — goleveldb is already a real dependency of
// the example corpus (Vigneshboobathy-dag_rte's db/leveldb.go, and the
// teacher's own go.mod).
type StateDB struct {
	db *leveldb.DB
}

// NewStateDB opens (or creates) the branch-tracker database at path.
func NewStateDB(path string) (*StateDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &StateDB{db: db}, nil
}

func (s *StateDB) Close() error { return s.db.Close() }

func (s *StateDB) set(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *StateDB) get(key []byte) ([]byte, bool, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *StateDB) has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

// iteratePrefix walks every key under prefix, invoking fn(keySuffix, value).
// fn returning false stops iteration early.
func (s *StateDB) iteratePrefix(prefix objectPrefix, fn func(suffix, value []byte) bool) error {
	it := s.db.NewIterator(nil, nil)
	defer it.Release()
	p := []byte{byte(prefix)}
	for it.Seek(p); it.Valid(); it.Next() {
		k := it.Key()
		if len(k) < 1 || k[0] != byte(prefix) {
			break
		}
		val := make([]byte, len(it.Value()))
		copy(val, it.Value())
		suffix := make([]byte, len(k)-1)
		copy(suffix, k[1:])
		if !fn(suffix, val) {
			break
		}
	}
	return it.Error()
}
