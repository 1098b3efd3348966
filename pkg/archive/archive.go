// Package archive implements the lane's durable content-addressed store:
// a persistent Digest -> Transaction map backed by two bbolt files, a
// document file holding the full transaction bodies and an index file
// holding digest-only keys so Has/Count never need to decode a body.
package archive

import (
	"bytes"
	"encoding/gob"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/fetchai/txlane/pkg/laneerrors"
	"github.com/fetchai/txlane/pkg/llog"
	"github.com/fetchai/txlane/pkg/txtypes"
)

var bucketDocuments = []byte("documents")
var bucketIndex = []byte("index")

// Store is the Archive Store: a persistent content-addressed map of
// transactions keyed by digest, supporting prefix-range scans.
type Store struct {
	doc *bolt.DB
	idx *bolt.DB
}

// New opens (creating if absent) the document and index files at docPath
// and idxPath. overwrite has no effect beyond bbolt's normal
// create-if-missing semantics; it's accepted to mirror spec.md's signature.
func New(docPath, idxPath string, overwrite bool) (*Store, error) {
	return open(docPath, idxPath)
}

// Load opens the files, creating any that don't yet exist. createIfMissing
// has no effect: bbolt's Open always creates a missing file, so this
// behaves the same as New; the distinct entrypoint exists to match the
// Archive Store's documented API surface.
func Load(docPath, idxPath string, createIfMissing bool) (*Store, error) {
	return open(docPath, idxPath)
}

func open(docPath, idxPath string) (*Store, error) {
	doc, err := bolt.Open(docPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: open document file: %w", err)
	}
	idx, err := bolt.Open(idxPath, 0600, nil)
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("archive: open index file: %w", err)
	}

	if err := doc.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	}); err != nil {
		doc.Close()
		idx.Close()
		return nil, fmt.Errorf("archive: create document bucket: %w", err)
	}
	if err := idx.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketIndex)
		return err
	}); err != nil {
		doc.Close()
		idx.Close()
		return nil, fmt.Errorf("archive: create index bucket: %w", err)
	}

	return &Store{doc: doc, idx: idx}, nil
}

// Close releases both underlying files.
func (s *Store) Close() error {
	errDoc := s.doc.Close()
	errIdx := s.idx.Close()
	if errDoc != nil {
		return errDoc
	}
	return errIdx
}

// Add writes tx at key tx.digest, overwriting any existing entry.
func (s *Store) Add(tx txtypes.Transaction) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tx); err != nil {
		return fmt.Errorf("archive: encode transaction: %w", err)
	}

	if err := s.doc.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketDocuments).Put(tx.Digest[:], buf.Bytes())
	}); err != nil {
		llog.WithComponent("archive").Error().Err(err).Str("digest", tx.Digest.String()).Msg("document write failed")
		return fmt.Errorf("%w: %v", laneerrors.ErrStorage, err)
	}

	if err := s.idx.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketIndex).Put(tx.Digest[:], []byte{1})
	}); err != nil {
		llog.WithComponent("archive").Error().Err(err).Str("digest", tx.Digest.String()).Msg("index write failed")
		return fmt.Errorf("%w: %v", laneerrors.ErrStorage, err)
	}
	return nil
}

// Has reports whether d is present, without decoding the transaction body.
func (s *Store) Has(d txtypes.Digest) bool {
	var found bool
	_ = s.idx.View(func(btx *bolt.Tx) error {
		found = btx.Bucket(bucketIndex).Get(d[:]) != nil
		return nil
	})
	return found
}

// Get returns the transaction at d, or ok=false if absent.
func (s *Store) Get(d txtypes.Digest) (txtypes.Transaction, bool, error) {
	var tx txtypes.Transaction
	var found bool
	err := s.doc.View(func(btx *bolt.Tx) error {
		v := btx.Bucket(bucketDocuments).Get(d[:])
		if v == nil {
			return nil
		}
		found = true
		return gob.NewDecoder(bytes.NewReader(v)).Decode(&tx)
	})
	if err != nil {
		return txtypes.Transaction{}, false, fmt.Errorf("%w: %v", laneerrors.ErrStorage, err)
	}
	return tx, found, nil
}

// Count returns the number of entries in the index.
func (s *Store) Count() (uint64, error) {
	var n uint64
	err := s.idx.View(func(btx *bolt.Tx) error {
		n = uint64(btx.Bucket(bucketIndex).Stats().KeyN)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", laneerrors.ErrStorage, err)
	}
	return n, nil
}

// PullSubtree returns up to limit transactions whose digest's top bitCount
// bits equal prefix's top bitCount bits. Order is stable (ascending key
// order from the bbolt cursor) but otherwise unspecified, matching
// spec.md §4.1.
func (s *Store) PullSubtree(prefix txtypes.Digest, bitCount uint, limit int) ([]txtypes.Transaction, error) {
	wanted := prefix.Prefix(bitCount)

	var digests []txtypes.Digest
	err := s.idx.View(func(btx *bolt.Tx) error {
		c := btx.Bucket(bucketIndex).Cursor()
		// A full-byte prefix lets us seek directly; for sub-byte prefixes
		// we still need to scan from the start of the matching byte range.
		seekKey := wanted[:bitCount/8]
		for k, _ := c.Seek(seekKey); k != nil; k, _ = c.Next() {
			var d txtypes.Digest
			copy(d[:], k)
			if !d.SharesPrefix(wanted, bitCount) {
				// For a full-byte prefix the first non-match after the
				// seek point ends the scan. For a sub-byte prefix the scan
				// skips non-matches and continues to the end of the bucket
				// (or until limit matches are found).
				if bitCount%8 == 0 {
					break
				}
				continue
			}
			digests = append(digests, d)
			if len(digests) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", laneerrors.ErrStorage, err)
	}

	out := make([]txtypes.Transaction, 0, len(digests))
	for _, d := range digests {
		tx, found, err := s.Get(d)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Flush is a durability fence. bbolt fsyncs on every Update commit already,
// so sync is accepted for API compatibility but has no additional effect.
func (s *Store) Flush(sync bool) error {
	return nil
}
