// Package keystore is a persistent, multi-identity store for private key
// material, backed by a single bbolt file. It generalizes the
// single-key, single-file loader abstraction (Generator/LoadOrCreate) to
// many named identities sharing one file, and adds a checksum over every
// stored record so silent on-disk corruption is caught on read instead
// of being handed to a signer as if it were valid key material.
package keystore

import (
	"bytes"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"go.chromia.dev/postchain/crypto"
)

var identitiesBucket = []byte("identities")

// Generator produces new key material when an identity has no stored
// record yet.
type Generator interface {
	Generate() ([]byte, error)
}

// Store is a bbolt-backed keystore. A Store is safe for concurrent use
// by multiple goroutines, per bbolt's own concurrency guarantees.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the keystore file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, xerrors.Errorf("couldn't open keystore file: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(identitiesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, xerrors.Errorf("couldn't create identities bucket: %v", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

var checksumFactory crypto.HashFactory = crypto.NewHashFactory(crypto.Sha3_224)

func checksum(key []byte) []byte {
	h := checksumFactory.New()
	h.Write(key)
	return h.Sum(nil)
}

func checksumRecord(key []byte) []byte {
	sum := checksum(key)
	record := make([]byte, 0, len(key)+len(sum))
	record = append(record, key...)
	record = append(record, sum...)
	return record
}

func splitRecord(record []byte) ([]byte, error) {
	sumSize := checksumFactory.New().Size()
	if len(record) < sumSize {
		return nil, xerrors.Errorf("record shorter than checksum: %w", ErrCorrupted)
	}
	split := len(record) - sumSize
	key, sum := record[:split], record[split:]
	want := checksum(key)
	if !bytes.Equal(sum, want) {
		return nil, xerrors.Errorf("%w", ErrCorrupted)
	}
	return append([]byte{}, key...), nil
}

// Put stores key material under identity, overwriting any existing
// record.
func (s *Store) Put(identity string, key []byte) error {
	record := checksumRecord(key)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(identitiesBucket).Put([]byte(identity), record)
	})
}

// PutNew is like Put but fails with ErrExists if identity already has a
// stored record.
func (s *Store) PutNew(identity string, key []byte) error {
	record := checksumRecord(key)
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(identitiesBucket)
		if b.Get([]byte(identity)) != nil {
			return ErrExists
		}
		return b.Put([]byte(identity), record)
	})
}

// Get returns the key material stored under identity.
func (s *Store) Get(identity string) ([]byte, error) {
	var key []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		record := tx.Bucket(identitiesBucket).Get([]byte(identity))
		if record == nil {
			return ErrNotFound
		}
		k, err := splitRecord(record)
		if err != nil {
			return err
		}
		key = k
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("couldn't load identity %q: %w", identity, err)
	}
	return key, nil
}

// LoadOrCreate loads the key material stored under identity, or
// generates a new one with gen and persists it if none exists yet.
func (s *Store) LoadOrCreate(identity string, gen Generator) ([]byte, error) {
	key, err := s.Get(identity)
	if err == nil {
		return key, nil
	}
	if !xerrors.Is(err, ErrNotFound) {
		return nil, err
	}

	key, err = gen.Generate()
	if err != nil {
		return nil, xerrors.Errorf("generator failed: %v", err)
	}

	if err := s.Put(identity, key); err != nil {
		return nil, xerrors.Errorf("couldn't persist generated key: %v", err)
	}

	return key, nil
}

// Delete removes an identity's record. It is not an error to delete an
// identity that does not exist.
func (s *Store) Delete(identity string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(identitiesBucket).Delete([]byte(identity))
	})
}

// List returns every identity name currently stored, in bbolt's
// byte-lexicographic key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(identitiesBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("couldn't list identities: %v", err)
	}
	return names, nil
}
