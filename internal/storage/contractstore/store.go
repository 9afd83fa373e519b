// Package contractstore persists vesting.Contract records, keyed by
// escrow principal, on top of the generic database.DB key-value
// abstraction — backed by pebble by default, or the leveldb
// subpackage when config selects it — fronted by an LRU read cache.
package contractstore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/strmfi/vestd/internal/core/vesting"
	"github.com/strmfi/vestd/internal/storage/database"
)

// Store implements vesting.ContractStore over a database.DB, caching
// decoded contracts in an LRU to avoid re-decoding on every read.
type Store struct {
	db    database.DB
	cache *lru.Cache[vesting.Principal, *vesting.Contract]
}

// New wraps db as a vesting.ContractStore. cacheSize <= 0 disables
// the read cache.
func New(db database.DB, cacheSize int) (*Store, error) {
	s := &Store{db: db}
	if cacheSize > 0 {
		c, err := lru.New[vesting.Principal, *vesting.Contract](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("contractstore: building cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

func (s *Store) Load(ctx context.Context, escrow vesting.Principal) (*vesting.Contract, error) {
	if s.cache != nil {
		if c, ok := s.cache.Get(escrow); ok {
			return c, nil
		}
	}

	data, err := s.db.Read(ctx, escrow[:])
	if err != nil {
		if err == database.ErrKeyNotFound {
			return nil, vesting.ErrContractNotFound
		}
		return nil, err
	}

	c, err := vesting.DecodeContract(data)
	if err != nil {
		return nil, fmt.Errorf("contractstore: decoding %x: %w", escrow, err)
	}

	if s.cache != nil {
		s.cache.Add(escrow, c)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, escrow vesting.Principal, c *vesting.Contract) error {
	data, err := c.Encode()
	if err != nil {
		return fmt.Errorf("contractstore: encoding %x: %w", escrow, err)
	}
	if err := s.db.Write(ctx, escrow[:], data); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Add(escrow, c)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, escrow vesting.Principal) error {
	if err := s.db.Delete(ctx, escrow[:]); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Remove(escrow)
	}
	return nil
}

