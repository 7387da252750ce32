package storage

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Shared key/value plumbing for the farm keepers. Keys are '/'-joined strings
// under a per-instance prefix so several farms can share one database; big
// integers are stored as decimal strings and counters as base-10 uint64s.

func key(prefix string, parts ...string) []byte {
	return []byte(prefix + "/" + strings.Join(parts, "/"))
}

func getBigInt(db Database, key []byte) (*big.Int, error) {
	ok, err := db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	raw, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	value, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("storage: corrupt integer at %q", key)
	}
	return value, nil
}

func putBigInt(db Database, key []byte, value *big.Int) error {
	if value == nil {
		return errors.New("storage: nil integer value")
	}
	return db.Put(key, []byte(value.String()))
}

func getUint64(db Database, key []byte) (uint64, error) {
	ok, err := db.Has(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	raw, err := db.Get(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: corrupt counter at %q: %w", key, err)
	}
	return value, nil
}

func putUint64(db Database, key []byte, value uint64) error {
	return db.Put(key, []byte(strconv.FormatUint(value, 10)))
}
