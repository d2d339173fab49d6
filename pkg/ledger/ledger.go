// Package ledger implements the Persistent Ledger of spec.md §4.8/§6: a
// durable key-value store, backed by go.etcd.io/bbolt, holding the
// fingerprint and mode recorded for each managed path as of the last
// successful application.
package ledger

import (
	"encoding/binary"
	"time"

	"go.etcd.io/bbolt"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

// entryStateBucket is the single required bucket named in spec.md §6.
var entryStateBucket = []byte("entryState")

const (
	fingerprintLen    = 32 // SHA-256
	modeLen           = 4  // little-endian uint32
	recordLenNoMode   = fingerprintLen
	recordLenWithMode = fingerprintLen + modeLen
)

// Record is one ledger entry: the content fingerprint and, for entries
// where a mode is tracked, the mode that was written on the last
// successful apply.
type Record struct {
	Fingerprint [32]byte
	Mode        *uint32
}

// Encode serializes r to the fixed 32- or 36-byte little-endian blob
// spec.md §6 requires.
func Encode(r Record) []byte {
	if r.Mode == nil {
		buf := make([]byte, recordLenNoMode)
		copy(buf, r.Fingerprint[:])
		return buf
	}
	buf := make([]byte, recordLenWithMode)
	copy(buf, r.Fingerprint[:])
	binary.LittleEndian.PutUint32(buf[fingerprintLen:], *r.Mode)
	return buf
}

// Decode parses a ledger record blob. It fails with LedgerCorruption
// unless the length is exactly 32 or 36 bytes, per spec.md §7.
func Decode(data []byte) (Record, error) {
	switch len(data) {
	case recordLenNoMode:
		var r Record
		copy(r.Fingerprint[:], data)
		return r, nil
	case recordLenWithMode:
		var r Record
		copy(r.Fingerprint[:], data[:fingerprintLen])
		mode := binary.LittleEndian.Uint32(data[fingerprintLen:])
		r.Mode = &mode
		return r, nil
	default:
		return Record{}, errors.Newf(errors.ErrLedgerCorruption, "ledger record length %d is neither 32 nor 36 bytes", len(data))
	}
}

// Ledger is the durable store of per-path Records.
type Ledger struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLedgerOpen, "open ledger database").WithPath(path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entryStateBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrLedgerOpen, "create entryState bucket").WithPath(path)
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Get returns the record for key, or ok=false if the path is not
// currently managed (spec.md §3: "absence of a record means this path
// is not currently managed").
func (l *Ledger) Get(key string) (Record, bool, error) {
	var (
		rec Record
		ok  bool
		err error
	)
	txErr := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entryStateBucket)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		ok = true
		// Copy: bbolt values are only valid for the transaction's lifetime.
		data := append([]byte(nil), v...)
		rec, err = Decode(data)
		return nil
	})
	if txErr != nil {
		return Record{}, false, errors.Wrap(txErr, errors.ErrLedgerRead, "read ledger record").WithDetail("key", key)
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, ok, nil
}

// Set writes (creating or replacing) the record for key. The write is
// durable before Set returns, satisfying spec.md §4.7's per-path
// durability requirement.
func (l *Ledger) Set(key string, rec Record) error {
	err := l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entryStateBucket)
		return b.Put([]byte(key), Encode(rec))
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "write ledger record").WithDetail("key", key)
	}
	return nil
}

// Delete removes the record for key, if any. Deleting an absent key is
// not an error.
func (l *Ledger) Delete(key string) error {
	err := l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entryStateBucket)
		return b.Delete([]byte(key))
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "delete ledger record").WithDetail("key", key)
	}
	return nil
}

// Keys returns every destination-relative path currently recorded.
func (l *Ledger) Keys() ([]string, error) {
	var keys []string
	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entryStateBucket)
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLedgerRead, "list ledger keys")
	}
	return keys, nil
}

// ValidationReport supplements the ledger with the corruption and
// orphan checks original_source's state validator performs: every
// record must decode cleanly, and every record's path should exist in
// the current target state (orphans are paths the ledger still tracks
// that source no longer produces).
type ValidationReport struct {
	CorruptKeys []string
	OrphanKeys  []string
}

// Validate scans every record for length corruption and cross-references
// keys against managedPaths (typically the destination-relative keys of
// the current target state) to find orphans.
func (l *Ledger) Validate(managedPaths map[string]struct{}) (ValidationReport, error) {
	var report ValidationReport
	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entryStateBucket)
		return b.ForEach(func(k, v []byte) error {
			key := string(k)
			if _, err := Decode(v); err != nil {
				report.CorruptKeys = append(report.CorruptKeys, key)
				return nil
			}
			if managedPaths != nil {
				if _, ok := managedPaths[key]; !ok {
					report.OrphanKeys = append(report.OrphanKeys, key)
				}
			}
			return nil
		})
	})
	if err != nil {
		return ValidationReport{}, errors.Wrap(err, errors.ErrLedgerRead, "validate ledger")
	}
	return report, nil
}
