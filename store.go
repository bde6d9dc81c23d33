package main

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Transaction is a persisted record with its provenance.
type Transaction struct {
	ID         string
	UserID     int64
	Timestamp  time.Time
	Data       Candidate
	SourceText string
}

// ConversationTurn remembers an inbound message alongside the transactions it
// produced.
type ConversationTurn struct {
	ID        string
	UserID    int64
	Timestamp time.Time
	Text      string
	TxnIDs    []string
}

// FileIndexEntry points at an uploaded or generated file kept on disk.
type FileIndexEntry struct {
	ID        string
	UserID    int64
	Timestamp time.Time
	Filename  string
	Path      string
}

// Store is the persistence surface the bot talks to.
type Store interface {
	AppendTransactions(userID int64, sourceText string, cands []Candidate) ([]Transaction, error)
	ListByUser(userID int64) ([]Transaction, error)
	ListByUserAndDate(userID int64, day time.Time) ([]Transaction, error)
	MutateLastByUser(userID int64, mutate func(*Candidate)) (bool, error)
	RemoveLastNByUser(userID int64, n int) (int, error)
	IndexFile(userID int64, filename, storagePath string) (FileIndexEntry, error)
	ListFilesByUser(userID int64) ([]FileIndexEntry, error)
	Close() error
}

var (
	bucketTxns  = []byte("txns")
	bucketTurns = []byte("turns")
	bucketFiles = []byte("files")
)

// boltStore keeps everything in a single bolt file, one bucket per record
// kind, keyed by bucket sequence so cursor order is insertion order.
type boltStore struct {
	db  *bolt.DB
	now func() time.Time
}

func openBoltStore(path string) (*boltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open store at %v", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTxns, bucketTurns, bucketFiles} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltStore{db: db, now: time.Now}, nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

func sequenceKey(b *bolt.Bucket) ([]byte, error) {
	seq, err := b.NextSequence()
	if err != nil {
		return nil, errors.Wrap(err, "bucket sequence")
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key, nil
}

func encodeValue(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return buf.Bytes(), nil
}

func decodeValue(data []byte, v interface{}) error {
	return errors.Wrap(gob.NewDecoder(bytes.NewBuffer(data)).Decode(v), "decode record")
}

// AppendTransactions stores every candidate and, when at least one was given,
// a conversation turn linking them to the source text.
func (s *boltStore) AppendTransactions(userID int64, sourceText string, cands []Candidate) ([]Transaction, error) {
	now := s.now()
	txns := make([]Transaction, 0, len(cands))
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTxns)
		ids := make([]string, 0, len(cands))
		for _, c := range cands {
			t := Transaction{
				ID:         uuid.NewString(),
				UserID:     userID,
				Timestamp:  now,
				Data:       c,
				SourceText: sourceText,
			}
			key, err := sequenceKey(b)
			if err != nil {
				return err
			}
			val, err := encodeValue(t)
			if err != nil {
				return err
			}
			if err := b.Put(key, val); err != nil {
				return errors.Wrap(err, "put transaction")
			}
			txns = append(txns, t)
			ids = append(ids, t.ID)
		}
		if len(ids) == 0 {
			return nil
		}

		turns := tx.Bucket(bucketTurns)
		turn := ConversationTurn{
			ID:        uuid.NewString(),
			UserID:    userID,
			Timestamp: now,
			Text:      sourceText,
			TxnIDs:    ids,
		}
		key, err := sequenceKey(turns)
		if err != nil {
			return err
		}
		val, err := encodeValue(turn)
		if err != nil {
			return err
		}
		return errors.Wrap(turns.Put(key, val), "put conversation turn")
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *boltStore) ListByUser(userID int64) ([]Transaction, error) {
	var txns []Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTxns).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var t Transaction
			if err := decodeValue(v, &t); err != nil {
				return err
			}
			if t.UserID == userID {
				txns = append(txns, t)
			}
		}
		return nil
	})
	return txns, err
}

// ListByUserAndDate filters by the calendar day of the stored timestamp, not
// the candidate's self-reported date.
func (s *boltStore) ListByUserAndDate(userID int64, day time.Time) ([]Transaction, error) {
	want := day.Format(dateLayout)
	all, err := s.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	var txns []Transaction
	for _, t := range all {
		if t.Timestamp.Format(dateLayout) == want {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

// MutateLastByUser applies mutate to the newest transaction of the user and
// writes it back in place. Returns false when the user has no transactions.
func (s *boltStore) MutateLastByUser(userID int64, mutate func(*Candidate)) (bool, error) {
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTxns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var t Transaction
			if err := decodeValue(v, &t); err != nil {
				return err
			}
			if t.UserID != userID {
				continue
			}
			mutate(&t.Data)
			val, err := encodeValue(t)
			if err != nil {
				return err
			}
			if err := tx.Bucket(bucketTxns).Put(append([]byte(nil), k...), val); err != nil {
				return errors.Wrap(err, "rewrite transaction")
			}
			found = true
			return nil
		}
		return nil
	})
	return found, err
}

// RemoveLastNByUser deletes up to n of the user's newest transactions and
// reports how many actually went.
func (s *boltStore) RemoveLastNByUser(userID int64, n int) (int, error) {
	if n < 1 {
		n = 1
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTxns)
		var keys [][]byte
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(keys) < n; k, v = c.Prev() {
			var t Transaction
			if err := decodeValue(v, &t); err != nil {
				return err
			}
			if t.UserID == userID {
				keys = append(keys, append([]byte(nil), k...))
			}
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return errors.Wrap(err, "delete transaction")
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *boltStore) IndexFile(userID int64, filename, storagePath string) (FileIndexEntry, error) {
	entry := FileIndexEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: s.now(),
		Filename:  filename,
		Path:      storagePath,
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		key, err := sequenceKey(b)
		if err != nil {
			return err
		}
		val, err := encodeValue(entry)
		if err != nil {
			return err
		}
		return errors.Wrap(b.Put(key, val), "put file entry")
	})
	if err != nil {
		return FileIndexEntry{}, err
	}
	return entry, nil
}

func (s *boltStore) ListFilesByUser(userID int64) ([]FileIndexEntry, error) {
	var files []FileIndexEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketFiles).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var f FileIndexEntry
			if err := decodeValue(v, &f); err != nil {
				return err
			}
			if f.UserID == userID {
				files = append(files, f)
			}
		}
		return nil
	})
	return files, err
}
