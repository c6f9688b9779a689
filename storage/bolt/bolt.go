package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/corrcheck/storage"

	bolt "go.etcd.io/bbolt"
)

func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		panic(err)
	}
	return string(js)
}

// keyFormat sorts lexically in time order.  Keys add a bucket
// sequence number.
const keyFormat = "2006-01-02T15:04:05.000000000Z"

// Storage keeps one bucket per program.  Each key is a record's
// timestamp.
type Storage struct {
	Debug bool

	// MaxHistory, if positive, is the number of records kept per
	// program.  Older records are dropped on write.
	MaxHistory int

	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) WriteRecord(ctx context.Context, r *storage.Record) error {
	s.logf("WriteRecord %s", JS(r))

	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(r.Program))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		// The sequence keeps records made at the same instant apart.
		key := []byte(fmt.Sprintf("%s-%020d", r.At.UTC().Format(keyFormat), seq))
		if err = b.Put(key, js); err != nil {
			return err
		}
		if s.MaxHistory <= 0 {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		excess := len(keys) - s.MaxHistory
		if excess <= 0 {
			return nil
		}
		for _, k := range keys[:excess] {
			s.logf("WriteRecord %s dropping %s", r.Program, k)
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) GetHistory(ctx context.Context, program string) ([]*storage.Record, error) {
	s.logf("GetHistory %s", program)
	rs := make([]*storage.Record, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(program))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for _, bs := c.First(); bs != nil; _, bs = c.Next() {
			var r storage.Record
			if err := json.Unmarshal(bs, &r); err != nil {
				return err
			}
			rs = append(rs, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("GetHistory %s found %d records", program, len(rs))

	if len(rs) == 0 {
		return nil, nil
	}

	return rs, nil
}

func (s *Storage) RemProgram(ctx context.Context, program string) error {
	s.logf("RemProgram %s", program)
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(program))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

func (s *Storage) Programs(ctx context.Context) ([]string, error) {
	var acc []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}
