package humpack

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/felixludos/HumPack/utils"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/learn-decentralized-systems/toytlv"
	"github.com/pkg/errors"
)

// Store persists packed documents in a pebble database, keyed by name.
// Every Save writes the latest record plus a uuid-stamped history entry;
// history is pruned to MaxRevisions per key. Records are TLV envelopes
// carrying an xxhash checksum, so corruption surfaces as ErrBadRecord
// instead of a garbage graph.
type Store struct {
	db   *pebble.DB
	reg  *Registry
	opts StoreOptions
	log  utils.Logger

	cache *lru.Cache[string, *Document]
	seqs  map[string]*utils.Heap[uint64]
	next  uint64
	lock  sync.Mutex

	saves, loads, cacheHits atomic.Uint64
}

type StoreOptions struct {
	MaxRevisions int          // history entries kept per key; default 8
	CacheSize    int          // decoded-document LRU size; default 128
	Logger       utils.Logger // default: slog text logger at Info
	Sync         bool         // fsync each write
}

func (o *StoreOptions) setDefaults() {
	if o.MaxRevisions <= 0 {
		o.MaxRevisions = 8
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 128
	}
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
}

// Revision is one history entry of a key.
type Revision struct {
	Seq uint64
	Rev uuid.UUID
}

var keySeq = []byte("Sseq")

// Key layout: 'D'+name holds the latest record, 'H'+name+0x00+seq(BE) the
// history. Names must be non-empty and NUL-free so history bounds stay
// unambiguous.
func dkey(name string) []byte {
	return append([]byte{'D'}, name...)
}

func hkey(name string, seq uint64) []byte {
	key := append([]byte{'H'}, name...)
	key = append(key, 0)
	return binary.BigEndian.AppendUint64(key, seq)
}

func OpenStore(path string, reg *Registry, opts StoreOptions) (*Store, error) {
	opts.setDefaults()
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *Document](opts.CacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{
		db:    db,
		reg:   reg,
		opts:  opts,
		log:   opts.Logger,
		cache: cache,
		seqs:  map[string]*utils.Heap[uint64]{},
	}
	val, clo, err := db.Get(keySeq)
	if err == nil {
		s.next = binary.BigEndian.Uint64(val)
		_ = clo.Close()
	} else if err != pebble.ErrNotFound {
		_ = db.Close()
		return nil, err
	}
	s.log.Info("store open", "path", path, "seq", s.next)
	return s, nil
}

func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db == nil {
		return humpack_errors.ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	s.log.Info("store closed")
	return err
}

func badKey(name string) bool {
	return name == "" || strings.ContainsRune(name, 0)
}

// Save packs value, encodes it and writes it under name, returning the
// revision id of the new record. Failures from packing or encoding
// propagate unchanged and leave the store untouched.
func (s *Store) Save(name string, value any) (uuid.UUID, error) {
	if badKey(name) {
		return uuid.Nil, errors.Wrapf(humpack_errors.ErrBadRecord, "bad key %q", name)
	}
	doc, err := s.reg.Pack(value)
	if err != nil {
		return uuid.Nil, err
	}
	text, err := EncodeText(doc)
	if err != nil {
		return uuid.Nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db == nil {
		return uuid.Nil, humpack_errors.ErrClosed
	}
	rev := uuid.New()
	s.next++
	seq := s.next
	rec := sealRecord(rev, seq, text)

	wo := &pebble.WriteOptions{Sync: s.opts.Sync}
	batch := s.db.NewBatch()
	_ = batch.Set(dkey(name), rec, nil)
	_ = batch.Set(hkey(name, seq), rec, nil)
	_ = batch.Set(keySeq, binary.BigEndian.AppendUint64(nil, seq), nil)
	if err = s.prune(batch, name, seq); err != nil {
		return uuid.Nil, err
	}
	if err = s.db.Apply(batch, wo); err != nil {
		// the heap no longer matches disk; rebuild it from history on
		// the next save of this key
		delete(s.seqs, name)
		return uuid.Nil, err
	}
	s.cache.Add(name, doc)
	s.saves.Add(1)
	s.log.Debug("saved", "key", name, "rev", rev.String(), "nodes", doc.Len())
	return rev, nil
}

// prune keeps the newest MaxRevisions history entries of name, dropping
// the oldest via a min-heap of sequence numbers.
func (s *Store) prune(batch *pebble.Batch, name string, seq uint64) error {
	heap, ok := s.seqs[name]
	if !ok {
		heap = &utils.Heap[uint64]{}
		revs, err := s.history(name)
		if err != nil {
			return err
		}
		for _, r := range revs {
			heap.Push(r.Seq)
		}
		s.seqs[name] = heap
	}
	heap.Push(seq)
	for heap.Len() > s.opts.MaxRevisions {
		_ = batch.Delete(hkey(name, heap.Pop()), nil)
	}
	return nil
}

// Load reads the latest record under name and reconstructs the value.
// Decoded documents are cached, so repeated loads of an unchanged key skip
// pebble and the codec entirely.
func (s *Store) Load(name string) (any, error) {
	if badKey(name) {
		return nil, errors.Wrapf(humpack_errors.ErrBadRecord, "bad key %q", name)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db == nil {
		return nil, humpack_errors.ErrClosed
	}
	s.loads.Add(1)
	if doc, ok := s.cache.Get(name); ok {
		s.cacheHits.Add(1)
		return s.reg.Unpack(doc)
	}
	val, clo, err := s.db.Get(dkey(name))
	if err != nil {
		return nil, err
	}
	rec := append([]byte(nil), val...)
	_ = clo.Close()
	_, _, text, err := openRecord(rec)
	if err != nil {
		s.log.Warn("corrupt record", "key", name)
		return nil, err
	}
	doc, err := DecodeText(text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, doc)
	return s.reg.Unpack(doc)
}

// History lists the retained revisions of name, oldest first.
func (s *Store) History(name string) ([]Revision, error) {
	if badKey(name) {
		return nil, errors.Wrapf(humpack_errors.ErrBadRecord, "bad key %q", name)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.db == nil {
		return nil, humpack_errors.ErrClosed
	}
	return s.history(name)
}

func (s *Store) history(name string) ([]Revision, error) {
	lo := hkey(name, 0)
	hi := append(append([]byte{'H'}, name...), 1)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var revs []Revision
	for it.First(); it.Valid(); it.Next() {
		seq := binary.BigEndian.Uint64(it.Key()[len(it.Key())-8:])
		rev, _, _, err := openRecord(it.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "history of %q at seq %d", name, seq)
		}
		revs = append(revs, Revision{Seq: seq, Rev: rev})
	}
	return revs, it.Error()
}

// sealRecord wraps an encoded document into the on-disk TLV envelope:
//
//	D( R(rev uuid) Q(seq) X(xxhash of body) B(body) )
func sealRecord(rev uuid.UUID, seq uint64, text []byte) []byte {
	return toytlv.Record('D',
		toytlv.TinyRecord('R', rev[:]),
		toytlv.TinyRecord('Q', binary.BigEndian.AppendUint64(nil, seq)),
		toytlv.TinyRecord('X', binary.BigEndian.AppendUint64(nil, xxhash.Sum64(text))),
		toytlv.Record('B', text),
	)
}

func openRecord(rec []byte) (rev uuid.UUID, seq uint64, text []byte, err error) {
	fail := func(msg string) error {
		return errors.Wrap(humpack_errors.ErrBadRecord, msg)
	}
	body, rest := toytlv.Take('D', rec)
	if body == nil || len(rest) != 0 {
		err = fail("not a document record")
		return
	}
	rb, body := toytlv.Take('R', body)
	if len(rb) != 16 {
		err = fail("bad revision id")
		return
	}
	copy(rev[:], rb)
	qb, body := toytlv.Take('Q', body)
	if len(qb) != 8 {
		err = fail("bad sequence number")
		return
	}
	seq = binary.BigEndian.Uint64(qb)
	xb, body := toytlv.Take('X', body)
	if len(xb) != 8 {
		err = fail("bad checksum field")
		return
	}
	text, rest = toytlv.Take('B', body)
	if text == nil || len(rest) != 0 {
		err = fail("bad body")
		return
	}
	if !bytes.Equal(xb, binary.BigEndian.AppendUint64(nil, xxhash.Sum64(text))) {
		err = fail("checksum mismatch")
		return
	}
	return
}
