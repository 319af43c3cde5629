// Package seriescache keeps parsed series on disk so that large tracelog
// and model files are parsed once. Entries are keyed by source path,
// modification time and column, so editing a file invalidates its entries.
package seriescache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/acisops/acispy/internal/fsutil"
	"github.com/acisops/acispy/internal/monitoring"
	"github.com/acisops/acispy/internal/series"
)

// indexColumn names the entry listing a file's cached columns.
const indexColumn = "\x00columns"

// Options configures a Cache.
type Options struct {
	// Dir is the badger directory. Empty with InMemory false is an error.
	Dir      string
	InMemory bool
	// FS is used to stat source files; nil uses the OS.
	FS   fsutil.FileSystem
	Logf monitoring.Logger
}

// Cache is a badger-backed store of zstd-compressed series. It is safe
// for concurrent use.
type Cache struct {
	db   *badger.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	fs   fsutil.FileSystem
	logf monitoring.Logger
}

// Open opens or creates a cache.
func Open(opts Options) (*Cache, error) {
	if opts.Dir == "" && !opts.InMemory {
		return nil, errors.New("seriescache: no directory")
	}
	bopts := badger.DefaultOptions(opts.Dir).WithInMemory(opts.InMemory)
	bopts.Logger = nil
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("seriescache: open badger: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seriescache: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("seriescache: zstd decoder: %w", err)
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Cache{db: db, enc: enc, dec: dec, fs: fsys, logf: monitoring.OrDefault(opts.Logf)}, nil
}

// Close releases the cache.
func (c *Cache) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

// Key identifies one cached column of one version of a file.
type Key struct {
	Path    string
	ModTime int64
	Column  string
}

func (k Key) bytes() []byte {
	return []byte(k.Path + "\x00" + strconv.FormatInt(k.ModTime, 10) + "\x00" + k.Column)
}

// KeyFor stats path and returns the key of column in its current version.
func (c *Cache) KeyFor(path, column string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, err
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return Key{}, fmt.Errorf("seriescache: %w", err)
	}
	return Key{Path: abs, ModTime: info.ModTime().UnixNano(), Column: column}, nil
}

// Get returns the cached series for k.
func (c *Cache) Get(k Key) (series.Series, bool, error) {
	raw, ok, err := c.get(k)
	if err != nil || !ok {
		return series.Series{}, ok, err
	}
	s, err := decodeSeries(raw)
	if err != nil {
		return series.Series{}, false, fmt.Errorf("seriescache: %s: %w", k.Column, err)
	}
	return s, true, nil
}

// Put stores s under k.
func (c *Cache) Put(k Key, s series.Series) error {
	return c.put(k, encodeSeries(s))
}

func (c *Cache) get(k Key) ([]byte, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k.bytes())
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("seriescache: get: %w", err)
	}
	out, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, false, fmt.Errorf("seriescache: decompress: %w", err)
	}
	return out, true, nil
}

func (c *Cache) put(k Key, data []byte) error {
	compressed := c.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k.bytes(), compressed)
	})
	if err != nil {
		return fmt.Errorf("seriescache: put: %w", err)
	}
	return nil
}

// Column is one named series of a file.
type Column struct {
	Name   string
	Series series.Series
}

// LoadFile returns every column of path, calling parse only when the
// current version of the file is not cached.
func (c *Cache) LoadFile(path string, parse func() ([]Column, error)) ([]Column, error) {
	idx, err := c.KeyFor(path, indexColumn)
	if err != nil {
		return nil, err
	}
	if cols, ok := c.loadCached(idx); ok {
		return cols, nil
	}

	cols, err := parse()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
		if err := c.Put(Key{Path: idx.Path, ModTime: idx.ModTime, Column: col.Name}, col.Series); err != nil {
			return nil, err
		}
	}
	if err := c.put(idx, []byte(strings.Join(names, "\n"))); err != nil {
		return nil, err
	}
	c.logf("seriescache: cached %d columns of %s", len(cols), path)
	return cols, nil
}

func (c *Cache) loadCached(idx Key) ([]Column, bool) {
	raw, ok, err := c.get(idx)
	if err != nil {
		c.logf("seriescache: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var names []string
	if len(raw) > 0 {
		names = strings.Split(string(raw), "\n")
	}
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		s, ok, err := c.Get(Key{Path: idx.Path, ModTime: idx.ModTime, Column: name})
		if err != nil || !ok {
			if err != nil {
				c.logf("seriescache: %v", err)
			}
			return nil, false
		}
		cols = append(cols, Column{Name: name, Series: s})
	}
	return cols, true
}
