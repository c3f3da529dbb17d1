// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/boxoffice/lib/schema"
)

// MaxDocumentSize bounds the size of a collection file, before and
// after decompression.
const MaxDocumentSize = 64 << 20

// Options configures Open.
type Options struct {
	// Lock takes an exclusive advisory lock on "<path>.lock" for the
	// lifetime of the File.
	Lock bool
}

// LoadResult is the outcome of [File.Load].
type LoadResult struct {
	// Tickets are the accepted records, in document order.
	Tickets []schema.Ticket

	// Diagnostics describe rejected records and load conditions.
	Diagnostics []Diagnostic

	// Digest is the hash of the document as read, zero if the file
	// did not exist.
	Digest Digest

	// Missing is true when the file did not exist.
	Missing bool
}

// SaveResult is the outcome of [File.Save].
type SaveResult struct {
	Count  int
	Digest Digest

	// Unchanged is true when the encoded document matched the last
	// loaded or saved digest and nothing was written.
	Unchanged bool
}

// File is a collection file on disk.
type File struct {
	path        string
	compression Compression
	lock        *fileLock

	// mu serializes Save calls and guards lastDigest.
	mu         sync.Mutex
	lastDigest Digest
}

// Open prepares path for loading and saving. With options.Lock it
// fails with [ErrLocked] if another process holds the lock.
func Open(path string, options Options) (*File, error) {
	if path == "" {
		return nil, errors.New("collection file path is empty")
	}
	file := &File{
		path:        path,
		compression: CompressionFor(path),
	}
	if options.Lock {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", path, err)
		}
		lock, err := acquireLock(path + ".lock")
		if err != nil {
			return nil, err
		}
		file.lock = lock
	}
	return file, nil
}

// Path returns the collection file path.
func (f *File) Path() string { return f.path }

// Compression returns the compression selected for the file.
func (f *File) Compression() Compression { return f.compression }

// Load reads and decodes the collection file. A missing or empty file
// yields an empty collection with a diagnostic. A file that cannot be
// read, decompressed, or parsed as XML is an error.
func (f *File) Load() (LoadResult, error) {
	raw, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return LoadResult{
			Missing:     true,
			Diagnostics: []Diagnostic{{Message: fmt.Sprintf("%s does not exist; starting with an empty collection", f.path)}},
		}, nil
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("opening %s: %w", f.path, err)
	}
	defer raw.Close()

	compressed, err := readLimited(raw)
	if err != nil {
		return LoadResult{}, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(compressed) == 0 {
		return LoadResult{
			Diagnostics: []Diagnostic{{Message: fmt.Sprintf("%s is empty; starting with an empty collection", f.path)}},
		}, nil
	}

	document, err := decompress(compressed, f.compression)
	if err != nil {
		return LoadResult{}, fmt.Errorf("reading %s: %w", f.path, err)
	}

	tickets, diagnostics, err := Decode(bytes.NewReader(document))
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", f.path, err)
	}

	digest := DigestOf(document)
	f.mu.Lock()
	f.lastDigest = digest
	f.mu.Unlock()

	return LoadResult{Tickets: tickets, Diagnostics: diagnostics, Digest: digest}, nil
}

// Save encodes tickets and atomically replaces the collection file.
// If the encoded document is identical to the last one loaded or
// saved and the file still exists, nothing is written.
func (f *File) Save(tickets []schema.Ticket) (SaveResult, error) {
	var document bytes.Buffer
	if err := Encode(&document, tickets); err != nil {
		return SaveResult{}, err
	}
	digest := DigestOf(document.Bytes())
	result := SaveResult{Count: len(tickets), Digest: digest}

	f.mu.Lock()
	defer f.mu.Unlock()

	if digest == f.lastDigest {
		if _, err := os.Stat(f.path); err == nil {
			result.Unchanged = true
			return result, nil
		}
	}

	data, err := compress(document.Bytes(), f.compression)
	if err != nil {
		return SaveResult{}, fmt.Errorf("saving %s: %w", f.path, err)
	}
	if err := writeAtomic(f.path, data); err != nil {
		return SaveResult{}, err
	}
	f.lastDigest = digest
	return result, nil
}

// Close releases the lock, if held.
func (f *File) Close() error {
	if f.lock == nil {
		return nil
	}
	err := f.lock.release()
	f.lock = nil
	return err
}

// writeAtomic writes data to a temporary file in the same directory,
// fsyncs it, and renames it over path. Readers never see a partial
// write.
func writeAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := temporary.Name()

	if err := writeAndSync(temporary, data); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("setting mode on temporary file for %s: %w", path, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming temporary file into %s: %w", path, err)
	}

	// Sync the parent so the rename itself is durable.
	if parent, err := os.Open(directory); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

func writeAndSync(file *os.File, data []byte) error {
	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
