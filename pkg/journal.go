// Package pkg provides generic utilities for climb.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrReadOnly is returned when appending to a journal opened for reading.
var ErrReadOnly = errors.New("journal is read-only")

// Journal is an append-only, gob-encoded sequence of items of type T on disk.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
}

type journalImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// Append implements Journal.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.encoder == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	j.length++
	slog.Debug("appended item", "path", j.path, "index", j.length-1)

	return nil
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// AppendBatch implements Journal.
func (j *journalImpl[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := j.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	if err := j.file.Close(); err != nil {
		slog.Error("failed to close file", "path", j.path, "error", err)
		return err
	}

	j.file = nil
	j.encoder = nil
	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}

// Get implements Journal.
func (j *journalImpl[T]) Get(index uint64) (T, error) {
	var zero T

	j.mu.Lock()
	length := j.length
	j.mu.Unlock()

	if index >= length {
		slog.Warn("get index out of bounds", "path", j.path, "index", index, "length", length)
		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, length)
	}

	var (
		found T
		ok    bool
	)

	err := j.Range(func(i uint64, item T) error {
		if i == index {
			found, ok = item, true
			return errStop
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return zero, err
	}

	if !ok {
		return zero, fmt.Errorf("item %d not found in %s", index, j.path)
	}

	return found, nil
}

var errStop = errors.New("stop")

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Range implements Journal.
func (j *journalImpl[T]) Range(fn func(index uint64, item T) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		slog.Error("failed to open file for range", "path", j.path, "error", err)
		return fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close file", "path", j.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range j.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item during range", "path", j.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	slog.Debug("range completed", "path", j.path, "count", j.length)

	return nil
}

// CreateJournal creates (or truncates) the journal file at path for appending.
func CreateJournal[T any](path string) (Journal[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		slog.Error("failed to create journal directory", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	file, err := os.Create(path) //nolint:gosec // path comes from the user's output flag
	if err != nil {
		slog.Error("failed to create journal", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	slog.Debug("created journal", "path", path)

	return &journalImpl[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// OpenJournal opens an existing journal for reading.
func OpenJournal[T any](path string) (Journal[T], error) {
	file, err := os.Open(path) //nolint:gosec // path comes from the user's output flag
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close file", "path", path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	var length uint64

	for {
		var item T

		err := decoder.Decode(&item)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			slog.Error("failed to decode journal", "path", path, "index", length, "error", err)
			return nil, fmt.Errorf("failed to decode item at index %d: %w", length, err)
		}

		length++
	}

	slog.Debug("opened journal", "path", path, "length", length)

	return &journalImpl[T]{path: path, length: length}, nil
}
