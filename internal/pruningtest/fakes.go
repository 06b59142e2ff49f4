// Package pruningtest provides in-memory fakes for pruning's external
// collaborators (MetadataReader, ObjectStore), the way
// satellite/metabase/rangedloop/rangedlooptest supplies fakes
// (RangeSplitter, CountObserver) for the teacher's own ranged-loop
// collaborators.
package pruningtest

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/tablestore/blockprune/pkg/pruning"
)

// MetadataReader is an in-memory pruning.MetadataReader keyed by segment
// path, with an optional injected failure and a read counter so tests can
// assert exactly how many segment reads were issued.
type MetadataReader struct {
	Segments map[string]pruning.SegmentInfo
	FailPath string
	FailErr  error

	reads atomic.Int64
}

// Read implements pruning.MetadataReader.
func (m *MetadataReader) Read(_ context.Context, path string, _ *string, _ uint64) (pruning.SegmentInfo, error) {
	m.reads.Add(1)
	if m.FailPath != "" && path == m.FailPath {
		return pruning.SegmentInfo{}, m.FailErr
	}
	info, ok := m.Segments[path]
	if !ok {
		return pruning.SegmentInfo{}, io.ErrUnexpectedEOF
	}
	return info, nil
}

// Reads returns the number of Read calls observed so far.
func (m *MetadataReader) Reads() int64 { return m.reads.Load() }

// ObjectStore is an in-memory pruning.ObjectStore keyed by location, with
// an optional injected failure and a read counter so tests can assert
// exactly how many bloom-index reads were issued (spec scenario 3: zero
// bloom reads when the range filter already drops every block).
type ObjectStore struct {
	Objects  map[string][]byte
	FailPath string
	FailErr  error

	reads atomic.Int64
}

// ReadRange implements pruning.ObjectStore.
func (s *ObjectStore) ReadRange(_ context.Context, location string, _ uint64) (io.ReadCloser, error) {
	s.reads.Add(1)
	if s.FailPath != "" && location == s.FailPath {
		return nil, s.FailErr
	}
	data, ok := s.Objects[location]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

// Reads returns the number of ReadRange calls observed so far.
func (s *ObjectStore) Reads() int64 { return s.reads.Load() }
