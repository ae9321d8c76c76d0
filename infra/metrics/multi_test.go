package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	records []SolveRecord
	err     error
}

func (f *fakeSink) RecordSolve(rec SolveRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &fakeSink{}, &fakeSink{}
	m := NewMultiSink(a, b)

	require.NoError(t, m.RecordSolve(sampleRecord()))

	require.Len(t, a.records, 1)
	require.Len(t, b.records, 1)
	assert.Equal(t, "run-1", a.records[0].RunID)
}

func TestMultiSink_FirstError(t *testing.T) {
	boom := errors.New("sink down")
	a := &fakeSink{err: boom}
	b := &fakeSink{}
	m := NewMultiSink(a, b)

	err := m.RecordSolve(sampleRecord())
	assert.ErrorIs(t, err, boom)
	// The failing sink short-circuits the fanout.
	assert.Empty(t, b.records)
}

func TestNopSink(t *testing.T) {
	assert.NoError(t, NopSink{}.RecordSolve(sampleRecord()))
}
