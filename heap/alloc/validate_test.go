package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

func TestValidate_Uninitialized(t *testing.T) {
	a := NewImplicit(nil)
	require.True(t, a.Validate())
	require.ErrorIs(t, a.Check(), ErrNotInitialized)
}

func TestValidate_UsedBytesOverflow(t *testing.T) {
	var logs bytes.Buffer
	var got *verify.ValidationError
	a := newTestAllocator(t, 4096, &Options{
		Logger:       slog.New(slog.NewJSONHandler(&logs, nil)),
		OnCorruption: func(v *verify.ValidationError) { got = v },
	})
	require.True(t, a.Validate())

	a.used = a.Size() + format.DoubleWordSize
	require.False(t, a.Validate())

	require.NotNil(t, got, "corruption hook must be called")
	assert.Equal(t, verify.KindUsedBytes, got.Kind)
	assert.Equal(t, -1, got.Offset)
	assert.Contains(t, logs.String(), "heap corruption detected")
	assert.Contains(t, logs.String(), `"kind":"UsedBytes"`)

	s := a.Stats()
	assert.Equal(t, 2, s.ValidateCalls)
	assert.Equal(t, 1, s.CorruptionReports)

	var verr *verify.ValidationError
	require.ErrorAs(t, a.Check(), &verr)
	assert.Equal(t, verify.KindUsedBytes, verr.Kind)
}

func TestValidate_DeepFindsTagMismatch(t *testing.T) {
	var got *verify.ValidationError
	deep := newTestAllocator(t, 4096, &Options{
		DeepValidate: true,
		OnCorruption: func(v *verify.ValidationError) { got = v },
	})
	shallow := newTestAllocator(t, 4096, nil)

	for _, a := range []*ImplicitAllocator{deep, shallow} {
		p := mustAlloc(t, a, 100)
		rest := p + 112
		seg := a.Segment()
		format.PutWord(seg, seg.FooterOff(rest), format.Pack(16, false))
	}

	require.True(t, shallow.Validate(), "shallow check only looks at the counter")
	require.False(t, deep.Validate())
	require.NotNil(t, got)
	assert.Equal(t, verify.KindTagMismatch, got.Kind)
	assert.Equal(t, 128, got.Offset)

	var verr *verify.ValidationError
	require.ErrorAs(t, shallow.Check(), &verr)
	assert.Equal(t, verify.KindTagMismatch, verr.Kind)
}

func TestOptions_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	a := newTestAllocator(t, 4096, &Options{
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	p := mustAlloc(t, a, 100)
	require.NoError(t, a.Free(p))
	_, _ = a.Alloc(5000)

	out := logs.String()
	assert.Contains(t, out, "arena initialized")
	assert.Contains(t, out, "split")
	assert.Contains(t, out, "coalesced")
}

func TestOptions_NilLoggerDiscards(t *testing.T) {
	var o *Options
	l := o.logger()
	require.NotNil(t, l)
	if !logAlloc {
		require.False(t, l.Enabled(t.Context(), slog.LevelDebug))
	}
}
