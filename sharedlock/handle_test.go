package sharedlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/lattice-sync/lattice/adapter/memory"
	"github.com/lattice-sync/lattice/sharedlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *sharedlock.Provider {
	return sharedlock.New(&sharedlock.Option{Adapter: memory.NewSharedLockAdapter()})
}

// S4: writer blocks readers until released, after which the reader succeeds.
func TestWriterBlocksReaderUntilReleased(t *testing.T) {
	p := newTestProvider()

	writer := p.Create("k")
	reader := p.Create("k", sharedlock.HandleOption{ReaderLimit: 3})

	ok, err := writer.AcquireWriter(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reader.AcquireReader(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "reader must not acquire while the writer is held")

	ok, err = writer.ReleaseWriter(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reader.AcquireReader(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "reader must succeed once the writer releases")
}

func TestReaderBlocksWriter(t *testing.T) {
	p := newTestProvider()

	reader := p.Create("k", sharedlock.HandleOption{ReaderLimit: 3})
	writer := p.Create("k")

	ok, err := reader.AcquireReader(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = writer.AcquireWriter(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "writer must not acquire while any reader is held")
}

func TestForceReleaseAllReadersNoOpUnderWriter(t *testing.T) {
	p := newTestProvider()

	reader := p.Create("k", sharedlock.HandleOption{ReaderLimit: 3})
	ok, err := reader.AcquireReader(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	_, err = reader.ReleaseReader(context.Background())
	require.NoError(t, err)

	writer := p.Create("k")
	ok, err = writer.AcquireWriter(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = writer.ForceReleaseAllReaders(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "forceReleaseAllReaders must be a no-op while a writer holds the key")
}

func TestGetStateIsDisjoint(t *testing.T) {
	p := newTestProvider()

	writer := p.Create("k")
	state, err := writer.GetState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)

	_, err = writer.AcquireWriter(context.Background())
	require.NoError(t, err)

	state, err = writer.GetState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.NotNil(t, state.Writer)
	assert.Nil(t, state.Reader, "a key with a live writer must never report a live reader")
}

func TestRunWriterAlwaysReleases(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k")

	r := sharedlock.RunWriter(context.Background(), h, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	other := p.Create("k", sharedlock.HandleOption{ReaderLimit: 1})
	ok, err := other.AcquireReader(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "writer must be released after RunWriter")
}

func TestRunReaderAlwaysReleases(t *testing.T) {
	p := newTestProvider()
	h := p.Create("k", sharedlock.HandleOption{ReaderLimit: 1})

	r := sharedlock.RunReader(context.Background(), h, func(ctx context.Context) (int, error) {
		return 9, nil
	})
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	other := p.Create("k")
	ok, err := other.AcquireWriter(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "reader slot must be released after RunReader")
}

func TestAcquireReaderBlockingWaitsOutWriter(t *testing.T) {
	p := newTestProvider()
	writer := p.Create("k")
	reader := p.Create("k", sharedlock.HandleOption{ReaderLimit: 1})

	ok, err := writer.AcquireWriter(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = writer.ReleaseWriter(context.Background())
	}()

	ok, err = reader.AcquireReaderBlocking(context.Background(), sharedlock.BlockingOption{Time: 200 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, ok)
}
