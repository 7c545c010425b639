package key_test

import (
	"testing"

	"github.com/lattice-sync/lattice/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k := key.New("a", "b", "c")
	assert.Equal(t, "a/b/c", k.String())
	assert.True(t, k.Equal(key.New("a", "b", "c")))
	assert.False(t, k.Equal(key.New("a", "b")))

	k2 := k.Append("d")
	assert.Equal(t, "a/b/c/d", k2.String())
	assert.Equal(t, "a/b/c", k.String(), "Append must not mutate the receiver")
}

func TestParseRejectsEmptySegment(t *testing.T) {
	_, err := key.Parse("a", "", "c")
	require.ErrorIs(t, err, key.ErrEmptySegment)
}

func TestNamespaceQualify(t *testing.T) {
	ns := key.NewNamespace("lock", "orders")
	assert.Equal(t, "lock/orders/42", ns.Qualify("42").String())
}
