package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChainsEntries(t *testing.T) {
	c := NewChainLogger()

	first := c.Append("deposit client=1 tx=1 outcome=applied")
	second := c.Append("withdrawal client=1 tx=2 outcome=insufficient_funds")

	assert.Equal(t, strings.Repeat("0", 64), first.PreviousHash)
	assert.Equal(t, first.Hash, second.PreviousHash)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, first.Seq)
	assert.Equal(t, 1, second.Seq)
	assert.Equal(t, 2, c.Len())
}

func TestVerifyChain(t *testing.T) {
	c := NewChainLogger()
	for _, payload := range []string{"a", "b", "c"} {
		c.Append(payload)
	}

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.True(t, VerifyChain(entries))
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	c := NewChainLogger()
	c.Append("deposit client=1 tx=1 outcome=applied")
	c.Append("dispute client=1 tx=1 outcome=applied")

	entries := c.Entries()
	tampered := *entries[0]
	tampered.Payload = "deposit client=1 tx=1 outcome=account_locked"
	entries[0] = &tampered

	assert.False(t, VerifyChain(entries))
}

func TestVerifyChainDetectsBrokenLink(t *testing.T) {
	a := NewChainLogger()
	b := NewChainLogger()
	a.Append("a1")
	b.Append("b1")

	// Entries from two different chains do not link.
	mixed := append(a.Entries(), b.Entries()...)
	assert.False(t, VerifyChain(mixed))
}

func TestVerifyChainEmpty(t *testing.T) {
	assert.True(t, VerifyChain(nil))
}
