package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsNonEmptyAndUnique(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.False(t, a.IsEmpty())
	assert.NotEqual(t, a, b)
}

func TestParseResearchID(t *testing.T) {
	id, err := ParseResearchID("0198c1a2-5b77-7cde-8f00-1234567890ab")
	require.NoError(t, err)
	assert.Equal(t, "0198c1a2-5b77-7cde-8f00-1234567890ab", id.String())

	_, err = ParseResearchID("")
	assert.Error(t, err)

	_, err = ParseResearchID("   ")
	assert.Error(t, err, "whitespace-only ids are rejected")
}

func TestParseItemID(t *testing.T) {
	raw := NewID().String()
	id, err := ParseItemID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, id.String())

	_, err = ParseItemID("")
	assert.Error(t, err)
}
