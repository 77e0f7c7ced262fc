package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	assert.True(t, strings.HasPrefix(id, PrefixSession+"_"), id)
	require.NoError(t, Validate(id, PrefixSession))
	assert.NotEqual(t, id, NewSessionID())
}

func TestValidateRejects(t *testing.T) {
	assert.Error(t, Validate(NewClientID(), PrefixSession))
	assert.Error(t, Validate("not-an-id", PrefixSession))
	assert.Error(t, Validate("", PrefixSession))
}
