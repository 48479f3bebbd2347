package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewReader(strings.NewReader("  0xabc \nsecond"), &out)

	got, err := p.Ask("Contract address:")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", got)
	assert.Equal(t, "Contract address: ", out.String())

	// last line without newline is still an answer
	got, err = p.AskSecret("Key:")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = p.Ask("More?")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestScript(t *testing.T) {
	s := NewScript(" y ", "n")

	a, err := s.Ask("one")
	require.NoError(t, err)
	assert.Equal(t, "y", a)

	a, err = s.AskSecret("two")
	require.NoError(t, err)
	assert.Equal(t, "n", a)

	_, err = s.Ask("three")
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Equal(t, []string{"one", "two", "three"}, s.Asked)
}
