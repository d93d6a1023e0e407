package patcherr

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomy(t *testing.T) {
	err := fmt.Errorf("unable to patch 'a.wav': %w", Format("no %q chunk", "data"))
	assert.True(t, IsFormat(err))
	assert.False(t, IsAlignment(err))
	assert.Equal(t, `unable to patch 'a.wav': format error: no "data" chunk`, err.Error())

	err = IO("unable to read: %w", io.ErrUnexpectedEOF)
	assert.True(t, IsIO(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.True(t, IsAlignment(Alignment("marker not found")))
	assert.True(t, IsMatch(Match("no match")))
	assert.False(t, IsMatch(nil))
}
