package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo(t *testing.T) {
	v := "done"
	p := To(v)
	require.NotNil(t, p)
	assert.Equal(t, "done", *p)

	v = "changed"
	assert.Equal(t, "done", *p, "To must copy its argument")
}

func TestDeref(t *testing.T) {
	assert.Equal(t, 7, Deref(To(7), 3))
	assert.Equal(t, 3, Deref[int](nil, 3))
}

func TestNonBlank(t *testing.T) {
	assert.Nil(t, NonBlank(""))
	assert.Nil(t, NonBlank("  \t"))
	require.NotNil(t, NonBlank(" milk "))
	assert.Equal(t, " milk ", *NonBlank(" milk "))
}
