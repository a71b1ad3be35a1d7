package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("kapitan-2026")
	require.NoError(t, err)
	assert.NotEqual(t, "kapitan-2026", h)

	assert.True(t, CheckPassword(h, "kapitan-2026"))
	assert.False(t, CheckPassword(h, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "kapitan-2026"))
}
