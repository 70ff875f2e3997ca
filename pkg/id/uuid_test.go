package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUUID(t *testing.T) {
	a := GetUUID()
	b := GetUUID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestGetUUIDWithoutDashes(t *testing.T) {
	id := GetUUIDWithoutDashes()
	assert.Len(t, id, 32)
	assert.False(t, strings.Contains(id, "-"))
}
