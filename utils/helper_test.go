package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, dateOnly, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, dateOnly, err = ParseDate("2024-03-05T10:30:00Z")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, 10, d.Hour())

	_, _, err = ParseDate("05/03/2024")
	assert.Error(t, err)
	_, _, err = ParseDate(" ")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	d := EndOfDay(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, 23, d.Hour())
	assert.Equal(t, 5, d.Day())
	assert.True(t, d.Before(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
}

func TestDereferencePtr(t *testing.T) {
	n := 7
	assert.Equal(t, 7, DereferencePtr(&n))
	assert.Equal(t, 0, DereferencePtr[int](nil))
	assert.Equal(t, 3, DereferencePtr[int](nil, 3))
}
