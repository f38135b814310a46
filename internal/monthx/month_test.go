package monthx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidMonth(t *testing.T) {
	assert.True(t, ValidMonth("2024-03"))
	assert.False(t, ValidMonth("2024-13"))
	assert.False(t, ValidMonth("2024-3"))
	assert.False(t, ValidMonth(""))
	assert.False(t, ValidMonth("March 2024"))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-03-05"))
	assert.False(t, ValidDate("2024-02-30"))
	assert.False(t, ValidDate("2024-03"))
	assert.False(t, ValidDate(""))
}

func TestOfDate(t *testing.T) {
	assert.Equal(t, "2024-03", OfDate("2024-03-05"))
	assert.Equal(t, "", OfDate("short"))
}

func TestPrev(t *testing.T) {
	prev, err := Prev("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", prev)

	prev, err = Prev("2024-01")
	require.NoError(t, err)
	assert.Equal(t, "2023-12", prev)

	_, err = Prev("bogus")
	assert.Error(t, err)
}

func TestDays(t *testing.T) {
	for month, want := range map[string]int{
		"2024-02": 29, // leap
		"2023-02": 28,
		"2024-04": 30,
		"2024-12": 31,
	} {
		got, err := Days(month)
		require.NoError(t, err)
		assert.Equal(t, want, got, month)
	}
}

func TestRebase(t *testing.T) {
	got, err := Rebase("2024-02-15", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", got)

	// day-of-month clamped to the target month's length
	got, err = Rebase("2024-01-31", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	_, err = Rebase("bogus", "2024-03")
	assert.Error(t, err)
}
