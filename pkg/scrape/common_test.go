package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemesterIndex(t *testing.T) {
	i, ok := SemesterIndex("א'")
	require.True(t, ok)
	require.Equal(t, 1, i)

	i, ok = SemesterIndex("ב'")
	require.True(t, ok)
	require.Equal(t, 2, i)

	_, ok = SemesterIndex("קיץ")
	require.False(t, ok)
}

func TestSemesterLetters(t *testing.T) {
	token, err := SemesterToken("b")
	require.NoError(t, err)
	require.Equal(t, "ב'", token)

	number, err := SemesterNumber("a")
	require.NoError(t, err)
	require.Equal(t, "1", number)

	_, err = SemesterToken("c")
	require.Error(t, err)
	_, err = SemesterNumber("")
	require.Error(t, err)
}

func TestStripSeparators(t *testing.T) {
	require.Equal(t, "03682157", stripSeparators(" 0368-2157 "))
	require.Equal(t, "10711000", stripSeparators("1071-10-00"))
}
