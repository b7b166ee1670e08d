package persist

import (
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestInsertIgnoringDupes(t *testing.T) {
	var inserted []interface{}
	tx := InsertFunc(func(list ...interface{}) error {
		for _, row := range list {
			if row == "dupe" {
				return sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
			}
			inserted = append(inserted, row)
		}
		return nil
	})

	err := InsertIgnoringDupes(tx).Insert("a", "dupe", "b")
	require.NoError(t, err)
	require.Equal(t, []interface{}{"a", "b"}, inserted)
}

func TestInsertIgnoringDupesKeepsOtherErrors(t *testing.T) {
	boom := errors.New("disk full")
	tx := InsertFunc(func(list ...interface{}) error {
		return boom
	})

	err := InsertIgnoringDupes(tx).Insert("a")
	require.ErrorIs(t, err, boom)
}
