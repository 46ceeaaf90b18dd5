package database_test

import (
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/stretchr/testify/require"
)

func TestTotalCount(t *testing.T) {
	require := require.New(t)
	db, err := OpenInMemory()
	require.NoError(err)
	defer db.Close()
	require.NoError(db.AutoMigrate(&amountRow{}).Error)

	for i := uint(1); i <= 5; i++ {
		require.NoError(db.Create(&amountRow{ID: i, Amount: AmountFromUint64(uint64(i))}).Error)
	}

	p := PaginationParams{Limit: 2, Offset: 1}
	q, err := SimplePagination(db.Model(&amountRow{}), *p.Default(10, "desc", "id"))
	require.NoError(err)
	var rows []amountRow
	require.NoError(q.Find(&rows).Error)
	require.Len(rows, 2)
	require.Equal(uint(4), rows[0].ID)

	total, err := TotalCount(q)
	require.NoError(err)
	require.Equal(5, total)

	// A count that cannot run must not look like an empty table
	_, err = TotalCount(db.Table("no_such_table"))
	require.Error(err)
}

func TestSimplePagination_Rejects(t *testing.T) {
	require := require.New(t)
	db, err := OpenInMemory()
	require.NoError(err)
	defer db.Close()

	_, err = SimplePagination(db, PaginationParams{Order: "sideways", OrderBy: "id"})
	require.Error(err)
	_, err = SimplePagination(db, PaginationParams{Order: "asc", OrderBy: "id; drop table x"})
	require.Error(err)
	_, err = SimplePagination(db, PaginationParams{Order: "asc", OrderBy: "id", Offset: -1})
	require.Error(err)
}
