package option

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/gstbill/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type row struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

func openRows(t *testing.T, name string, n int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&row{ID: int64(i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}).Error)
	}
	return db
}

func TestApplyPaginationRejectsMalformedToken(t *testing.T) {
	db := openRows(t, "option_bad_token", 3)

	var rows []row
	err := ApplyPagination(pagination.Pagination{PageToken: "garbage", PageSize: 2}).
		Apply(db.Model(&row{})).
		Find(&rows).Error
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
	assert.Empty(t, rows)

	token, err := pagination.EncodeCursor(pagination.Cursor{ID: "x", CreatedAt: time.Now().Format(time.RFC3339Nano)})
	require.NoError(t, err)
	err = ApplyPagination(pagination.Pagination{PageToken: token}).
		Apply(db.Model(&row{})).
		Find(&rows).Error
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}

func TestApplyPaginationFetchesOneExtraRow(t *testing.T) {
	db := openRows(t, "option_extra_row", 5)

	var rows []row
	err := ApplyPagination(pagination.Pagination{PageSize: 2}).
		Apply(db.Model(&row{}).Order("created_at desc, id desc")).
		Find(&rows).Error
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWithLimit(t *testing.T) {
	db := openRows(t, "option_limit", 4)

	var rows []row
	require.NoError(t, WithLimit(2).Apply(db.Model(&row{})).Find(&rows).Error)
	assert.Len(t, rows, 2)

	require.NoError(t, WithLimit(0).Apply(db.Model(&row{})).Find(&rows).Error)
	assert.Len(t, rows, 4)
}

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NormalizePageSize(0))
	assert.Equal(t, MaxPageSize, NormalizePageSize(MaxPageSize+1))
	assert.Equal(t, 7, NormalizePageSize(7))
}
