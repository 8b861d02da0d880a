package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int }

func TestBuildCursorPageInfo(t *testing.T) {
	rows := []*row{{1}, {2}, {3}}
	page, info := BuildCursorPageInfo(rows, 2, func(r *row) string { return strconv.Itoa(r.id) })
	require.Len(t, page, 2)
	assert.True(t, info.HasMore)

	cursor, err := DecodeCursor(info.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, "2", cursor.ID)

	page, info = BuildCursorPageInfo(rows, 3, func(r *row) string { return strconv.Itoa(r.id) })
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestDecodeCursor(t *testing.T) {
	cursor, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, cursor)

	_, err = DecodeCursor("!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 20, Pagination{}.Limit(20, 100))
	assert.Equal(t, 100, Pagination{PageSize: 500}.Limit(20, 100))
	assert.Equal(t, 5, Pagination{PageSize: 5}.Limit(20, 100))
}

func TestDecodeCursorID(t *testing.T) {
	id, err := DecodeCursorID("")
	require.NoError(t, err)
	assert.Zero(t, id)

	token, err := EncodeCursor(Cursor{ID: "42"})
	require.NoError(t, err)
	id, err = DecodeCursorID(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	token, err = EncodeCursor(Cursor{ID: "abc"})
	require.NoError(t, err)
	_, err = DecodeCursorID(token)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
