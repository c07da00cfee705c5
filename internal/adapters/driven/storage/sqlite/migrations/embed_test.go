package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter_Embedded(t *testing.T) {
	all, err := After(0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Contains(t, all[0].SQL, "CREATE TABLE")

	none, err := After(all[len(all)-1].Version)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAfter_OrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("ten")},
		"002_second.up.sql":   {Data: []byte("two")},
		"001_first.up.sql":    {Data: []byte("one")},
		"002_second.down.sql": {Data: []byte("undo")},
		"notes.up.sql":        {Data: []byte("ignored")},
	}

	got, err := after(fsys, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Migration{Version: 2, Name: "002_second.up.sql", SQL: "two"}, got[0])
	assert.Equal(t, 10, got[1].Version)
}
