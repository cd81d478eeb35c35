package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendBoundedKeepsNewest(t *testing.T) {
	var history JSON
	var err error

	for i := 1; i <= MaxHistoryEntries+5; i++ {
		history, err = AppendBounded(history, SearchEntry{Query: fmt.Sprintf("q%d", i), At: time.Unix(int64(i), 0).UTC()}, MaxHistoryEntries)
		require.NoError(t, err)
	}

	entries, err := DecodeList[SearchEntry](history)
	require.NoError(t, err)
	require.Len(t, entries, MaxHistoryEntries)
	assert.Equal(t, "q6", entries[0].Query)
	assert.Equal(t, fmt.Sprintf("q%d", MaxHistoryEntries+5), entries[len(entries)-1].Query)
}

func TestDecodeListEmpty(t *testing.T) {
	entries, err := DecodeList[ClickEntry](JSON{})
	require.NoError(t, err)
	assert.Nil(t, entries)

	v, err := JSON{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestDecodeListCorrupt(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"not":"a list"}`)))

	_, err := DecodeList[ClickEntry](j)
	assert.Error(t, err)
}

func TestPreferenceIDs(t *testing.T) {
	p := Preference{
		Brands: []Brand{{ID: 3}, {ID: 1}},
		Types:  []CarType{{ID: 2}},
	}
	assert.Equal(t, []uint64{3, 1}, p.BrandIDs())
	assert.Equal(t, []uint64{2}, p.TypeIDs())
}
