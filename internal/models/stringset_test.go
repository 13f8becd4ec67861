package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSetMarshalsSorted(t *testing.T) {
	s := NewStringSet("MAT201", "CSE101", "PHY110")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `["CSE101","MAT201","PHY110"]`, string(data))
}

func TestStringSetRoundTrip(t *testing.T) {
	var s StringSet
	require.NoError(t, json.Unmarshal([]byte(`["B","A"]`), &s))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("A"))
	assert.True(t, s.Has("B"))
}

func TestStringSetAddRemove(t *testing.T) {
	s := NewStringSet()
	assert.True(t, s.Add("CSE101"))
	assert.False(t, s.Add("CSE101"))
	assert.True(t, s.Remove("CSE101"))
	assert.False(t, s.Remove("CSE101"))
	assert.Zero(t, s.Len())
}

func TestStringSetCloneIsIndependent(t *testing.T) {
	s := NewStringSet("CSE101")
	clone := s.Clone()
	clone.Add("MAT201")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, clone.Len())
}
