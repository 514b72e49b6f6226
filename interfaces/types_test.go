package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVhostNameValid(t *testing.T) {
	assert.True(t, VhostName("hello").Valid())
	assert.True(t, VhostName("API").Valid(), "reserved names are case-sensitive")

	assert.False(t, VhostName("").Valid())
	assert.False(t, VhostName("api").Valid())
	assert.False(t, VhostName("ipfs").Valid())
	assert.False(t, VhostName("localhost").Valid())
}

func TestMappingClone(t *testing.T) {
	m := Mapping{"a": "cid-a"}
	clone := m.Clone()
	clone["b"] = "cid-b"

	assert.Len(t, m, 1, "clone mutations must not leak into the original")
	assert.Len(t, clone, 2)
}

func TestMappingDurableRecordFormat(t *testing.T) {
	m := Mapping{"hello": "bafyone", "docs": "bafytwo"}

	// The durable record is a flat JSON object, no envelope.
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"bafyone","docs":"bafytwo"}`, string(data))

	var back Mapping
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestMappingEntriesSorted(t *testing.T) {
	m := Mapping{"zeta": "z", "alpha": "a"}
	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "zeta", entries[1].Name)

	assert.NotNil(t, Mapping{}.Entries(), "empty mapping serializes as [], not null")
}
