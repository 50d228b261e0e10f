package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFeatures_DropsEmptyColumnsAndTypes(t *testing.T) {
	x := Features{
		"load": {"p_mw": {1, 2}, "q_mvar": {}},
		"gen":  {"p_mw": {}},
	}

	CleanFeatures(x)

	assert.Equal(t, Features{"load": {"p_mw": {1, 2}}}, x)
	assert.NotContains(t, x, "gen", "type with only empty columns should be removed")
}

func TestCleanAddresses_DropsEmptyColumnsAndTypes(t *testing.T) {
	a := Addresses{
		"line": {"from_bus": {0, 1}, "to_bus": {}},
		"bus":  {},
	}

	CleanAddresses(a)

	assert.Equal(t, Addresses{"line": {"from_bus": {0, 1}}}, a)
}

func TestClone_SharesNoBackingArrays(t *testing.T) {
	x := Features{"bus": {"vn_kv": {110, 110}}}

	c := x.Clone()
	c["bus"]["vn_kv"][0] = 20

	assert.Equal(t, float32(110), x["bus"]["vn_kv"][0], "mutating the clone must not touch the original")
}

func TestLengths(t *testing.T) {
	x := Features{
		"load": {"p_mw": {1, 2, 3}},
		"bus":  {},
	}

	lengths := x.Lengths()

	assert.Equal(t, 3, lengths["load"])
	assert.Equal(t, 0, lengths["bus"])
}

func TestCollate_ConcatenatesPerKeyInBatchOrder(t *testing.T) {
	batch := []Features{
		{"load": {"p_mw": {1, 2}}},
		{"load": {"p_mw": {3}}, "gen": {"vm_pu": {1.02}}},
		{"load": {"q_mvar": {7}}},
	}

	all := Collate(batch)

	assert.Equal(t, []float32{1, 2, 3}, all["load"]["p_mw"])
	assert.Equal(t, []float32{7}, all["load"]["q_mvar"])
	assert.Equal(t, []float32{1.02}, all["gen"]["vm_pu"])
}

func TestEncodeAddresses_SharedLookupAcrossColumns(t *testing.T) {
	raw := RawAddresses{
		"bus":  {"id": {"0", "1", "2"}},
		"load": {"bus": {"2", "0"}, "name": {"load_0", "load_1"}},
	}

	enc := EncodeAddresses(raw)

	// The code assigned to bus id "2" must be the code the load's bus
	// column uses to reference it.
	require.Len(t, enc["bus"]["id"], 3)
	assert.Equal(t, enc["bus"]["id"][2], enc["load"]["bus"][0])
	assert.Equal(t, enc["bus"]["id"][0], enc["load"]["bus"][1])

	// All codes within the instance are dense: 0..n-1.
	seen := map[int]bool{}
	for _, cols := range enc {
		for _, col := range cols {
			for _, c := range col {
				seen[c] = true
			}
		}
	}
	for i := 0; i < len(seen); i++ {
		assert.True(t, seen[i], "code %d missing from dense range", i)
	}
}

func TestEncodeAddresses_DeterministicAcrossCalls(t *testing.T) {
	raw := RawAddresses{
		"load": {"bus": {"b", "a", "b"}},
		"gen":  {"bus": {"c", "a"}},
	}

	first := EncodeAddresses(raw)
	second := EncodeAddresses(raw)

	assert.Equal(t, first, second)
}
