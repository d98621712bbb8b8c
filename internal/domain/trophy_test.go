package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrophyPatch_ApplyClearsOptionalFields(t *testing.T) {
	weight, temp, bait := 2.5, 18.0, "jig"
	tr := &Trophy{Species: "bass", Weight: &weight, WaterTemp: &temp, Bait: &bait}

	TrophyPatch{Clear: []string{"weight", "bait"}}.Apply(tr)

	assert.Nil(t, tr.Weight)
	assert.Nil(t, tr.Bait)
	if assert.NotNil(t, tr.WaterTemp) {
		assert.Equal(t, 18.0, *tr.WaterTemp)
	}
	assert.Equal(t, "bass", tr.Species)
}

func TestTrophyPatch_Check(t *testing.T) {
	w := 1.0
	cases := []struct {
		name  string
		patch TrophyPatch
		want  map[string]string
	}{
		{"empty", TrophyPatch{}, nil},
		{"clear ok", TrophyPatch{Clear: []string{"weight", "water_temp", "bait"}}, nil},
		{"unknown field", TrophyPatch{Clear: []string{"species"}}, map[string]string{"clear.species": "not clearable"}},
		{"set and cleared", TrophyPatch{Weight: &w, Clear: []string{"weight"}}, map[string]string{"clear.weight": "set and cleared"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.patch.Check())
		})
	}
}
