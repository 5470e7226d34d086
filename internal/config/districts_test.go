package config

import (
	"testing"

	"school-job-scout/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const districtsJSON = `{
  "schools": [
    {"name": "Example SD", "type": "Other", "url": "http://x/jobs"},
    {"name": "Easton Area School District", "type": "PAEducator", "url": "https://www.paeducator.net/Search", "paeducator_filter": "Easton Area"},
    {"name": "River Valley SD", "type": "Multiple", "urls": [
      {"type": "AppliTrack", "url": "https://a"},
      {"type": "PowerSchool", "url": "https://p"}
    ]}
  ]
}`

func TestLoadDistricts_JSON(t *testing.T) {
	ds, err := LoadDistricts(writeFile(t, "config.json", districtsJSON))

	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, []Portal{{Type: Other, URL: "http://x/jobs"}}, ds[0].Targets())
	assert.Equal(t, "Easton Area", ds[1].Filter())
	assert.Equal(t, []Portal{{Type: AppliTrack, URL: "https://a"}, {Type: PowerSchool, URL: "https://p"}}, ds[2].Targets())
}

func TestLoadDistricts_Errors(t *testing.T) {
	_, err := LoadDistricts(writeFile(t, "empty.json", `{"schools": []}`))
	assert.ErrorIs(t, err, ErrNoDistricts)

	_, err = LoadDistricts("/does/not/exist.json")
	assert.Error(t, err)
}

func TestDistrictValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       District
		wantErr bool
	}{
		{"ok", District{Name: "A", Type: PowerSchool, URL: "https://p"}, false},
		{"no name", District{Type: PowerSchool, URL: "https://p"}, true},
		{"unknown type", District{Name: "A", Type: "Workday", URL: "https://w"}, true},
		{"no url", District{Name: "A", Type: Other}, true},
		{"multiple without portals", District{Name: "A", Type: Multiple}, true},
		{"nested multiple", District{Name: "A", Type: Multiple, Portals: []Portal{{Type: Multiple, URL: "https://m"}}}, true},
		{"multiple ok", District{Name: "A", Type: Multiple, Portals: []Portal{{Type: SchoolSpring, URL: "https://s"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDistrict)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMatchDistricts(t *testing.T) {
	ds := []District{{Name: "Easton Area SD"}, {Name: "Bethlehem Area SD"}, {Name: "Example SD"}}

	assert.Len(t, MatchDistricts(ds, "area"), 2)
	assert.Equal(t, "Example SD", MatchDistricts(ds, " EXAMPLE ")[0].Name)
	assert.Empty(t, MatchDistricts(ds, "nowhere"))
}

func TestPortalSource(t *testing.T) {
	s, ok := PAEducator.Source()
	assert.True(t, ok)
	assert.Equal(t, scraper.SourcePAEducator, s)

	_, ok = Multiple.Source()
	assert.False(t, ok)
}
