package location

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptor_UnmarshalLegacyString(t *testing.T) {
	// Act
	var d Descriptor
	err := json.Unmarshal([]byte(`"40 Wyckoff Ave, Brooklyn"`), &d)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "40 Wyckoff Ave, Brooklyn", d.Original)
	assert.Equal(t, Kind(""), d.Kind)
	assert.False(t, d.IsResolved())
}

func TestDescriptor_UnmarshalStructuredForm(t *testing.T) {
	// Arrange
	payload := `{
		"original": "the Target in Edison",
		"kind": "landmark",
		"parsed_components": {"business_name": "Target", "city": "Edison", "state": "NJ"},
		"confidence": 0.92,
		"is_via_waypoint": false
	}`

	// Act
	var d Descriptor
	err := json.Unmarshal([]byte(payload), &d)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, KindLandmark, d.Kind)
	assert.Equal(t, "Target", d.Components.BusinessName)
	assert.InDelta(t, 0.92, d.Confidence, 1e-9)
	assert.True(t, d.HasNamedPlace())
	assert.True(t, d.HasRegionContext())
}

func TestDescriptor_UnmarshalMixedBatch(t *testing.T) {
	// Arrange: legacy strings and structured objects in the same array
	payload := `[
		"grand central",
		{"original": "home", "latitude": 40.7, "longitude": -73.9}
	]`

	// Act
	var batch []*Descriptor
	err := json.Unmarshal([]byte(payload), &batch)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, "grand central", batch[0].Original)
	assert.False(t, batch[0].IsResolved())
	assert.True(t, batch[1].IsResolved())
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, Kind("").Valid())
	assert.True(t, KindFullAddress.Valid())
	assert.True(t, KindRelative.Valid())
	assert.False(t, Kind("postal").Valid())
}

func TestDescriptor_DisplayLabel(t *testing.T) {
	assert.Equal(t, "Home", (&Descriptor{Original: "my place", Name: "Home"}).DisplayLabel())
	assert.Equal(t, "my place", (&Descriptor{Original: "my place"}).DisplayLabel())
}
