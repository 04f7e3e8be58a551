package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFallbackRecords_SuffixAfterWrap(t *testing.T) {
	records := FallbackRecords("cardiac", 7, fixedNow)

	require.Len(t, records, 7)
	assert.Equal(t, "Heart Care", records[0].Headline)
	assert.Equal(t, "Cardiac Excellence", records[5].Headline)
	assert.Equal(t, "Heart Care 2", records[6].Headline)
	for _, r := range records {
		assert.Equal(t, "cardiac", r.Specialty)
		assert.Equal(t, SourceFallback, r.Source)
		assert.Equal(t, "2024-03-01T12:00:00Z", r.Generated)
		assert.NotEmpty(t, r.Body)
		assert.NotEmpty(t, r.CTA)
		assert.NotEmpty(t, r.Theme)
	}
}

func TestFallbackRecords_ThirdCycle(t *testing.T) {
	records := FallbackRecords("emergency", 13, fixedNow)

	assert.Equal(t, "Emergency Care 3", records[12].Headline)
}

func TestFallbackRecords_UnknownSpecialtyUsesGeneral(t *testing.T) {
	records := FallbackRecords("cross-specialty", 2, fixedNow)

	require.Len(t, records, 2)
	assert.Equal(t, "Medical Care", records[0].Headline)
	assert.Equal(t, "cross-specialty", records[0].Specialty)
}

func TestFallbackRecords_NonPositiveCount(t *testing.T) {
	assert.Empty(t, FallbackRecords("general", 0, fixedNow))
	assert.Empty(t, FallbackRecords("general", -3, fixedNow))
}

func TestParseBatch(t *testing.T) {
	raw := `Sure! Here are the variations:
[
  {"headline": "Heart Check", "body": "Screenings that catch problems early.", "cta": "Book", "theme": "cardiac"},
  {"headline": "Rehab Plans", "body": "Recovery built around you.", "cta": "Start", "theme": "recovery", "specialty": "rehab"}
]
Let me know if you need more.`

	records, err := ParseBatch(raw, "cardiac")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Heart Check", records[0].Headline)
	assert.Equal(t, "cardiac", records[0].Specialty)
	assert.Equal(t, "rehab", records[1].Specialty)
	assert.Equal(t, SourceGenerated, records[0].Source)
}

func TestParseBatch_NoArray(t *testing.T) {
	_, err := ParseBatch("I can't do that.", "general")

	assert.ErrorIs(t, err, ErrNoBatchJSON)
}

func TestParseBatch_InvalidJSON(t *testing.T) {
	_, err := ParseBatch(`[{"headline": "x",}]`, "general")

	assert.Error(t, err)
}
