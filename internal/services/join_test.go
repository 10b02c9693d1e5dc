package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"election-dashboard/internal/models"
)

func feature(fid int, name, state string) *models.Constituency {
	return &models.Constituency{
		FID:      fid,
		Name:     NormalizeName(name),
		State:    state,
		JoinKey:  JoinKey(name),
		StateKey: JoinKey(state),
	}
}

func TestJoinYearExactMatch(t *testing.T) {
	features := []*models.Constituency{
		feature(0, "AMETHI", "Uttar Pradesh"),
		feature(1, "Nagina (SC)", "Uttar Pradesh"),
		feature(2, "Nowhere", "Uttar Pradesh"),
	}
	amethi := winner("Uttar Pradesh", 2019, "Amethi", "Smriti Irani", "BJP", 55)
	amethi.MarginPct = floatPtr(5.6)
	amethi.MarginBucket = "5-10"
	nagina := winner("Uttar Pradesh", 2019, "Nagina", "Girish Chandra", "BSP", 63)
	nagina.MarginBucket = GrayBucket

	entries := JoinYear(features, []models.ResultRecord{amethi, nagina}, false)
	require.Len(t, entries, 3)

	assert.Equal(t, models.MapEntry{
		FID:           0,
		PcName:        "Amethi",
		Party:         "BJP",
		CandidateName: "Smriti Irani",
		MarginPct:     floatPtr(5.6),
		MarginBucket:  "5-10",
		Matched:       true,
	}, entries[0])

	assert.True(t, entries[1].Matched)
	assert.Equal(t, "BSP", entries[1].Party)

	assert.False(t, entries[2].Matched)
	assert.Equal(t, OtherParty, entries[2].Party)
	assert.Equal(t, GrayBucket, entries[2].MarginBucket)
	assert.Equal(t, 2, entries[2].FID)
}

func TestJoinYearPrefersFeatureState(t *testing.T) {
	features := []*models.Constituency{
		feature(0, "Aurangabad", "Bihar"),
		feature(1, "Aurangabad", "Maharashtra"),
	}
	rows := []models.ResultRecord{
		winner("Maharashtra", 2019, "Aurangabad", "Imtiaz Jaleel", "AIMIM", 63),
		winner("Bihar", 2019, "Aurangabad", "Sushil Kumar Singh", "BJP", 53),
	}

	entries := JoinYear(features, rows, false)
	assert.Equal(t, "BJP", entries[0].Party)
	assert.Equal(t, "AIMIM", entries[1].Party)
}

func TestJoinYearEmptyYear(t *testing.T) {
	features := []*models.Constituency{feature(0, "Amethi", "Uttar Pradesh")}

	entries := JoinYear(features, nil, true)
	require.Len(t, entries, 1)
	assert.Equal(t, OtherParty, entries[0].Party)
	assert.Equal(t, GrayBucket, entries[0].MarginBucket)
	assert.False(t, entries[0].Matched)
}

func TestJoinYearFuzzyFallback(t *testing.T) {
	features := []*models.Constituency{
		feature(0, "Mumbai North West", "Maharashtra"),
		feature(1, "Nagar", "Maharashtra"),
	}
	rows := []models.ResultRecord{
		winner("Maharashtra", 2019, "Mumbai Northwest", "Gajanan Kirtikar", "Shiv Sena", 54),
		winner("Maharashtra", 2019, "Nagara", "a", "BJP", 60),
		winner("Maharashtra", 2019, "Nagare", "b", "INC", 60),
	}

	exact := JoinYear(features, rows, false)
	assert.False(t, exact[0].Matched)
	assert.False(t, exact[1].Matched)

	entries := JoinYear(features, rows, true)
	assert.True(t, entries[0].Matched)
	assert.Equal(t, "Shiv Sena", entries[0].Party)
	// two equally good candidates: left unmatched
	assert.False(t, entries[1].Matched)
	assert.Equal(t, OtherParty, entries[1].Party)
}

func TestJoinYearFuzzyRespectsState(t *testing.T) {
	features := []*models.Constituency{feature(0, "Mumbai North West", "Maharashtra")}
	rows := []models.ResultRecord{
		winner("Gujarat", 2019, "Mumbai Northwest", "x", "BJP", 54),
	}

	entries := JoinYear(features, rows, true)
	assert.False(t, entries[0].Matched)
}
