package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelectionEnums_UnknownMeansAll(t *testing.T) {
	assert.Equal(t, IgnoreAll, ParseIgnoreFilter("whatever"))
	assert.Equal(t, ContentAll, ParseContentFilter(""))
	assert.Equal(t, RatingAll, ParseRatingStatus("sometimes"))
	assert.Equal(t, SortNameAsc, ParseSortKey("random"))
}

func TestParseSelectionEnums(t *testing.T) {
	assert.Equal(t, IgnoreOnly, ParseIgnoreFilter("ignored-only"))
	assert.Equal(t, IgnoreNotIgnored, ParseIgnoreFilter("Not Ignored Only"))
	assert.Equal(t, ContentCanon, ParseContentFilter("canon_only"))
	assert.Equal(t, ContentFillers, ParseContentFilter("fillers"))
	assert.Equal(t, RatingRated, ParseRatingStatus("rated"))
	assert.Equal(t, RatingUnrated, ParseRatingStatus("UNRATED-ONLY"))
	assert.Equal(t, SortNameDesc, ParseSortKey("alphabetical-za"))
	assert.Equal(t, SortDifficultyAsc, ParseSortKey("difficulty-easy-hard"))
	assert.Equal(t, SortDifficultyDesc, ParseSortKey("hard-easy"))
}
