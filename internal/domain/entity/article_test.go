package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArticle_Struct(t *testing.T) {
	now := time.Now()

	article := Article{
		Link:       "https://example.com/article",
		Title:      "Test Article",
		Summary:    "This is a test article summary",
		Date:       now,
		OriginType: OriginRaw,
		Tier:       TierP2Raw,
		SourceName: "Example Feed",
	}

	assert.Equal(t, "https://example.com/article", article.Link)
	assert.Equal(t, "Test Article", article.Title)
	assert.Equal(t, "This is a test article summary", article.Summary)
	assert.Equal(t, now, article.Date)
	assert.Equal(t, OriginRaw, article.OriginType)
	assert.Equal(t, TierP2Raw, article.Tier)
	assert.Equal(t, "Example Feed", article.SourceName)
}

func TestArticle_ZeroValue(t *testing.T) {
	var article Article

	assert.Equal(t, "", article.Link)
	assert.Equal(t, "", article.Title)
	assert.Equal(t, "", article.Summary)
	assert.True(t, article.Date.IsZero())
	assert.False(t, article.HasResolvableLink())
	assert.Nil(t, article.Evaluate)
}

func TestArticle_PartialInitialization(t *testing.T) {
	article := Article{
		Title: "Partial Article",
		Link:  "https://example.com/partial",
	}

	assert.Equal(t, "Partial Article", article.Title)
	assert.Equal(t, "https://example.com/partial", article.Link)
	assert.Equal(t, "", article.Summary)
	assert.True(t, article.Date.IsZero())
	assert.True(t, article.HasResolvableLink())
}

func TestArticle_WithAllFields(t *testing.T) {
	date := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	article := Article{
		Link:       "https://example.com/complete",
		Title:      "Complete Article",
		Summary:    "A complete article with all fields populated",
		CoverURL:   "https://example.com/cover.png",
		Date:       date,
		OriginType: OriginCurated,
		Tier:       TierP0Curated,
		Confidence: 0.9,
		Category:   "model",
		SourceName: "Curated Feed",
	}

	assert.NotEmpty(t, article.Link)
	assert.NotEmpty(t, article.Title)
	assert.NotEmpty(t, article.Summary)
	assert.False(t, article.Date.IsZero())

	assert.Equal(t, "https://example.com/complete", article.Link)
	assert.Equal(t, "Complete Article", article.Title)
	assert.Equal(t, "A complete article with all fields populated", article.Summary)
	assert.Equal(t, date, article.Date)
	assert.Equal(t, OriginCurated, article.OriginType)
	assert.Equal(t, TierP0Curated, article.Tier)
}

func TestArticle_Comparison(t *testing.T) {
	now := time.Now()

	article1 := Article{
		Link:    "https://example.com/1",
		Title:   "Article 1",
		Summary: "Summary 1",
		Date:    now,
	}

	article2 := Article{
		Link:    "https://example.com/1",
		Title:   "Article 1",
		Summary: "Summary 1",
		Date:    now,
	}

	article3 := Article{
		Link:    "https://example.com/2",
		Title:   "Article 2",
		Summary: "Summary 2",
		Date:    now,
	}

	assert.Equal(t, article1, article2)
	assert.NotEqual(t, article1, article3)
}

func TestArticle_Mutability(t *testing.T) {
	article := Article{
		Link:  "https://example.com/original",
		Title: "Original Title",
	}

	assert.Equal(t, "Original Title", article.Title)
	assert.Equal(t, "https://example.com/original", article.Link)

	article.Title = "Updated Title"
	article.Link = "https://example.com/updated"
	article.Summary = "New summary"

	assert.Equal(t, "Updated Title", article.Title)
	assert.Equal(t, "https://example.com/updated", article.Link)
	assert.Equal(t, "New summary", article.Summary)
}

func TestArticle_HasResolvableLink(t *testing.T) {
	withLink := Article{Link: "https://example.com/a"}
	withoutLink := Article{}

	assert.True(t, withLink.HasResolvableLink())
	assert.False(t, withoutLink.HasResolvableLink())
}

func TestArticle_LongContent(t *testing.T) {
	longTitle := string(make([]byte, 1000))
	longLink := "https://example.com/" + string(make([]byte, 500))
	longSummary := string(make([]byte, 5000))

	article := Article{
		Title:   longTitle,
		Link:    longLink,
		Summary: longSummary,
	}

	assert.Len(t, article.Title, 1000)
	assert.Greater(t, len(article.Link), 500)
	assert.Len(t, article.Summary, 5000)
}

func TestEvaluation_InsightFields(t *testing.T) {
	eval := Evaluation{
		WhyItMatters:  "matters",
		KeyEvidence:   "evidence",
		WhoShouldCare: "who",
		NextAction:    "action",
		Comparison:    "compare",
	}

	fields := eval.InsightFields()
	assert.Equal(t, [5]string{"matters", "evidence", "who", "action", "compare"}, fields)
}

func TestTier_Priority(t *testing.T) {
	assert.Less(t, TierP0Curated.Priority(), TierP0Release.Priority())
	assert.Less(t, TierP1Context.Priority(), TierP2Raw.Priority())
	assert.Less(t, TierP2Raw.Priority(), TierCommunity.Priority())
	assert.Equal(t, len(map[Tier]int{TierP0Curated: 0, TierP0Release: 1, TierP1Context: 2, TierP2Raw: 3, TierCommunity: 4}), Tier("unknown").Priority())
}
