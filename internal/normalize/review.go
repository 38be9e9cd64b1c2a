package normalize

import (
	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/payload"
)

// ReviewFromCard maps one raw review onto the canonical record. Reviewer
// identity may live flat on the card or nested under a reviewer object.
// Returns false when neither rating nor text is present.
func ReviewFromCard(card map[string]any) (domain.Review, bool) {
	reviewer, _ := card["reviewer"].(map[string]any)

	review := domain.Review{
		ReviewerID:      reviewerID(card, reviewer),
		Text:            CleanText(firstString(card, "reviewText", "reviewComment")),
		ReviewerName:    reviewerName(card, reviewer),
		Date:            firstString(card, "createDate", "date"),
		TransactionType: firstString(card, "transactionType", "workType", "workDescription"),
	}
	if rating := firstInt(card, "rating", "overallRating"); rating != nil {
		review.Rating = *rating
	}

	if review.Rating == 0 && review.Text == "" {
		return domain.Review{}, false
	}
	return review, true
}

func reviewerID(card, reviewer map[string]any) string {
	if id := firstString(card, "reviewerZuid"); id != "" {
		return id
	}
	id, _ := payload.String(reviewer["encodedZuid"])
	return id
}

func reviewerName(card, reviewer map[string]any) string {
	if name := firstString(card, "reviewerName", "subHeader"); name != "" {
		return name
	}
	name, _ := payload.String(reviewer["screenName"])
	return name
}
