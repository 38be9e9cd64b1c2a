package scrape

import (
	"context"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// reviewListStrategies locate the review list in the profile payload.
var reviewListStrategies = []payload.PathStrategy{
	{Name: "flat", Path: []string{"reviews"}},
	{Name: "flat-list", Path: []string{"reviewsList"}},
	{Name: "reviews-data", Path: []string{"reviewsData", "reviews"}},
}

// reviewTotalStrategies locate the total review count, tried in order.
var reviewTotalStrategies = []payload.PathStrategy{
	{Name: "reviews-data-total", Path: []string{"reviewsData", "totalCount"}},
	{Name: "reviews-data-count", Path: []string{"reviewsData", "reviewCount"}},
	{Name: "display-user", Path: []string{"displayUser", "ratings", "count"}},
	{Name: "graphql", Path: []string{"graphQLData", "professional", "reviewRatings", "count"}},
}

// Reviews scrapes the reviews sub-page of an agent profile.
func (s *Agents) Reviews(ctx context.Context, ref string, page int) (domain.ResultPage[domain.Review], error) {
	target, err := profileURL(ref, "/reviews/")
	if err != nil {
		return domain.ResultPage[domain.Review]{}, err
	}
	if page > 1 {
		target += "?page=" + strconv.Itoa(page)
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.ResultPage[domain.Review]{}, err
	}

	var reviews []domain.Review
	total := 0

	if root, ok := payload.Locate(doc); ok {
		if cards, _ := payload.FirstList(root, reviewListStrategies); cards != nil {
			reviews = reviewsFromCards(cards)
		}
		for _, strategy := range reviewTotalStrategies {
			if n, ok := payload.Int(payload.Dig(root, strategy.Path...)); ok && n > 0 {
				total = int(n)
				break
			}
		}
	}

	if len(reviews) == 0 {
		reviews = reviewsFromMarkup(doc)
	}
	if len(reviews) == 0 {
		return domain.ResultPage[domain.Review]{}, scrapeerr.NotFoundf("no reviews found at %s", target)
	}

	s.log.Info("agent reviews parsed", "ref", ref, "reviews", len(reviews), "total", total)

	result := domain.NewResultPage(reviews, total, page, domain.DefaultPerPage)
	result.SourceURL = target
	return result, nil
}

func reviewsFromCards(cards []any) []domain.Review {
	var reviews []domain.Review
	for _, raw := range cards {
		card, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if review, ok := normalize.ReviewFromCard(card); ok {
			reviews = append(reviews, review)
		}
	}
	return reviews
}

// reviewsFromMarkup builds minimal reviews from visible cards.
func reviewsFromMarkup(doc *goquery.Document) []domain.Review {
	var reviews []domain.Review
	doc.Find(`[data-test="review-card"], .review-card`).Each(func(_ int, card *goquery.Selection) {
		review := domain.Review{
			Text: normalize.CleanText(card.Find(`[data-test="review-text"], .review-text`).First().Text()),
		}
		ratingText := card.Find(`[data-test="rating"], .rating`).First().Text()
		if n := normalize.CleanNumber(ratingText); n != nil {
			review.Rating = *n
		}
		if review.Rating != 0 || review.Text != "" {
			reviews = append(reviews, review)
		}
	})
	return reviews
}
