package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/normalize"
)

func TestCleanPrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234,567", 1234567, true},
		{"1234567", 1234567, true},
		{"$2,500/mo", 2500, true},
		{"$1.5", 1.5, true},
		{"", 0, false},
		{"call for price", 0, false},
	}

	for _, tc := range cases {
		got := normalize.CleanPrice(tc.in)
		if !tc.ok {
			assert.Nil(t, got, "input %q", tc.in)
			continue
		}
		require.NotNil(t, got, "input %q", tc.in)
		assert.Equal(t, tc.want, *got, "input %q", tc.in)
	}
}

func TestCleanNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3 beds", 3, true},
		{"2,500 sqft", 2500, true},
		{"(1595)", 1595, true},
		{"no digits", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got := normalize.CleanNumber(tc.in)
		if !tc.ok {
			assert.Nil(t, got, "input %q", tc.in)
			continue
		}
		require.NotNil(t, got, "input %q", tc.in)
		assert.Equal(t, tc.want, *got, "input %q", tc.in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Great agent, highly recommend",
		normalize.CleanText("<p>Great   agent,\n  highly <b>recommend</b></p>"))
	assert.Equal(t, "plain text", normalize.CleanText("  plain\ttext  "))
	assert.Empty(t, normalize.CleanText(""))
}

func TestZPIDFromURL(t *testing.T) {
	id := normalize.ZPIDFromURL("https://www.zillow.com/homedetails/123-Main-St/48749425_zpid/")
	require.NotNil(t, id)
	assert.Equal(t, int64(48749425), *id)

	id = normalize.ZPIDFromURL("https://www.zillow.com/b/building?zpid=2077942211")
	require.NotNil(t, id)
	assert.Equal(t, int64(2077942211), *id)

	assert.Nil(t, normalize.ZPIDFromURL("https://www.zillow.com/seattle-wa/"))
	assert.Nil(t, normalize.ZPIDFromURL(""))
}

func TestListingFromCardSearchShape(t *testing.T) {
	card := map[string]any{
		"zpid":       48749425.0,
		"address":    "123 Main St, Seattle, WA 98101",
		"detailUrl":  "/homedetails/123-Main-St/48749425_zpid/",
		"imgSrc":     "https://photos.example.com/1.jpg",
		"price":      "$1,250,000",
		"beds":       3.0,
		"baths":      2.0,
		"area":       1850.0,
		"statusType": "FOR_SALE",
		"latitude":   47.6062,
		"longitude":  -122.3321,
		"brokerName": "Example Realty",
	}

	listing, ok := normalize.ListingFromCard(card)
	require.True(t, ok)

	require.NotNil(t, listing.ZPID)
	assert.Equal(t, int64(48749425), *listing.ZPID)
	assert.Equal(t, "123 Main St, Seattle, WA 98101", listing.Address)
	assert.Equal(t, "https://www.zillow.com/homedetails/123-Main-St/48749425_zpid/", listing.URL)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 1250000.0, *listing.Price)
	require.NotNil(t, listing.Beds)
	assert.Equal(t, 3, *listing.Beds)
	require.NotNil(t, listing.Sqft)
	assert.Equal(t, 1850, *listing.Sqft)
	assert.Equal(t, "FOR_SALE", listing.Status)
	assert.Equal(t, "Example Realty", listing.Brokerage)
}

func TestListingFromCardAlternateShapes(t *testing.T) {
	// forSaleListings shape: structured address, nested attribution.
	card := map[string]any{
		"address":          map[string]any{"line1": "456 Oak Ave", "line2": "Portland, OR 97201"},
		"home_details_url": "https://www.zillow.com/homedetails/456-Oak-Ave/7654321_zpid/",
		"unformattedPrice": 750000.0,
		"bedrooms":         4.0,
		"livingArea":       2400.0,
		"attributionInfo":  map[string]any{"brokerName": "Nested Brokerage"},
	}

	listing, ok := normalize.ListingFromCard(card)
	require.True(t, ok)
	assert.Equal(t, "456 Oak Ave, Portland, OR 97201", listing.Address)
	require.NotNil(t, listing.ZPID)
	assert.Equal(t, int64(7654321), *listing.ZPID)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 750000.0, *listing.Price)
	assert.Equal(t, "Nested Brokerage", listing.Brokerage)
}

func TestListingFromCardPastSalesShape(t *testing.T) {
	card := map[string]any{
		"street_address":     "789 Pine Rd",
		"city_state_zipcode": "Austin, TX 78701",
		"sold_date":          "2024-03-01",
		"zpid":               111.0,
	}

	listing, ok := normalize.ListingFromCard(card)
	require.True(t, ok)
	assert.Equal(t, "789 Pine Rd, Austin, TX 78701", listing.Address)
	assert.Equal(t, "2024-03-01", listing.Status)
}

func TestListingFromCardRejectsEmpty(t *testing.T) {
	_, ok := normalize.ListingFromCard(map[string]any{"price": "$100"})
	assert.False(t, ok)
}

func TestAgentFromCardResultsCardShape(t *testing.T) {
	card := map[string]any{
		"cardTitle":          "Jane Smith",
		"secondaryCardTitle": "RE/Max ONE",
		"cardActionLink":     "/profile/janesmith/",
		"imageUrl":           "https://photos.example.com/jane.jpg",
		"reviewInformation": map[string]any{
			"reviewAverageText": "5.0",
			"reviewCountText":   "(1595)",
		},
		"profileData": []any{
			map[string]any{"data": "211", "label": "team sales last 12 months"},
			map[string]any{"data": "$300K - $2.1M", "label": "price range"},
		},
		"tags": []any{map[string]any{"text": "TEAM"}},
	}

	agent, ok := normalize.AgentFromCard(card, "seattle-wa")
	require.True(t, ok)

	assert.Equal(t, "Jane Smith", agent.Name)
	assert.Equal(t, "https://www.zillow.com/profile/janesmith/", agent.URL)
	assert.Equal(t, "RE/Max ONE", agent.Brokerage)
	require.NotNil(t, agent.Rating)
	assert.Equal(t, 5.0, *agent.Rating)
	require.NotNil(t, agent.ReviewsCount)
	assert.Equal(t, 1595, *agent.ReviewsCount)
	require.NotNil(t, agent.SalesCount)
	assert.Equal(t, 211, *agent.SalesCount)
	assert.Equal(t, "$300K - $2.1M", agent.PriceRange)
	assert.True(t, agent.IsTeam)
	assert.Equal(t, "Seattle Wa", agent.Location)
}

func TestAgentFromCardBuildsProfileURL(t *testing.T) {
	card := map[string]any{
		"fullName":    "Bob Jones",
		"encodedZuid": "bobjones",
		"avgRating":   4.5,
		"numReviews":  12.0,
	}

	agent, ok := normalize.AgentFromCard(card, "austin-tx")
	require.True(t, ok)
	assert.Equal(t, "https://www.zillow.com/profile/bobjones/", agent.URL)
	require.NotNil(t, agent.Rating)
	assert.Equal(t, 4.5, *agent.Rating)
}

func TestAgentFromCardTitleizesAccentedLocation(t *testing.T) {
	card := map[string]any{
		"fullName":    "Ana Ruiz",
		"encodedZuid": "anaruiz",
	}

	agent, ok := normalize.AgentFromCard(card, "évry-courcouronnes")
	require.True(t, ok)
	assert.Equal(t, "Évry Courcouronnes", agent.Location)
}

func TestAgentFromCardRejectsHelpEntries(t *testing.T) {
	_, ok := normalize.AgentFromCard(map[string]any{"cardTitle": "Get help finding an agent"}, "")
	assert.False(t, ok)

	// Non-profile action links are directory chrome, not agents.
	_, ok = normalize.AgentFromCard(map[string]any{
		"cardTitle":      "Somewhere Else",
		"cardActionLink": "/homes/",
	}, "")
	assert.False(t, ok)
}

func TestReviewFromCard(t *testing.T) {
	card := map[string]any{
		"rating":       5.0,
		"reviewText":   "<p>Helped us close in   two weeks!</p>",
		"reviewerName": "happybuyer42",
		"createDate":   "2024-06-01",
		"workType":     "Bought a home",
	}

	review, ok := normalize.ReviewFromCard(card)
	require.True(t, ok)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Helped us close in two weeks!", review.Text)
	assert.Equal(t, "happybuyer42", review.ReviewerName)
	assert.Equal(t, "Bought a home", review.TransactionType)
}

func TestReviewFromCardNestedReviewer(t *testing.T) {
	card := map[string]any{
		"overallRating": 4.0,
		"reviewComment": "Solid experience.",
		"reviewer": map[string]any{
			"screenName":  "zuser99",
			"encodedZuid": "X1-ZU123",
		},
	}

	review, ok := normalize.ReviewFromCard(card)
	require.True(t, ok)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "X1-ZU123", review.ReviewerID)
	assert.Equal(t, "zuser99", review.ReviewerName)
}

func TestReviewFromCardRejectsEmpty(t *testing.T) {
	_, ok := normalize.ReviewFromCard(map[string]any{"date": "2024-01-01"})
	assert.False(t, ok)
}
