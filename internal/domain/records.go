// Package domain defines the canonical record types produced by the
// extraction pipeline. All records are transient: constructed fresh per
// request and never persisted by this service.
package domain

// Listing is a normalized property listing. Nullable numeric fields use
// pointers so "absent" survives JSON round-trips without inventing zeros.
type Listing struct {
	ZPID         *int64   `json:"zpid"`
	Address      string   `json:"address"`
	URL          string   `json:"url"`
	PhotoURL     string   `json:"photo_url,omitempty"`
	Price        *float64 `json:"price"`
	Beds         *int     `json:"beds"`
	Baths        *int     `json:"baths"`
	Sqft         *int     `json:"sqft"`
	PropertyType string   `json:"property_type,omitempty"`
	Status       string   `json:"status,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Brokerage    string   `json:"brokerage,omitempty"`

	// Extended fields, present only on detail pages.
	Description string `json:"description,omitempty"`
	YearBuilt   *int   `json:"year_built,omitempty"`
	LotSize     *int   `json:"lot_size,omitempty"`
}

// Agent is a normalized agent card from a directory search.
type Agent struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	PhotoURL     string   `json:"photo_url,omitempty"`
	Brokerage    string   `json:"brokerage,omitempty"`
	Location     string   `json:"location,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Rating       *float64 `json:"rating"`
	ReviewsCount *int     `json:"reviews_count"`
	SalesCount   *int     `json:"sales_count"`
	PriceRange   string   `json:"price_range,omitempty"`
	IsTeam       bool     `json:"is_team"`
}

// AgentProfile extends Agent with fields only available on a profile page.
type AgentProfile struct {
	Agent

	SalesLast12Months *int   `json:"sales_last_12_months"`
	TotalSales        *int   `json:"total_sales"`
	Bio               string `json:"bio,omitempty"`
}

// Review is a single agent review. Rating is passed through as published;
// the expected 1-5 range is not enforced at parse time.
type Review struct {
	ReviewerID      string `json:"zuid"`
	Rating          int    `json:"rating"`
	Text            string `json:"review"`
	ReviewerName    string `json:"reviewer_name,omitempty"`
	Date            string `json:"date,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`
}

// Suggestion is a location autocomplete result.
type Suggestion struct {
	Display string `json:"display"`
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// ApartmentDetails describes an apartment or building listing page.
type ApartmentDetails struct {
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description string   `json:"description,omitempty"`
	Units       []any    `json:"units"`
	Amenities   []string `json:"amenities"`
	Photos      []string `json:"photos"`
}
