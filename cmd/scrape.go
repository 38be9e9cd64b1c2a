package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/scrape"
)

const addressColumnWidth = 48

// scrapeCommand groups the one-off scrape subcommands.
func scrapeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run a one-off scrape and print the results",
	}
	cmd.AddCommand(scrapeListingsCommand())
	cmd.AddCommand(scrapeAgentsCommand())
	return cmd
}

// scrapeListingsCommand searches property listings by location, URL,
// MLS id, or coordinates, in that priority order.
func scrapeListingsCommand() *cobra.Command {
	var (
		location string
		target   string
		mlsID    string
		lat      float64
		lng      float64
		listType string
		page     int
		filters  scrape.SearchFilters
	)

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Search property listings",
		Example: `  zillow-scraper scrape listings --location "phoenix-az"
  zillow-scraper scrape listings --location "phoenix-az" --type for-rent --min-price 1000
  zillow-scraper scrape listings --url "https://www.zillow.com/phoenix-az/"
  zillow-scraper scrape listings --mls AB1234567`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var result domain.ResultPage[domain.Listing]
			switch {
			case target != "":
				result, err = d.Listings.SearchByURL(ctx, target)
			case mlsID != "":
				result, err = d.Listings.SearchByMLSID(ctx, mlsID, page)
			case lat != 0 || lng != 0:
				result, err = d.Listings.SearchByCoordinates(ctx, lat, lng, listType, page, filters)
			case location != "":
				result, err = d.Listings.SearchByLocation(ctx, location, listType, page, filters)
			default:
				return fmt.Errorf("one of --location, --url, --mls, or --lat/--lng is required")
			}
			if err != nil {
				return err
			}

			renderListings(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "location to search (e.g. \"phoenix-az\")")
	cmd.Flags().StringVar(&target, "url", "", "full search or detail page URL")
	cmd.Flags().StringVar(&mlsID, "mls", "", "MLS listing id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude for a coordinate search")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude for a coordinate search")
	cmd.Flags().StringVar(&listType, "type", scrape.ListTypeForSale, "listing type: for-sale, for-rent, or sold")
	cmd.Flags().IntVar(&page, "page", 1, "result page to fetch")

	cmd.Flags().IntVar(&filters.MinPrice, "min-price", 0, "minimum price")
	cmd.Flags().IntVar(&filters.MaxPrice, "max-price", 0, "maximum price")
	cmd.Flags().IntVar(&filters.Beds, "beds", 0, "minimum bedrooms")
	cmd.Flags().IntVar(&filters.Baths, "baths", 0, "minimum bathrooms")
	cmd.Flags().IntVar(&filters.MinSqft, "min-sqft", 0, "minimum square footage")
	cmd.Flags().IntVar(&filters.MaxSqft, "max-sqft", 0, "maximum square footage")

	return cmd
}

// scrapeAgentsCommand searches the agent directory for a location.
func scrapeAgentsCommand() *cobra.Command {
	var (
		location string
		page     int
	)

	cmd := &cobra.Command{
		Use:     "agents",
		Short:   "Search the agent directory",
		Example: `  zillow-scraper scrape agents --location "phoenix-az"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if location == "" {
				return fmt.Errorf("--location is required")
			}
			d, err := newDeps()
			if err != nil {
				return err
			}

			result, err := d.Agents.ByLocation(cmd.Context(), location, page)
			if err != nil {
				return err
			}

			renderAgents(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "location to search (e.g. \"phoenix-az\")")
	cmd.Flags().IntVar(&page, "page", 1, "result page to fetch")

	return cmd
}

func newResultsTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: addressColumnWidth},
	})
	t.AppendHeader(header)
	return t
}

func renderListings(result domain.ResultPage[domain.Listing]) {
	t := newResultsTable(table.Row{"#", "Address", "Price", "Beds", "Baths", "Sqft", "URL"})

	for i, listing := range result.Results {
		t.AppendRow(table.Row{
			i + 1,
			strings.TrimSpace(listing.Address),
			formatPrice(listing.Price),
			formatInt(listing.Beds),
			formatInt(listing.Baths),
			formatInt(listing.Sqft),
			listing.URL,
		})
	}

	t.AppendFooter(table.Row{"Total", result.TotalResults, "", "", "", "Page", fmt.Sprintf("%d/%d", result.CurrentPage, result.TotalPages)})
	t.Render()
}

func renderAgents(result domain.ResultPage[domain.Agent]) {
	t := newResultsTable(table.Row{"#", "Name", "Brokerage", "Rating", "Reviews", "Sales", "URL"})

	for i, agent := range result.Results {
		t.AppendRow(table.Row{
			i + 1,
			agent.Name,
			agent.Brokerage,
			formatRating(agent.Rating),
			formatInt(agent.ReviewsCount),
			formatInt(agent.SalesCount),
			agent.URL,
		})
	}

	t.AppendFooter(table.Row{"Total", result.TotalResults, "", "", "", "Page", fmt.Sprintf("%d/%d", result.CurrentPage, result.TotalPages)})
	t.Render()
}

func formatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*price, 'f', 0, 64)
}

func formatInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return strconv.FormatFloat(*rating, 'f', 1, 64)
}
