package scrape

// SearchFilters narrows a property search. Zero values mean "not set" and
// are omitted from the generated filter state.
type SearchFilters struct {
	MinPrice int
	MaxPrice int
	Beds     int
	Baths    int
	MinSqft  int
	MaxSqft  int
	MinBuilt int
	MaxBuilt int
	MinLot   int
	MaxLot   int
	MaxHOA   int

	// Property types.
	SingleFamily bool
	Condo        bool
	Townhouse    bool
	Apartment    bool
	MultiFamily  bool
	LotLand      bool
	Manufactured bool

	// Features.
	HasPool      bool
	HasGarage    bool
	ParkingSpots int
	SingleStory  bool

	// Views.
	WaterView    bool
	MountainView bool
	ParkView     bool
	CityView     bool

	// Basement.
	BasementFinished   bool
	BasementUnfinished bool

	// Status.
	ComingSoon     bool
	Foreclosure    bool
	Auction        bool
	OpenHousesOnly bool
	ThreeDHome     bool

	DaysOnMarket int
}

// FilterState renders the filters as the site's search-query filter object.
// Range filters become {"min":N}/{"max":N} entries, flags become
// {"value":true}; unset fields produce nothing.
func (f SearchFilters) FilterState() map[string]any {
	state := map[string]any{}

	setRange := func(key string, min, max int) {
		if min == 0 && max == 0 {
			return
		}
		entry := map[string]any{}
		if min > 0 {
			entry["min"] = min
		}
		if max > 0 {
			entry["max"] = max
		}
		state[key] = entry
	}
	setFlag := func(key string, on bool) {
		if on {
			state[key] = map[string]any{"value": true}
		}
	}

	setRange("price", f.MinPrice, f.MaxPrice)
	setRange("sqft", f.MinSqft, f.MaxSqft)
	setRange("built", f.MinBuilt, f.MaxBuilt)
	setRange("lotSize", f.MinLot, f.MaxLot)
	setRange("hoa", 0, f.MaxHOA)
	if f.Beds > 0 {
		state["beds"] = map[string]any{"min": f.Beds}
	}
	if f.Baths > 0 {
		state["baths"] = map[string]any{"min": f.Baths}
	}
	if f.ParkingSpots > 0 {
		state["parkingSpots"] = map[string]any{"min": f.ParkingSpots}
	}

	setFlag("isSingleFamily", f.SingleFamily)
	setFlag("isCondo", f.Condo)
	setFlag("isTownhouse", f.Townhouse)
	setFlag("isApartment", f.Apartment)
	setFlag("isMultiFamily", f.MultiFamily)
	setFlag("isLotLand", f.LotLand)
	setFlag("isManufactured", f.Manufactured)

	setFlag("hasPool", f.HasPool)
	setFlag("hasGarage", f.HasGarage)
	setFlag("singleStory", f.SingleStory)

	// The site names the water-view flag "waterfront".
	setFlag("isWaterfront", f.WaterView)
	setFlag("isMountainView", f.MountainView)
	setFlag("isParkView", f.ParkView)
	setFlag("isCityView", f.CityView)

	setFlag("isBasementFinished", f.BasementFinished)
	setFlag("isBasementUnfinished", f.BasementUnfinished)

	setFlag("isComingSoon", f.ComingSoon)
	setFlag("isForSaleForeclosure", f.Foreclosure)
	setFlag("isAuction", f.Auction)
	setFlag("isOpenHouse", f.OpenHousesOnly)
	setFlag("is3dHome", f.ThreeDHome)

	if f.DaysOnMarket > 0 {
		state["daysOnZillow"] = map[string]any{"value": f.DaysOnMarket}
	}

	return state
}
