package discogs

// Folder is one collection folder from the folder listing endpoint.
type Folder struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type foldersResponse struct {
	Folders []Folder `json:"folders"`
}

// pagination is the shared pagination envelope on list endpoints.
type pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type folderReleasesResponse struct {
	Pagination pagination          `json:"pagination"`
	Releases   []CollectionRelease `json:"releases"`
}

// CollectionRelease is one row of a collection folder listing.
type CollectionRelease struct {
	BasicInformation BasicInformation `json:"basic_information"`
}

// BasicInformation carries the display fields of a collection release.
type BasicInformation struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Artists []Artist `json:"artists"`
	Labels  []Label  `json:"labels"`
	Formats []Format `json:"formats"`
}

// Artist is a credited artist on a release.
type Artist struct {
	Name string `json:"name"`
}

// Label is a record label credit, including the catalog number.
type Label struct {
	Name      string `json:"name"`
	CatalogNo string `json:"catno"`
}

// Format describes a release format (e.g. Vinyl with descriptions).
type Format struct {
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
}

// MarketplaceStats is the marketplace stats payload for a release.
// Pointer fields distinguish absent upstream values from zeroes.
type MarketplaceStats struct {
	NumForSale      *float64 `json:"num_for_sale"`
	BlockedFromSale *bool    `json:"blocked_from_sale"`
	LowestPrice     *Price   `json:"lowest_price"`
}

// Price is a marketplace price value.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"curr_abbr"`
}

// Release is the release details payload, reduced to the fields the
// pipeline consumes.
type Release struct {
	ID        int64      `json:"id"`
	Community *Community `json:"community"`
}

// Community holds community demand counters for a release.
type Community struct {
	Want *float64 `json:"want"`
	Have *float64 `json:"have"`
}
