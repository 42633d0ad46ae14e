package models

type CategoryCount struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

type LocationCount struct {
	Location string `json:"location"`
	Total    int    `json:"total"`
}

// Stats is the dashboard rollup over active assets.
type Stats struct {
	TotalQuantity   int             `json:"total_quantity"`
	TotalCategories int             `json:"total_categories"`
	TotalLocations  int             `json:"total_locations"`
	ByCategory      []CategoryCount `json:"by_category"`
	ByLocation      []LocationCount `json:"by_location"`
}
