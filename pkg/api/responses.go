package api

// RootResponse is the service banner returned at the API root.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// DemoDataResponse reports a completed demo-data backfill.
type DemoDataResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
