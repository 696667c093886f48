package dto

// ScrapeResult is returned after the upstream scrape trigger is accepted.
type ScrapeResult struct {
	Message string `json:"message"`
}

// CacheClearResult reports how many cache entries were removed.
type CacheClearResult struct {
	ClearedEntries int `json:"cleared_entries"`
}

// StaticResult reports a static mirror run.
type StaticResult struct {
	Pages int    `json:"pages"`
	Dir   string `json:"dir"`
}
