package domain

// CatalogStats summarises what is currently indexed.
type CatalogStats struct {
	Cards    int `json:"cards"`
	Passages int `json:"passages"`

	// Categories maps each category to its card count.
	Categories map[string]int `json:"categories"`
}
