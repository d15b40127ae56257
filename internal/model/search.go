package model

type CompanyMatch struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Region      string `json:"region"`
	MarketOpen  string `json:"marketOpen"`
	MarketClose string `json:"marketClose"`
	Timezone    string `json:"timezone"`
	Currency    string `json:"currency"`
	MatchScore  string `json:"matchScore"`
}

// SearchResult carries either matches or the service's not-found message.
type SearchResult struct {
	Matches  []CompanyMatch `json:"matches,omitempty"`
	NotFound string         `json:"not_found,omitempty"`
}

func (r SearchResult) Found() bool {
	return len(r.Matches) > 0
}
