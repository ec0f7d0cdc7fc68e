package models

// Location identifies where an article sits in the site's
// places-to-go hierarchy. All three parts are derived from the
// article URL's path segments, never entered by hand.
type Location struct {
	Region  string `json:"region"`
	Country string `json:"country"`
	Place   string `json:"place"`
}

// ArticleRecord is the extracted form of a single destination article.
// HeroImage is a pointer so a missing image serializes as JSON null,
// matching the checkpoint files produced by earlier runs.
type ArticleRecord struct {
	PlaceName    string   `json:"place_name"`
	ArticleTitle string   `json:"article_title"`
	ArticleURL   string   `json:"article_url"`
	HeroImage    *string  `json:"hero_image"`
	Description  string   `json:"description"`
	Author       string   `json:"author,omitempty"`
	FullText     string   `json:"full_text,omitempty"`
	Headlines    []string `json:"headlines,omitempty"`
	Images       []string `json:"images,omitempty"`
}

// CountryEntry groups the destinations scraped for one (region, country)
// pair. Destinations grow by append only, in discovery order.
type CountryEntry struct {
	Region       string          `json:"region"`
	Country      string          `json:"country"`
	Destinations []ArticleRecord `json:"destinations"`
}
