package crawler

import "places-crawler/pkg/models"

// AddArticle files a record under its (region, country) entry,
// creating the entry when it is the first destination for that pair.
// The linear scan is fine at tens of countries. No de-duplication
// happens here: the orchestrator checks the processed set before
// extraction, so a URL only ever arrives once.
func AddArticle(rec models.ArticleRecord, entries []models.CountryEntry) ([]models.CountryEntry, error) {
	loc, err := ParseLocation(rec.ArticleURL)
	if err != nil {
		return entries, err
	}
	for i := range entries {
		if entries[i].Region == loc.Region && entries[i].Country == loc.Country {
			entries[i].Destinations = append(entries[i].Destinations, rec)
			return entries, nil
		}
	}
	return append(entries, models.CountryEntry{
		Region:       loc.Region,
		Country:      loc.Country,
		Destinations: []models.ArticleRecord{rec},
	}), nil
}
