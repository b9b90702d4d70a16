// Shared record type for extracted listings
// Kept free of playwright imports so the store and viewer can use it

package scraper

// JobRecord is one job listing captured from a detail page. All fields are
// already display-ready strings; empty tag lists carry the "N/A" sentinel.
// SourceURL is the canonical listing address (query string removed) and is
// the dedup key in the master table.
type JobRecord struct {
	Title       string `json:"title"`
	Salary      string `json:"salary"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Experience  string `json:"experience"`
	Education   string `json:"education"`
	Benefits    string `json:"benefits"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
	DisplayLink string `json:"display_link"`
	SourceURL   string `json:"source_url"`
	CapturedAt  string `json:"captured_at"`
}

// CapturedAtLayout is the second-resolution timestamp format used in
// CapturedAt and in run file names.
const CapturedAtLayout = "2006-01-02 15:04:05"
