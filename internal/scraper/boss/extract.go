package boss

import (
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"
	"time"

	"go-bosszp-automation/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// field lookups on a loaded detail page should resolve immediately; a short
// timeout keeps a missing region from stalling the whole walk
const fieldTimeoutMs = 2000

var (
	brRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// Extractor turns a loaded detail page into a JobRecord. It never retries:
// a missing required region fails the record and the caller moves on.
type Extractor struct {
	log *log.Logger
}

func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{log: logger}
}

func (e *Extractor) Extract(jobPage playwright.Page) (*scraper.JobRecord, error) {
	primary := jobPage.Locator(selPrimary)

	title, err := textOf(primary.Locator(selTitle))
	if err != nil {
		return nil, fmt.Errorf("title region missing: %w", err)
	}
	salary, err := textOf(primary.Locator(selSalary))
	if err != nil {
		return nil, fmt.Errorf("salary region missing: %w", err)
	}
	location, err := textOf(primary.Locator(selCity))
	if err != nil {
		return nil, fmt.Errorf("location region missing: %w", err)
	}
	degree, err := textOf(primary.Locator(selDegree))
	if err != nil {
		return nil, fmt.Errorf("education region missing: %w", err)
	}

	//two-tier fallback: the structural company block, then the first
	//segment of the recruiter line ("张三·HRBP·某某科技"), then the sentinel
	company := "N/A"
	if c, err := textOf(jobPage.Locator(selCompany)); err == nil && c != "" {
		company = c
	} else if info, err := textOf(jobPage.Locator(selRecruiterInfo)); err == nil && info != "" {
		company = companyFromRecruiter(info)
	}

	//schema drift: two class spellings in the wild
	experience, err := textOf(primary.Locator(selExperience))
	if err != nil {
		experience, err = textOf(primary.Locator(selExperienceAlt))
		if err != nil {
			return nil, fmt.Errorf("experience region missing: %w", err)
		}
	}

	welfare, err := jobPage.Locator(selWelfareTags).AllTextContents()
	if err != nil {
		welfare = nil
	}
	keywords, err := jobPage.Locator(selKeywordTags).AllTextContents()
	if err != nil {
		keywords = nil
	}

	markup, err := jobPage.Locator(selDescription).First().InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: playwright.Float(fieldTimeoutMs),
	})
	if err != nil {
		return nil, fmt.Errorf("description region missing: %w", err)
	}

	jobURL := jobPage.URL()

	rec := &scraper.JobRecord{
		Title:       title,
		Salary:      salary,
		Company:     company,
		Location:    location,
		Experience:  experience,
		Education:   degree,
		Benefits:    joinTags(welfare),
		Tags:        joinTags(keywords),
		Description: normalizeDescription(markup),
		DisplayLink: displayLink(jobURL, title, location, company),
		SourceURL:   canonicalURL(jobURL),
		CapturedAt:  time.Now().Format(scraper.CapturedAtLayout),
	}

	e.log.Printf("✅ Extracted 【%s - %s - %s - %s】", rec.Title, rec.Company, rec.Location, rec.Salary)
	return rec, nil
}

func textOf(l playwright.Locator) (string, error) {
	text, err := l.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(fieldTimeoutMs),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// companyFromRecruiter takes the company out of the recruiter info line,
// which reads "name·role·company" on some layouts but leads with the
// company on others; the first segment is what the site shows first.
func companyFromRecruiter(info string) string {
	return strings.TrimSpace(strings.Split(info, "·")[0])
}

func joinTags(tags []string) string {
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			trimmed = append(trimmed, tag)
		}
	}
	if len(trimmed) == 0 {
		return "N/A"
	}
	return strings.Join(trimmed, ", ")
}

// normalizeDescription flattens the description markup: <br> variants become
// newlines, remaining tags are stripped and entities decoded.
func normalizeDescription(markup string) string {
	markup = brRe.ReplaceAllString(markup, "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(markup, "")))
	}
	return strings.TrimSpace(doc.Text())
}

// displayLink builds the spreadsheet hyperlink formula. Double quotes in the
// label are doubled so the formula survives CSV and Excel quoting.
func displayLink(url, title, location, company string) string {
	label := fmt.Sprintf("%s-%s-%s", title, location, company)
	label = strings.ReplaceAll(label, `"`, `""`)
	return fmt.Sprintf(`=HYPERLINK("%s", "%s")`, url, label)
}

func canonicalURL(url string) string {
	return strings.SplitN(url, "?", 2)[0]
}
