package boss

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go-bosszp-automation/internal/config"
	"go-bosszp-automation/internal/filter"
	"go-bosszp-automation/internal/scraper"
	"go-bosszp-automation/utils"

	"github.com/playwright-community/playwright-go"
)

// Appender receives records as they are extracted. Satisfied by the record
// store's incremental writer.
type Appender interface {
	Append(rec *scraper.JobRecord) error
}

// Walker pages through the interested-jobs listing, visiting every item on a
// page in its own tab before moving to the next page. Records stream to the
// appender one by one, so whatever was collected before a failure stays on
// disk.
type Walker struct {
	page      playwright.Page
	cfg       *config.Config
	extractor *Extractor
	matcher   *filter.Matcher
	out       Appender
	log       *log.Logger
	shots     *utils.ScreenShotDebugger
}

func NewWalker(page playwright.Page, cfg *config.Config, out Appender, logger *log.Logger) *Walker {
	return &Walker{
		page:      page,
		cfg:       cfg,
		extractor: NewExtractor(logger),
		matcher:   filter.NewMatcher(cfg.Keywords, cfg.ExcludeKeywords),
		out:       out,
		log:       logger,
		shots:     utils.NewScreenShotDebugger(logger),
	}
}

// Walk runs until the listing runs out of pages and returns how many records
// were extracted and stored. A listing page that never loads aborts the walk
// with an error; the count still reflects everything stored so far.
func (w *Walker) Walk() (int, error) {
	w.log.Println("🚀 Starting the interested-jobs walk...")
	if _, err := w.page.Goto(w.cfg.InterestedJobsURL, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(w.cfg.Timeouts.PageLoad)),
	}); err != nil {
		return 0, fmt.Errorf("failed to open listing page: %w", err)
	}

	count := 0
	pageNum := 1

	for {
		w.log.Printf("📄 Processing page %d...", pageNum)

		err := w.page.Locator(selJobList).WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(w.cfg.Timeouts.PageLoad)),
		})
		if err != nil {
			w.shots.CaptureAndLog(w.page, "listing-timeout", "⏰ Listing container never appeared")
			return count, fmt.Errorf("page %d never loaded its listing: %w", pageNum, err)
		}
		//give client-side rendering a moment to finish filling the list
		time.Sleep(w.cfg.Timeouts.ItemSettleDuration())

		items, err := w.page.Locator(selJobItem).All()
		if err != nil {
			return count, fmt.Errorf("page %d item lookup failed: %w", pageNum, err)
		}
		if len(items) == 0 {
			w.log.Println("🏁 No items on this page, walk complete.")
			break
		}
		w.log.Printf("🔎 Found %d items on page %d", len(items), pageNum)

		//collect every link before navigating anywhere: leaving the listing
		//would invalidate the remaining element handles
		urls := make([]string, 0, len(items))
		for _, item := range items {
			href, err := item.Locator(selJobLink).GetAttribute("href")
			if err != nil || href == "" {
				continue
			}
			urls = append(urls, href)
		}

		for i, jobURL := range urls {
			w.log.Printf("➡️ Visiting item %d/%d: %s", i+1, len(urls), jobURL)
			if w.visitJob(jobURL) {
				count++
			}
			time.Sleep(w.cfg.Timeouts.PolitenessDuration())
		}

		//the arrow icon sits inside the pager link; ".." walks to the link
		next := w.page.Locator(selNextIcon).Locator("..")
		visible, _ := next.IsVisible()
		if !visible {
			w.log.Println("🏁 No next-page control, walk complete.")
			break
		}
		class, _ := next.GetAttribute("class")
		if strings.Contains(class, "disabled") {
			w.log.Println("🏁 Next-page control disabled, reached the last page.")
			break
		}
		w.log.Println("⏭️ Moving to the next page...")
		if err := next.Click(); err != nil {
			return count, fmt.Errorf("next-page click failed on page %d: %w", pageNum, err)
		}
		pageNum++
	}

	w.log.Printf("🏁 Walk finished, %d records extracted.", count)
	return count, nil
}

// visitJob opens one listing in its own tab and runs extraction. Any failure
// here is logged and skipped; it never aborts the page or the walk.
func (w *Walker) visitJob(jobURL string) bool {
	jobPage, err := w.page.Context().NewPage()
	if err != nil {
		w.log.Printf("⚠️ Could not open a tab for %s: %v", jobURL, err)
		return false
	}
	defer jobPage.Close()

	if _, err := jobPage.Goto(jobURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(w.cfg.Timeouts.PageLoad)),
	}); err != nil {
		w.log.Printf("⚠️ Navigation to %s failed: %v", jobURL, err)
		return false
	}

	rec, err := w.extractor.Extract(jobPage)
	if err != nil {
		w.log.Printf("⚠️ Extraction failed for %s: %v", jobURL, err)
		return false
	}

	if !w.matcher.ShouldInclude(rec) {
		w.log.Printf("🚫 Filtered out: %s", rec.Title)
		return false
	}

	if err := w.out.Append(rec); err != nil {
		w.log.Printf("⚠️ Could not store record for %s: %v", jobURL, err)
		return false
	}
	return true
}
