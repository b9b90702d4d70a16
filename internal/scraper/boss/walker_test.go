package boss

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"go-bosszp-automation/internal/config"
	"go-bosszp-automation/internal/scraper"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//helper start mock browser
func setupPlaywright(t *testing.T) (*playwright.Playwright, playwright.Browser, playwright.Page) {
	t.Helper()
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("could not launch playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("could not launch browser: %v", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	return pw, browser, page
}

// memAppender collects records in memory in append order.
type memAppender struct {
	records []scraper.JobRecord
}

func (m *memAppender) Append(rec *scraper.JobRecord) error {
	if rec == nil {
		return nil
	}
	m.records = append(m.records, *rec)
	return nil
}

func listingFixture(hrefs []string, pagination string) string {
	var items strings.Builder
	for _, href := range hrefs {
		fmt.Fprintf(&items, `<li class="item-boss"><div class="job-name"><a class="name" href="%s">job</a></div></li>`, href)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<ul class="user-jobs-ul">%s</ul>
%s
</body></html>`, items.String(), pagination)
}

const nextEnabled = `<div class="pagination-area">
<a class="next" href="javascript:;" onclick="location.href='/interested/page2'"><i class="ui-icon-arrow-right"></i></a>
</div>`

const nextDisabled = `<div class="pagination-area">
<a class="next disabled" href="javascript:;"><i class="ui-icon-arrow-right"></i></a>
</div>`

func walkerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InterestedJobsURL = "https://boss.test/interested"
	cfg.Timeouts.PageLoad = 3000
	//long enough for the routed page-2 navigation to commit after the click
	cfg.Timeouts.ItemSettle = 250
	cfg.Timeouts.Politeness = 25
	return cfg
}

// routeSite serves a two-page listing with three detail pages. A nil detail
// body function falls back to a complete detail fixture.
func routeSite(t *testing.T, page playwright.Page, page2 string) {
	t.Helper()
	err := page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		var body string
		switch {
		case strings.HasSuffix(url, "/interested"):
			body = listingFixture([]string{"/job_detail/a.html?ka=1", "/job_detail/b.html?ka=2"}, nextEnabled)
		case strings.HasSuffix(url, "/interested/page2"):
			body = page2
		case strings.Contains(url, "/job_detail/broken"):
			body = `<!DOCTYPE html><html><body><p>listing removed</p></body></html>`
		case strings.Contains(url, "/job_detail/"):
			name := strings.SplitN(url[strings.LastIndex(url, "/")+1:], "?", 2)[0]
			name = strings.TrimSuffix(name, ".html")
			body = detailFixture("职位"+name, companyBox, "text-experiece")
		default:
			body = `<!DOCTYPE html><html><body></body></html>`
		}
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html; charset=utf-8"),
			Body:        body,
		})
	})
	require.NoError(t, err)
}

func TestWalk_TwoPagesUntilDisabledNext(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, browser, page := setupPlaywright(t)
	defer pw.Stop()
	defer browser.Close()

	routeSite(t, page, listingFixture([]string{"/job_detail/c.html?ka=3"}, nextDisabled))

	out := &memAppender{}
	w := NewWalker(page, walkerConfig(t), out, log.New(io.Discard, "", 0))

	count, err := w.Walk()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, out.records, 3)

	//DOM order within a page, then page order
	assert.Equal(t, "https://boss.test/job_detail/a.html", out.records[0].SourceURL)
	assert.Equal(t, "https://boss.test/job_detail/b.html", out.records[1].SourceURL)
	assert.Equal(t, "https://boss.test/job_detail/c.html", out.records[2].SourceURL)
}

func TestWalk_NoNextControlStops(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, browser, page := setupPlaywright(t)
	defer pw.Stop()
	defer browser.Close()

	err := page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		body := detailFixture("职位a", companyBox, "text-experiece")
		if strings.HasSuffix(url, "/interested") {
			//single page, no pagination block at all
			body = listingFixture([]string{"/job_detail/a.html"}, "")
		}
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html; charset=utf-8"),
			Body:        body,
		})
	})
	require.NoError(t, err)

	out := &memAppender{}
	w := NewWalker(page, walkerConfig(t), out, log.New(io.Discard, "", 0))

	count, err := w.Walk()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWalk_BrokenItemIsSkipped(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, browser, page := setupPlaywright(t)
	defer pw.Stop()
	defer browser.Close()

	err := page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		var body string
		switch {
		case strings.HasSuffix(url, "/interested"):
			body = listingFixture([]string{"/job_detail/broken.html", "/job_detail/a.html"}, nextDisabled)
		case strings.Contains(url, "/job_detail/broken"):
			body = `<!DOCTYPE html><html><body><p>listing removed</p></body></html>`
		default:
			body = detailFixture("职位a", companyBox, "text-experiece")
		}
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html; charset=utf-8"),
			Body:        body,
		})
	})
	require.NoError(t, err)

	out := &memAppender{}
	w := NewWalker(page, walkerConfig(t), out, log.New(io.Discard, "", 0))

	count, err := w.Walk()
	require.NoError(t, err, "a broken item must not abort the walk")
	assert.Equal(t, 1, count)
	require.Len(t, out.records, 1)
	assert.Equal(t, "https://boss.test/job_detail/a.html", out.records[0].SourceURL)
}

func TestWalk_ListingTimeoutPreservesPartialResults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, browser, page := setupPlaywright(t)
	defer pw.Stop()
	defer browser.Close()

	//page 2 never renders its listing container
	routeSite(t, page, `<!DOCTYPE html><html><body><p>loading forever</p></body></html>`)

	cfg := walkerConfig(t)
	cfg.Timeouts.PageLoad = 500

	out := &memAppender{}
	w := NewWalker(page, cfg, out, log.New(io.Discard, "", 0))

	count, err := w.Walk()
	require.Error(t, err, "a listing page that never loads is fatal to the walk")
	assert.Equal(t, 2, count, "page 1 results survive the abort")
	assert.Len(t, out.records, 2)
}
