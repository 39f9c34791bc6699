package practo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practo-scraper/config"
	"practo-scraper/models"
	"practo-scraper/services"
	"practo-scraper/storage"
	"practo-scraper/utils"
)

// fakeFetcher serves canned HTML per URL, standing in for the browser.
type fakeFetcher struct {
	pages       map[string]string
	navErr      map[string]error
	onNavigate  func(url string)
	navigated   []string
	current     string
	reloads     int
	screenshots int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]string), navErr: make(map[string]error)}
}

func (f *fakeFetcher) Navigate(url string, _ time.Duration) error {
	f.navigated = append(f.navigated, url)
	if f.onNavigate != nil {
		f.onNavigate(url)
	}
	if err := f.navErr[url]; err != nil {
		return err
	}
	f.current = url
	return nil
}

func (f *fakeFetcher) WaitForAny(selectors []string, _ time.Duration) (string, error) {
	return selectors[0], nil
}

func (f *fakeFetcher) HTML() (string, error) {
	return f.pages[f.current], nil
}

func (f *fakeFetcher) Reload(_ time.Duration) error {
	f.reloads++
	return nil
}

func (f *fakeFetcher) Screenshot(_ string) error {
	f.screenshots++
	return nil
}

// memWriter buffers appended batches in memory.
type memWriter struct {
	batches [][]*models.ClinicRecord
	err     error
}

func (w *memWriter) Append(records []*models.ClinicRecord) error {
	if w.err != nil {
		return w.err
	}
	batch := make([]*models.ClinicRecord, len(records))
	copy(batch, records)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *memWriter) Close() error { return nil }

func (w *memWriter) total() int {
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:         "https://example.test",
		MaxPagesPerCity: 3,
		RequestDelayMin: 0,
		RequestDelayMax: 0,
		MaxRetries:      1,
		StopOnEmptyPage: true,
		ContinueOnError: true,
		ExtractPhone:    false,
		FeeMin:          100,
		FeeMax:          50000,
		TimestampFormat: "2006-01-02 15:04:05",
		BatchSaveSize:   100,
		ScreenshotDir:   ".",
	}
}

func newTestScraper(cfg *config.Config, page PageFetcher, writers ...storage.RecordWriter) (*Scraper, *utils.DedupTracker) {
	validator := services.NewValidator(cfg.FeeMin, cfg.FeeMax, cfg.TimestampFormat)
	extractor := NewExtractor(validator, cfg.ExtractPhone, zerolog.Nop())
	dedup := utils.NewDedupTracker()
	s := NewScraper(cfg, zerolog.Nop(), page, extractor, dedup, writers...)
	return s, dedup
}

func cardHTML(clinic, locality string) string {
	return fmt.Sprintf(`<div data-qa-id="doctor_card">
		<h2 data-qa-id="doctor_name">%s</h2>
		<span data-qa-id="practice_locality">%s</span>
		<span data-qa-id="consultation_fee">₹500</span>
	</div>`, clinic, locality)
}

func pageHTML(cards ...string) string {
	body := ""
	for _, c := range cards {
		body += c
	}
	return "<html><body>" + body + "</body></html>"
}

func cityURLFor(city string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("https://example.test/%s/pediatrician", city)
	}
	return fmt.Sprintf("https://example.test/%s/pediatrician?page=%d", city, page)
}

func TestScrapeCityStopsAtMaxPages(t *testing.T) {
	cfg := testConfig()
	page := newFakeFetcher()
	for n := 1; n <= 10; n++ {
		page.pages[cityURLFor("mumbai", n)] = pageHTML(
			cardHTML(fmt.Sprintf("Dr. Clinic %d", n), fmt.Sprintf("Area %d", n)),
		)
	}
	s, _ := newTestScraper(cfg, page)

	records, err := s.scrapeCity(context.Background(), "mumbai")
	require.NoError(t, err)

	assert.Len(t, records, cfg.MaxPagesPerCity)
	assert.Equal(t, []string{
		cityURLFor("mumbai", 1),
		cityURLFor("mumbai", 2),
		cityURLFor("mumbai", 3),
	}, page.navigated)
}

func TestScrapeCityStopsWhenPageAddsNothingNew(t *testing.T) {
	cfg := testConfig()
	page := newFakeFetcher()
	same := pageHTML(
		cardHTML("Dr. One", "Area A"),
		cardHTML("Dr. Two", "Area B"),
	)
	page.pages[cityURLFor("pune", 1)] = same
	page.pages[cityURLFor("pune", 2)] = same
	page.pages[cityURLFor("pune", 3)] = pageHTML(cardHTML("Dr. Three", "Area C"))
	s, _ := newTestScraper(cfg, page)

	records, err := s.scrapeCity(context.Background(), "pune")
	require.NoError(t, err)

	// Page 2 repeats page 1, so the city stops before page 3.
	assert.Len(t, records, 2)
	assert.Len(t, page.navigated, 2)
}

func TestScrapeCityRunsToCeilingWhenStopOnEmptyDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.StopOnEmptyPage = false
	page := newFakeFetcher()
	same := pageHTML(cardHTML("Dr. One", "Area A"))
	page.pages[cityURLFor("pune", 1)] = same
	page.pages[cityURLFor("pune", 2)] = same
	page.pages[cityURLFor("pune", 3)] = pageHTML(cardHTML("Dr. Three", "Area C"))
	s, _ := newTestScraper(cfg, page)

	records, err := s.scrapeCity(context.Background(), "pune")
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Len(t, page.navigated, 3)
}

func TestScrapeCityEndsOnPageWithoutCards(t *testing.T) {
	cfg := testConfig()
	page := newFakeFetcher()
	page.pages[cityURLFor("delhi", 1)] = pageHTML(cardHTML("Dr. One", "Area A"))
	page.pages[cityURLFor("delhi", 2)] = "<html><body><p>No results</p></body></html>"
	s, _ := newTestScraper(cfg, page)

	records, err := s.scrapeCity(context.Background(), "delhi")
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Len(t, page.navigated, 2)
}

func TestScrapeCitySkipsFailedPage(t *testing.T) {
	cfg := testConfig()
	page := newFakeFetcher()
	page.pages[cityURLFor("jaipur", 1)] = pageHTML(cardHTML("Dr. One", "Area A"))
	page.navErr[cityURLFor("jaipur", 2)] = fmt.Errorf("navigation timeout")
	page.pages[cityURLFor("jaipur", 3)] = pageHTML(cardHTML("Dr. Three", "Area C"))
	s, _ := newTestScraper(cfg, page)

	records, err := s.scrapeCity(context.Background(), "jaipur")
	require.NoError(t, err)

	// Page 2 fails its attempts, is skipped, page 3 still processed.
	assert.Len(t, records, 2)
	assert.GreaterOrEqual(t, page.screenshots, 1)
	assert.GreaterOrEqual(t, page.reloads, 1)
}

func TestScrapeCityDropsSeededDuplicates(t *testing.T) {
	cfg := testConfig()
	cfg.StopOnEmptyPage = false
	page := newFakeFetcher()
	page.pages[cityURLFor("mumbai", 1)] = pageHTML(
		cardHTML("Dr. Known", "Old Area"),
		cardHTML("Dr. Fresh", "New Area"),
	)
	page.pages[cityURLFor("mumbai", 2)] = "<html><body></body></html>"
	s, dedup := newTestScraper(cfg, page)
	dedup.Seed([]string{models.DedupKeyFor("Dr. Known", "Old Area")})

	records, err := s.scrapeCity(context.Background(), "mumbai")
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Dr. Fresh", records[0].Clinic)
}

func TestRunBatchesAndFinalFlush(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPagesPerCity = 1
	cfg.BatchSaveSize = 2
	page := newFakeFetcher()
	page.pages[cityURLFor("mumbai", 1)] = pageHTML(
		cardHTML("Dr. One", "Area A"),
		cardHTML("Dr. Two", "Area B"),
	)
	page.pages[cityURLFor("pune", 1)] = pageHTML(cardHTML("Dr. Three", "Area C"))
	sink := &memWriter{}
	s, _ := newTestScraper(cfg, page, sink)

	err := s.Run(context.Background(), []string{"mumbai", "pune"})
	require.NoError(t, err)

	// One threshold flush after mumbai, one final flush for pune.
	require.Len(t, sink.batches, 2)
	assert.Len(t, sink.batches[0], 2)
	assert.Len(t, sink.batches[1], 1)
	assert.Equal(t, 3, sink.total())
}

func TestRunStopsOnCancelButFlushes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPagesPerCity = 1
	page := newFakeFetcher()
	page.pages[cityURLFor("mumbai", 1)] = pageHTML(cardHTML("Dr. One", "Area A"))
	page.pages[cityURLFor("pune", 1)] = pageHTML(cardHTML("Dr. Two", "Area B"))
	sink := &memWriter{}
	s, _ := newTestScraper(cfg, page, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Interrupt arrives while the first city's page is loading.
	page.onNavigate = func(string) { cancel() }

	err := s.Run(ctx, []string{"mumbai", "pune"})
	require.NoError(t, err)

	// The first city finishes extraction, the second never starts, and
	// everything extracted before the stop is still flushed.
	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	assert.Equal(t, "Dr. One", sink.batches[0][0].Clinic)
	assert.Equal(t, []string{cityURLFor("mumbai", 1)}, page.navigated)
	assert.Empty(t, s.buffer)
}

func TestRunKeepsBufferWhenPrimarySinkFails(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPagesPerCity = 1
	cfg.BatchSaveSize = 1
	page := newFakeFetcher()
	page.pages[cityURLFor("mumbai", 1)] = pageHTML(cardHTML("Dr. One", "Area A"))
	sink := &memWriter{err: fmt.Errorf("disk full")}
	s, _ := newTestScraper(cfg, page, sink)

	err := s.Run(context.Background(), []string{"mumbai"})
	require.NoError(t, err)

	assert.Equal(t, 0, s.written)
	assert.Len(t, s.buffer, 1)
}
