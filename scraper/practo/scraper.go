package practo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"practo-scraper/config"
	"practo-scraper/models"
	"practo-scraper/storage"
	"practo-scraper/utils"
)

// Timeouts for the page-fetching collaborator.
const (
	navigateTimeout = 60 * time.Second
	selectorTimeout = 15 * time.Second
	reloadTimeout   = 30 * time.Second
	retryBaseWait   = time.Second
)

// PageFetcher is the rendered-page capability the scraper drives. One tab,
// strictly sequential use.
type PageFetcher interface {
	Navigate(url string, timeout time.Duration) error
	WaitForAny(selectors []string, timeout time.Duration) (string, error)
	HTML() (string, error)
	Reload(timeout time.Duration) error
	Screenshot(path string) error
}

// Scraper walks the configured cities page by page, extracting and
// deduplicating clinic records and flushing them to storage in batches.
type Scraper struct {
	cfg       *config.Config
	log       zerolog.Logger
	page      PageFetcher
	extractor *Extractor
	dedup     *utils.DedupTracker
	writers   []storage.RecordWriter

	buffer       []*models.ClinicRecord
	written      int
	citiesOK     int
	citiesFailed int
}

// NewScraper creates a Scraper. The first writer is the primary sink: a
// batch stays buffered until it lands there.
func NewScraper(cfg *config.Config, log zerolog.Logger, page PageFetcher, extractor *Extractor, dedup *utils.DedupTracker, writers ...storage.RecordWriter) *Scraper {
	return &Scraper{
		cfg:       cfg,
		log:       log,
		page:      page,
		extractor: extractor,
		dedup:     dedup,
		writers:   writers,
	}
}

// Run processes the city list in order. Cancellation stops new city and
// page work promptly; records already extracted are still flushed.
func (s *Scraper) Run(ctx context.Context, cities []string) error {
	s.log.Info().Int("cities", len(cities)).Msg("starting scrape run")

	for i, city := range cities {
		if ctx.Err() != nil {
			s.log.Warn().Str("city", city).Msg("interrupted, stopping before next city")
			break
		}

		records, err := s.scrapeCity(ctx, city)
		s.buffer = append(s.buffer, records...)
		if err != nil {
			s.citiesFailed++
			s.log.Error().Err(err).Str("city", city).Msg("city failed")
			if !s.cfg.ContinueOnError {
				s.flush()
				return fmt.Errorf("city %s failed: %w", city, err)
			}
		} else {
			s.citiesOK++
			s.log.Info().Str("city", city).Int("records", len(records)).Msg("city finished")
		}

		if len(s.buffer) >= s.cfg.BatchSaveSize {
			s.flush()
		}

		// Longer randomized pause between cities, skipped after the last.
		if i < len(cities)-1 && ctx.Err() == nil {
			delay := utils.RandomDelay(ctx, 2*s.cfg.MinDelay(), 3*s.cfg.MaxDelay())
			s.log.Debug().Dur("delay", delay).Msg("inter-city delay")
		}
	}

	s.flush()
	s.log.Info().
		Int("cities_succeeded", s.citiesOK).
		Int("cities_failed", s.citiesFailed).
		Int("records_written", s.written).
		Int("keys_tracked", s.dedup.Count()).
		Msg("scrape run complete")
	return nil
}

// cityURL builds the listing URL for a city page. Page 1 is the bare city
// URL; later pages carry a page query parameter.
func (s *Scraper) cityURL(city string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s/%s/pediatrician", s.cfg.BaseURL, city)
	}
	return fmt.Sprintf("%s/%s/pediatrician?page=%d", s.cfg.BaseURL, city, page)
}

// scrapeCity pages through one city's listings until the page ceiling, an
// empty result page, or (under StopOnEmptyPage) a page adding nothing new.
// Records already collected are returned even when a later page errors.
func (s *Scraper) scrapeCity(ctx context.Context, city string) ([]*models.ClinicRecord, error) {
	var records []*models.ClinicRecord

	for page := 1; page <= s.cfg.MaxPagesPerCity; page++ {
		if ctx.Err() != nil {
			return records, nil
		}

		url := s.cityURL(city, page)
		s.log.Info().Str("city", city).Int("page", page).Str("url", url).Msg("loading page")

		if err := s.loadPage(ctx, city, url); err != nil {
			s.log.Error().Err(err).Str("city", city).Int("page", page).Msg("page unrecoverable, skipping")
			if !s.cfg.ContinueOnError {
				return records, err
			}
			continue
		}

		delay := utils.RandomDelay(ctx, s.cfg.MinDelay(), s.cfg.MaxDelay())
		s.log.Debug().Dur("delay", delay).Msg("pre-extraction delay")

		html, err := s.page.HTML()
		if err != nil {
			s.log.Error().Err(err).Str("city", city).Int("page", page).Msg("failed to read page")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			s.log.Error().Err(err).Str("city", city).Int("page", page).Msg("failed to parse page")
			continue
		}

		cards, selector := firstMatch(doc.Selection, cardSelectors)
		if cards == nil || cards.Length() == 0 {
			s.log.Info().Str("city", city).Int("page", page).Msg("no cards found, end of results")
			break
		}
		s.log.Debug().Str("selector", selector).Int("cards", cards.Length()).Msg("cards located")

		newCount := 0
		cards.Each(func(i int, card *goquery.Selection) {
			rec, ok := s.extractor.Extract(card, city)
			if !ok {
				s.log.Debug().Str("city", city).Int("page", page).Int("card", i+1).Msg("card rejected")
				return
			}
			if !s.dedup.Add(rec.DedupKey()) {
				s.log.Debug().Str("clinic", rec.Clinic).Msg("duplicate record dropped")
				return
			}
			records = append(records, rec)
			newCount++
		})
		s.log.Info().Str("city", city).Int("page", page).
			Int("cards", cards.Length()).Int("new_records", newCount).Msg("page extracted")

		if s.cfg.StopOnEmptyPage && newCount == 0 {
			s.log.Info().Str("city", city).Int("page", page).Msg("no new records, stopping city")
			break
		}
	}

	return records, nil
}

// loadPage navigates and waits for a card container, retrying with doubling
// backoff. Each failed attempt captures a screenshot and reloads before the
// next try.
func (s *Scraper) loadPage(ctx context.Context, city, url string) error {
	return utils.RetryWithBackoff(ctx, s.cfg.MaxRetries, retryBaseWait,
		func() error {
			if err := s.page.Navigate(url, navigateTimeout); err != nil {
				return err
			}
			if _, err := s.page.WaitForAny(cardSelectors, selectorTimeout); err != nil {
				return fmt.Errorf("waiting for cards on %s: %w", url, err)
			}
			return nil
		},
		func(attempt int, err error) {
			s.log.Error().Err(err).Str("city", city).Str("url", url).Int("attempt", attempt).Msg("page load failed")
			s.captureScreenshot(city)
			if rerr := s.page.Reload(reloadTimeout); rerr != nil {
				s.log.Warn().Err(rerr).Str("city", city).Msg("reload failed")
			}
		})
}

func (s *Scraper) captureScreenshot(city string) {
	name := fmt.Sprintf("error_%s_%s.png", city, time.Now().Format("20060102_150405"))
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := s.page.Screenshot(path); err != nil {
		s.log.Warn().Err(err).Str("city", city).Msg("screenshot failed")
	}
}

// flush writes the buffer to every sink. The buffer is cleared only when
// the primary sink accepts it, so a failed flush is retried with the next
// batch instead of losing records.
func (s *Scraper) flush() {
	if len(s.buffer) == 0 {
		return
	}

	primaryOK := true
	for i, w := range s.writers {
		if err := w.Append(s.buffer); err != nil {
			s.log.Error().Err(err).Int("records", len(s.buffer)).Msg("flush failed")
			if i == 0 {
				primaryOK = false
			}
		}
	}
	if primaryOK {
		s.written += len(s.buffer)
		s.buffer = s.buffer[:0]
	}
}
