package usecase

import (
	"fmt"
	"strings"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/pkg/logger"
	"flightlink-service/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

// ListingSelectors locate listing fields on a result page.
// Leg field selectors are relative to a Leg element.
type ListingSelectors struct {
	Item     string `yaml:"item"`
	Price    string `yaml:"price"`
	Leg      string `yaml:"leg"`
	Timing   string `yaml:"timing"`
	Airline  string `yaml:"airline"`
	Stops    string `yaml:"stops"`
	Layover  string `yaml:"layover"`
	Duration string `yaml:"duration"`
}

// Validate reports the first empty required selector
func (s ListingSelectors) Validate() error {
	required := map[string]string{
		"item":     s.Item,
		"price":    s.Price,
		"leg":      s.Leg,
		"timing":   s.Timing,
		"airline":  s.Airline,
		"stops":    s.Stops,
		"duration": s.Duration,
	}
	for name, sel := range required {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("listing selector %q is empty", name)
		}
	}
	return nil
}

// ExtractionReport summarizes one page
type ExtractionReport struct {
	Items    int
	Records  int
	NoPrice  int
	Skipped  int
	Failures []error
}

// ListingExtractor turns a loaded result page into listing records
type ListingExtractor struct {
	selectors ListingSelectors
	logger    logger.Logger
	now       func() time.Time
}

// NewListingExtractor creates a new listing extractor
func NewListingExtractor(selectors ListingSelectors, logger logger.Logger) *ListingExtractor {
	return &ListingExtractor{
		selectors: selectors,
		logger:    logger,
		now:       time.Now,
	}
}

// Extract parses html, the document served at searchURL. Items without a
// price are dropped silently; items with a malformed leg are skipped and
// reported. Only an unparsable document is an error.
func (e *ListingExtractor) Extract(searchURL, html string) ([]*entity.FlightListingRecord, *ExtractionReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse page: %v", entity.ErrExtraction, err)
	}
	records, report := e.ExtractDocument(searchURL, doc)
	return records, report, nil
}

// ExtractDocument is Extract on an already parsed document
func (e *ListingExtractor) ExtractDocument(searchURL string, doc *goquery.Document) ([]*entity.FlightListingRecord, *ExtractionReport) {
	report := &ExtractionReport{}
	var records []*entity.FlightListingRecord
	scrapedAt := e.now()

	doc.Find(e.selectors.Item).Each(func(i int, item *goquery.Selection) {
		report.Items++

		price := utils.ListingText(item.Find(e.selectors.Price).First().Text())
		if price == "" {
			report.NoPrice++
			return
		}

		record, err := e.extractItem(item)
		if err != nil {
			report.Skipped++
			report.Failures = append(report.Failures, fmt.Errorf("item %d: %w", i, err))
			e.logger.Debug("Skipping listing item", "url", searchURL, "item", i, "error", err)
			return
		}
		record.SearchURL = searchURL
		record.Price = price
		record.ScrapedAt = scrapedAt
		records = append(records, record)
	})

	report.Records = len(records)
	return records, report
}

func (e *ListingExtractor) extractItem(item *goquery.Selection) (*entity.FlightListingRecord, error) {
	legs := item.Find(e.selectors.Leg)
	if legs.Length() == 0 {
		return nil, fmt.Errorf("%w: no outbound leg", entity.ErrExtraction)
	}

	outbound, err := e.extractLeg(legs.Eq(0))
	if err != nil {
		return nil, fmt.Errorf("outbound: %w", err)
	}
	record := &entity.FlightListingRecord{Outbound: *outbound}

	if legs.Length() > 1 {
		ret, err := e.extractLeg(legs.Eq(1))
		if err != nil {
			return nil, fmt.Errorf("return: %w", err)
		}
		record.Return = ret
	}
	return record, nil
}

func (e *ListingExtractor) extractLeg(leg *goquery.Selection) (*entity.Leg, error) {
	field := func(name, sel string, required bool) (string, error) {
		found := leg.Find(sel)
		if found.Length() == 0 {
			if required {
				return "", fmt.Errorf("%w: missing %s", entity.ErrExtraction, name)
			}
			return "", nil
		}
		return utils.ListingText(found.First().Text()), nil
	}

	var (
		out entity.Leg
		err error
	)
	if out.Timing, err = field("timing", e.selectors.Timing, true); err != nil {
		return nil, err
	}
	if out.Airline, err = field("airline", e.selectors.Airline, true); err != nil {
		return nil, err
	}
	if out.Stops, err = field("stops", e.selectors.Stops, true); err != nil {
		return nil, err
	}
	if e.selectors.Layover != "" {
		if out.Layover, err = field("layover", e.selectors.Layover, false); err != nil {
			return nil, err
		}
	}
	if out.Duration, err = field("duration", e.selectors.Duration, true); err != nil {
		return nil, err
	}
	return &out, nil
}
