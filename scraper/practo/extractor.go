package practo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"practo-scraper/models"
	"practo-scraper/services"
)

var (
	rupeeAmountRegex = regexp.MustCompile(`₹\s*[\d,]+`)
	bareAmountRegex  = regexp.MustCompile(`^\d{2,5}$`)
	expTextRegex     = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)`)
	cardExpRegex     = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\s*(?:experience|exp)`)
)

// feeExclusions disqualify a candidate element from being the fee: these
// call-to-action strings sit in sibling nodes styled like the fee.
var feeExclusions = []string{
	"book appointment",
	"book now",
	"call now",
	"available today",
	"available tomorrow",
	"video consult",
	"contact clinic",
	"no booking fee",
}

// expBoilerplate is the bare label shown when the card carries no number.
const expBoilerplate = "years experience overall"

// Extractor pulls one record out of a listing card using the per-field
// selector cascades.
type Extractor struct {
	validator    *services.Validator
	extractPhone bool
	log          zerolog.Logger
}

// NewExtractor creates an Extractor
func NewExtractor(validator *services.Validator, extractPhone bool, log zerolog.Logger) *Extractor {
	return &Extractor{validator: validator, extractPhone: extractPhone, log: log}
}

// Extract reads one card and returns a validated record. Returns false when
// the card has no recognizable clinic name or fails validation; only the
// name is mandatory, every other field degrades to "N/A".
func (e *Extractor) Extract(card *goquery.Selection, city string) (*models.ClinicRecord, bool) {
	name := firstText(card, nameSelectors)
	if name == "" {
		return nil, false
	}

	raw := &models.RawRecord{
		City:       city,
		Clinic:     name,
		Location:   e.location(card),
		Fee:        e.fee(card),
		Experience: e.experience(card),
		Phone:      e.phone(card),
	}
	rec, ok := e.validator.ValidateAndClean(raw)
	if !ok {
		e.log.Debug().Str("city", city).Str("name", name).Msg("record failed validation")
	}
	return rec, ok
}

// location joins the practice name, locality and listing city, each
// optional, with ", ". Trailing commas on the sub-parts are shed first.
func (e *Extractor) location(card *goquery.Selection) string {
	var parts []string
	for _, sel := range []string{practiceNameSelector, localitySelector, listingCitySelector} {
		part := strings.TrimSpace(card.Find(sel).First().Text())
		part = strings.TrimSuffix(part, ",")
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// fee runs the three-tier cascade: the dedicated fee element, then broader
// bold/fee-classed candidates filtered for fee-likeness, then a last-resort
// scan of short span/div text nodes.
func (e *Extractor) fee(card *goquery.Selection) string {
	if text := strings.TrimSpace(card.Find(feePrimarySelector).First().Text()); text != "" {
		return text
	}

	found := ""
	for _, sel := range feeSelectors {
		card.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strings.TrimSpace(el.Text())
			if text == "" || hasFeeExclusion(text) {
				return true
			}
			if looksLikeFee(text) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	card.Find("span, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(el.Text())
		if text == "" || len(text) >= 40 || hasFeeExclusion(text) {
			return true
		}
		lower := strings.ToLower(text)
		if rupeeAmountRegex.MatchString(text) ||
			(strings.ContainsAny(text, "0123456789") &&
				(strings.Contains(lower, "fee") || strings.Contains(lower, "consultation"))) {
			found = text
			return false
		}
		return true
	})
	return found
}

// looksLikeFee accepts tier-2 candidates: a rupee amount, a bare 2-5 digit
// number, or text that mentions consultation/fee.
func looksLikeFee(text string) bool {
	if strings.Contains(text, "₹") || bareAmountRegex.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "consultation") || strings.Contains(lower, "fee")
}

func hasFeeExclusion(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range feeExclusions {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// experience tries the selector cascade first, preferring a "<N> years"
// pattern but keeping non-boilerplate free text; failing that it scans the
// whole card for an experience mention.
func (e *Extractor) experience(card *goquery.Selection) string {
	found := ""
	for _, sel := range experienceSelectors {
		card.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strings.TrimSpace(el.Text())
			if text == "" {
				return true
			}
			if m := expTextRegex.FindStringSubmatch(text); m != nil {
				found = m[1] + " years"
				return false
			}
			if !strings.EqualFold(text, expBoilerplate) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if m := cardExpRegex.FindStringSubmatch(card.Text()); m != nil {
		return m[1] + " years"
	}
	return ""
}

// phone reads phone-bearing elements already present in the DOM. The
// click-to-reveal overlay from an earlier site layout is deliberately not
// driven here.
func (e *Extractor) phone(card *goquery.Selection) string {
	if !e.extractPhone {
		return ""
	}
	return firstText(card, phoneSelectors)
}
