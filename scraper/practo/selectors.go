package practo

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector cascades per field, ordered most-specific first. The data-qa-id
// hooks match the current listing markup; the u-color/u-bold classes cover
// the older card layout still served on some pages.
var (
	cardSelectors = []string{
		`[data-qa-id="doctor_card"]`,
		".listing-doctor-card",
		".reach-v2-card",
	}

	nameSelectors = []string{
		`[data-qa-id="doctor_name"]`,
		"h2.doctor-name",
		"h2.u-color--primary",
	}

	// Location is assembled from three independently optional sub-elements.
	practiceNameSelector = `[data-qa-id="practice_name"]`
	localitySelector     = `[data-qa-id="practice_locality"]`
	listingCitySelector  = `[data-qa-id="practice_city"]`

	// Fee tier 1 is trusted as-is; tier 2 candidates must pass the
	// fee-likeness checks in the extractor.
	feePrimarySelector = `[data-qa-id="consultation_fee"]`
	feeSelectors       = []string{
		"span.u-bold",
		".u-bold",
		".fee",
	}

	experienceSelectors = []string{
		`[data-qa-id="doctor_experience"]`,
		"div.uv2-spacer--xs-top",
		"span.u-grey_3-text",
	}

	phoneSelectors = []string{
		`[data-qa-id="phone_number"]`,
		".c-vn__number",
		"span.u-bold.telephone",
	}
)

// firstText tries each selector in order and returns the trimmed text of
// the first one matching a non-empty element, or "" when none do.
func firstText(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(root.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstMatch returns the elements of the first selector yielding any,
// together with the selector that won.
func firstMatch(root *goquery.Selection, selectors []string) (*goquery.Selection, string) {
	for _, sel := range selectors {
		if found := root.Find(sel); found.Length() > 0 {
			return found, sel
		}
	}
	return nil, ""
}
