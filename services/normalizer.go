package services

import (
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable is the sentinel for fields that could not be extracted.
const NotAvailable = "N/A"

// Default plausibility range for consultation fees, overridable via config.
const (
	DefaultFeeMin = 100
	DefaultFeeMax = 50000
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	disallowedRegex = regexp.MustCompile(`[^\w\s\-.,₹()]`)
	rupeeFeeRegex   = regexp.MustCompile(`₹\s*([\d,]+)`)
	rsFeeRegex      = regexp.MustCompile(`(?i)\brs\.?\s*([\d,]+)`)
	// Standalone 2-5 digit number, not part of a comma-grouped or decimal
	// number (those fall through to the raw-numeric path).
	bareFeeRegex  = regexp.MustCompile(`(?:\A|[^\d,.])(\d{2,5})(?:[^\d,.]|\z)`)
	nonNumRegex   = regexp.MustCompile(`[^\d,.]`)
	numericRegex  = regexp.MustCompile(`^[\d,.]+$`)
	anyDigitRegex = regexp.MustCompile(`\d`)
	expRegex      = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)`)
	phoneRegex    = regexp.MustCompile(`(?:\+?91[\-\s]*)?([6-9][0-9]{9})`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// nonFeePhrases are call-to-action strings the fee slot sometimes carries
// instead of an amount. Matched case-insensitively after trimming.
var nonFeePhrases = []string{
	"available today",
	"available tomorrow",
	"book now",
	"book appointment",
	"call now",
	"contact clinic",
	"video consult",
	"no booking fee",
}

// feeBoilerplate is stripped from fee text before amount extraction.
// Longest phrase first so "consultation fee" never leaves "at clinic" behind.
var feeBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)consultation fee at clinic`),
	regexp.MustCompile(`(?i)consultation fee`),
	regexp.MustCompile(`(?i)at clinic`),
}

// CleanText collapses whitespace runs, trims, strips one trailing comma and
// removes characters outside word chars, whitespace, "-.,₹()". An empty
// result becomes "N/A".
func CleanText(s string) string {
	s = disallowedRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	return s
}

// CleanFee normalizes raw fee text with the default plausibility range.
func CleanFee(s string) string {
	return CleanFeeRange(s, DefaultFeeMin, DefaultFeeMax)
}

// CleanFeeRange extracts a numeric consultation fee from raw card text.
// Returns "N/A" for known call-to-action phrases, the digit group for
// rupee- or Rs-prefixed amounts, a standalone 2-5 digit number within
// [min, max], the raw numeric remainder when digits are present but no
// pattern matched, and otherwise falls back to CleanText.
func CleanFeeRange(s string, min, max int) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == NotAvailable {
		return NotAvailable
	}
	for _, phrase := range nonFeePhrases {
		if strings.EqualFold(trimmed, phrase) {
			return NotAvailable
		}
	}

	stripped := trimmed
	for _, re := range feeBoilerplate {
		stripped = re.ReplaceAllString(stripped, "")
	}
	stripped = strings.TrimSpace(stripped)

	if m := rupeeFeeRegex.FindStringSubmatch(stripped); m != nil {
		return m[1]
	}
	if m := rsFeeRegex.FindStringSubmatch(stripped); m != nil {
		return m[1]
	}
	for _, m := range bareFeeRegex.FindAllStringSubmatch(stripped, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= min && n <= max {
			return m[1]
		}
	}
	if anyDigitRegex.MatchString(stripped) {
		remainder := nonNumRegex.ReplaceAllString(stripped, "")
		if numericRegex.MatchString(remainder) {
			return remainder
		}
	}
	return CleanText(stripped)
}

// CleanExperience extracts "<digits> years" from free text like
// "12 years experience overall", falling back to CleanText.
func CleanExperience(s string) string {
	if m := expRegex.FindStringSubmatch(s); m != nil {
		return m[1] + " years"
	}
	return CleanText(s)
}

// CleanPhone normalizes Indian mobile numbers to "+91-XXXXXXXXXX".
// Accepts an optional +91/91 prefix before a 10-digit number starting 6-9,
// or a bare 10- or 91-prefixed 12-digit string after stripping non-digits.
// Anything else falls back to CleanText.
func CleanPhone(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == NotAvailable {
		return NotAvailable
	}
	if m := phoneRegex.FindStringSubmatch(trimmed); m != nil {
		return "+91-" + m[1]
	}
	digits := nonDigitRegex.ReplaceAllString(trimmed, "")
	if len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9' {
		return "+91-" + digits
	}
	if len(digits) == 12 && strings.HasPrefix(digits, "91") && digits[2] >= '6' && digits[2] <= '9' {
		return "+91-" + digits[2:]
	}
	return CleanText(s)
}
