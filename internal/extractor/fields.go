// Package extractor pulls structured business fields out of recognized
// document text.
package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

const (
	FieldTaxID                 = "taxId"
	FieldDUNSNumber            = "dunsNumber"
	FieldLegalBusinessName     = "legalBusinessName"
	FieldDateEstablished       = "dateEstablished"
	FieldBusinessAddressStreet = "businessAddressStreet"
	FieldBusinessAddressCity   = "businessAddressCity"
	FieldBusinessAddressState  = "businessAddressState"
	FieldBusinessAddressZip    = "businessAddressZip"
	FieldBusinessPhone         = "businessPhone"
	FieldBusinessEmail         = "businessEmail"
)

// DateLayout is the normalized form of FieldDateEstablished.
const DateLayout = "2006-01-02"

// Years outside this range mean dateparse filled in a partial date.
const (
	minYear = 1600
	maxYear = 2200
)

var (
	taxIDPattern = regexp.MustCompile(`\d{2}-?\d{7}`)

	dunsPattern = regexp.MustCompile(
		`(?i)D-U-N-S[ \t]*(?:No\.?|Number|#)?[ \t]*:?[ \t]*(\d{2}-?\d{3}-?\d{4})`)

	legalNamePattern = regexp.MustCompile(
		`(?i)(?:Legal Business Name|Legal Name|Business Name|Company Name)[ \t]*:?[ \t]*([^\r\n]*)`)

	datePattern = regexp.MustCompile(
		`(?i)(?:Date of (?:Formation|Incorporation|Organization)|Date Established|Formation Date|Established|Incorporated|Formed)(?:[ \t]+on)?[ \t]*:?[ \t]*([^\r\n]*)`)

	streetPattern = regexp.MustCompile(
		`(?i)(?:Principal Place of Business|Place of Business|Business Address|Address|Location)[ \t]*:?[ \t]*([^\r\n]*)`)

	cityStateZipPattern = regexp.MustCompile(
		`(?i)([A-Z][A-Z .'-]*),[ \t]*([A-Z]{2})[ \t]+(\d{5}(?:-\d{4})?)\b`)

	phonePattern = regexp.MustCompile(
		`(?i)(?:Telephone|Phone|Tel)[ \t]*(?:No\.?|Number|#)?[ \t]*:?[ \t]*(\+?1?[ \t.-]*\(?\d{3}\)?[ \t.-]*\d{3}[ \t.-]*\d{4})`)

	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)

	nonDigits = regexp.MustCompile(`\D`)
)

type fieldExtractor func(text string, fields models.ExtractedFields)

var extractors = []fieldExtractor{
	extractTaxID,
	extractDUNS,
	extractLegalName,
	extractDateEstablished,
	extractStreet,
	extractCityStateZip,
	extractPhone,
	extractEmail,
}

// ExtractFields runs every field extractor over text. Each extractor sets at
// most one field from the first match it finds; nothing found means the key
// is absent.
func ExtractFields(text string) models.ExtractedFields {
	fields := make(models.ExtractedFields)
	if strings.TrimSpace(text) == "" {
		return fields
	}
	for _, extract := range extractors {
		extract(text, fields)
	}
	return fields
}

func extractTaxID(text string, fields models.ExtractedFields) {
	if m := taxIDPattern.FindString(text); m != "" {
		fields[FieldTaxID] = strings.ReplaceAll(m, "-", "")
	}
}

func extractDUNS(text string, fields models.ExtractedFields) {
	if m := dunsPattern.FindStringSubmatch(text); m != nil {
		fields[FieldDUNSNumber] = strings.ReplaceAll(m[1], "-", "")
	}
}

func extractLegalName(text string, fields models.ExtractedFields) {
	setCapture(legalNamePattern, text, fields, FieldLegalBusinessName)
}

func extractStreet(text string, fields models.ExtractedFields) {
	setCapture(streetPattern, text, fields, FieldBusinessAddressStreet)
}

func extractDateEstablished(text string, fields models.ExtractedFields) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if date, ok := normalizeDate(m[1]); ok {
		fields[FieldDateEstablished] = date
	}
}

func extractCityStateZip(text string, fields models.ExtractedFields) {
	m := cityStateZipPattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if city := strings.TrimSpace(m[1]); city != "" {
		fields[FieldBusinessAddressCity] = city
	}
	fields[FieldBusinessAddressState] = strings.ToUpper(m[2])
	fields[FieldBusinessAddressZip] = m[3]
}

func extractPhone(text string, fields models.ExtractedFields) {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	digits := nonDigits.ReplaceAllString(m[1], "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		fields[FieldBusinessPhone] = digits
	}
}

func extractEmail(text string, fields models.ExtractedFields) {
	if m := emailPattern.FindString(text); m != "" {
		fields[FieldBusinessEmail] = m
	}
}

func setCapture(re *regexp.Regexp, text string, fields models.ExtractedFields, key string) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if v := strings.TrimSpace(m[1]); v != "" {
		fields[key] = v
	}
}

// normalizeDate parses a free-text date and renders it as DateLayout.
// Partial dates that parse without a plausible year are rejected.
func normalizeDate(raw string) (string, bool) {
	raw = strings.TrimRight(strings.TrimSpace(raw), ".,;")
	if raw == "" {
		return "", false
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil || t.Year() < minYear || t.Year() > maxYear {
		return "", false
	}
	return t.Format(DateLayout), true
}
