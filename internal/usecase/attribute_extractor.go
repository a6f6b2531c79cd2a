package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/monitorlens/backend/internal/domain"
)

// Package-level compiled regex patterns for title extraction
var (
	// Matches sizes like `27"`, `27'`, "27 inch", "27-inch", "31.5 inch" and
	// the localized spelling "инч". One or two digits, optional one decimal.
	sizePattern = regexp.MustCompile(`(\d{1,2}(?:\.\d)?)["']|\b(\d{1,2}(?:\.\d)?)[\s-]*(?:inch|инч)`)

	// Matches explicit resolution literals like "1920x1080"
	explicitResolutionPattern = regexp.MustCompile(`(\d{3,4}x\d{3,4})`)

	// Matches refresh rates like "144Hz", "75 hz"
	refreshRatePattern = regexp.MustCompile(`(\d{2,3})\s*hz`)
)

// knownBrands is the fixed brand list, scanned in declaration order; the
// first whole-word hit wins.
var knownBrands = []string{
	"lg", "samsung", "dell", "aoc", "benq", "asus", "msi", "xiaomi",
	"philips", "acer", "viewsonic", "hp", "lenovo", "gigabyte", "fuego",
}

// acronymBrands render fully upper-case in output; all others capitalize.
var acronymBrands = map[string]bool{"lg": true, "hp": true, "msi": true, "aoc": true}

// brandWordPatterns holds one whole-word matcher per known brand.
var brandWordPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(knownBrands))
	for _, b := range knownBrands {
		m[b] = regexp.MustCompile(`\b` + regexp.QuoteMeta(b) + `\b`)
	}
	return m
}()

// brandModelPatterns is the per-brand model grammar table. Patterns run
// against the original-cased title; brands without an entry fall through to
// the generic patterns.
var brandModelPatterns = map[string]*regexp.Regexp{
	// Dell: P2425H, SE2422H, U2724DE
	"dell": regexp.MustCompile(`\b([A-Z]+\d{3,4}[A-Z]{0,2}(?:-[A-Z0-9]+)?)\b`),
	// Samsung: LS27C360EAUXEN, LF24T450FQRXEN
	"samsung": regexp.MustCompile(`\b(L[SCFT]\d{2}[A-Z]\d{3}[A-Z]+)\b`),
	// LG: 24GQ50F-B, 27MP60GP-B
	"lg": regexp.MustCompile(`\b(\d{2}[A-Z]{2,}\d{2,}[A-Z]{0,2}-[A-Z0-9]+)\b`),
}

// genericModelPatterns are the global fallback shapes, tried in priority
// order across the whole title; the first match anywhere is final.
var genericModelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b([A-Z0-9]{2,}[-_][A-Z0-9]{2,}[-_]?[A-Z0-9]*)\b`), // XX-XX, XX-XX-XX
	regexp.MustCompile(`(?i)\b([A-Z]\d{4}[A-Z]*)\b`),                           // X9999X
	regexp.MustCompile(`(?i)\b(\d{2}[A-Z]\d{2,}[A-Z0-9]+)\b`),                  // 99X99XXX
}

// resolutionEntry maps one marketing shorthand to its canonical resolution.
type resolutionEntry struct {
	term  string
	value string
}

// resolutionTable is scanned in order; the first term contained in the title
// wins. An explicit WIDTHxHEIGHT literal found later overrides it.
var resolutionTable = []resolutionEntry{
	{"fhd", "1920x1080"},
	{"full hd", "1920x1080"},
	{"1080p", "1920x1080"},
	{"wqhd", "2560x1440"},
	{"qhd", "2560x1440"},
	{"1440p", "2560x1440"},
	{"2k", "2560x1440"},
	{"4k", "3840x2160"},
	{"uhd", "3840x2160"},
	{"uwqhd", "3440x1440"},
	{"ultrawide qhd", "3440x1440"},
	{"5k", "5120x2880"},
}

// panelTypes is scanned in order, most specific first so "nano ips" is not
// shadowed by "ips".
var panelTypes = []string{"qd-oled", "nano ips", "oled", "ips", "va", "tn"}

// featureTest declares one boolean spec flag and the substrings that set it.
type featureTest struct {
	key        domain.SpecKey
	substrings []string
}

var featureTests = []featureTest{
	{domain.SpecCurved, []string{"curved"}},
	{domain.SpecGaming, []string{"gaming", "game"}},
	{domain.SpecHDR, []string{"hdr"}},
	{domain.SpecFreeSync, []string{"freesync"}},
	{domain.SpecGSync, []string{"g-sync", "gsync"}},
	{domain.SpecUSBC, []string{"usb-c", "usbc"}},
	{domain.SpecHDMI, []string{"hdmi"}},
	{domain.SpecDisplayPort, []string{"dp", "displayport"}},
	{domain.SpecSpeakers, []string{"speaker"}},
	{domain.SpecHeightAdjustable, []string{"height", "has"}},
}

// AttributeExtractor parses raw listing titles into structured attributes.
// Extraction never fails: fields that cannot be read stay unset.
type AttributeExtractor struct {
	enableDebugLogging bool
}

// NewAttributeExtractor creates a new attribute extractor
func NewAttributeExtractor(enableDebugLogging bool) *AttributeExtractor {
	return &AttributeExtractor{enableDebugLogging: enableDebugLogging}
}

// Extract parses a raw product title. All matching runs on a lower-cased copy
// of the title (brand model grammars run on the original casing); textual
// output for brand/model/panel is recased independently of the input.
func (e *AttributeExtractor) Extract(title string) domain.ExtractedAttributes {
	title = strings.TrimSpace(title)
	titleLower := strings.ToLower(title)

	attrs := domain.ExtractedAttributes{
		Name:  title,
		Specs: make(domain.Specs),
	}

	e.extractSize(titleLower, &attrs)
	e.extractBrand(titleLower, &attrs)
	e.extractModel(title, titleLower, &attrs)
	e.extractResolution(titleLower, &attrs)
	e.extractRefreshRate(titleLower, &attrs)
	e.extractPanelType(titleLower, &attrs)
	e.extractFeatures(titleLower, &attrs)

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] %q -> brand=%q model=%q size=%v res=%q rate=%v panel=%q specs=%d",
			title, attrs.Brand, attrs.Model, attrs.Size, attrs.Resolution,
			attrs.RefreshRate, attrs.PanelType, len(attrs.Specs))
	}

	return attrs
}

// extractSize reads the display diagonal; the first match wins.
func (e *AttributeExtractor) extractSize(titleLower string, attrs *domain.ExtractedAttributes) {
	m := sizePattern.FindStringSubmatch(titleLower)
	if m == nil {
		return
	}
	value := m[1]
	if value == "" {
		value = m[2]
	}
	size, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	attrs.Size = size
	attrs.Specs[domain.SpecSize] = domain.NumberSpec(size)
}

// extractBrand scans the fixed brand list for a whole-word hit.
func (e *AttributeExtractor) extractBrand(titleLower string, attrs *domain.ExtractedAttributes) {
	for _, brand := range knownBrands {
		if !strings.Contains(titleLower, brand) {
			continue
		}
		if brandWordPatterns[brand].MatchString(titleLower) {
			attrs.Brand = recaseBrand(brand)
			return
		}
	}
}

// recaseBrand applies output casing: acronym brands fully upper-case,
// everything else capitalized.
func recaseBrand(brand string) string {
	if acronymBrands[brand] {
		return strings.ToUpper(brand)
	}
	return strings.ToUpper(brand[:1]) + brand[1:]
}

// extractModel resolves the model identifier through the pattern cascade:
// brand grammar, then the after-brand token, then the global shapes. The
// first pattern that matches is final; later patterns are never consulted.
func (e *AttributeExtractor) extractModel(title, titleLower string, attrs *domain.ExtractedAttributes) {
	if attrs.Brand != "" {
		brandLower := strings.ToLower(attrs.Brand)

		if pattern, ok := brandModelPatterns[brandLower]; ok {
			if m := pattern.FindStringSubmatch(title); m != nil {
				attrs.Model = m[1]
				return
			}
		}

		// Generic pattern: alphanumeric token directly following the brand name
		afterBrand := regexp.MustCompile(`\b` + regexp.QuoteMeta(brandLower) + `\W*([a-z0-9]+-?[a-z0-9]+(?:-[a-z0-9]+)?)\b`)
		if m := afterBrand.FindStringSubmatch(titleLower); m != nil {
			attrs.Model = strings.ToUpper(m[1])
			return
		}
	}

	for _, pattern := range genericModelPatterns {
		if m := pattern.FindStringSubmatch(title); m != nil {
			attrs.Model = strings.ToUpper(m[1])
			return
		}
	}
}

// extractResolution reads the marketing-term table first, then lets an
// explicit WIDTHxHEIGHT literal override the table-derived value.
func (e *AttributeExtractor) extractResolution(titleLower string, attrs *domain.ExtractedAttributes) {
	for _, entry := range resolutionTable {
		if strings.Contains(titleLower, entry.term) {
			attrs.Resolution = entry.value
			break
		}
	}

	if m := explicitResolutionPattern.FindStringSubmatch(titleLower); m != nil {
		attrs.Resolution = m[1]
	}

	if attrs.Resolution != "" {
		attrs.Specs[domain.SpecResolution] = domain.StringSpec(attrs.Resolution)
	}
}

func (e *AttributeExtractor) extractRefreshRate(titleLower string, attrs *domain.ExtractedAttributes) {
	m := refreshRatePattern.FindStringSubmatch(titleLower)
	if m == nil {
		return
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}
	attrs.RefreshRate = rate
	attrs.Specs[domain.SpecRefreshRate] = domain.NumberSpec(rate)
}

func (e *AttributeExtractor) extractPanelType(titleLower string, attrs *domain.ExtractedAttributes) {
	for _, panel := range panelTypes {
		if strings.Contains(titleLower, panel) {
			attrs.PanelType = strings.ToUpper(panel)
			attrs.Specs[domain.SpecPanelType] = domain.StringSpec(attrs.PanelType)
			return
		}
	}
}

// extractFeatures tests every boolean flag independently. Flags that test
// true are stored with value true; everything else is omitted entirely.
func (e *AttributeExtractor) extractFeatures(titleLower string, attrs *domain.ExtractedAttributes) {
	for _, ft := range featureTests {
		for _, sub := range ft.substrings {
			if strings.Contains(titleLower, sub) {
				attrs.Specs[ft.key] = domain.BoolSpec(true)
				break
			}
		}
	}
}
