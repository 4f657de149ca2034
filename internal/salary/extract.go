package salary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// textPatterns are tried in order against free text; the first hit wins.
var textPatterns = []*regexp.Regexp{
	// "The base salary range is 272,000 USD - 431,250 USD"
	regexp.MustCompile(`(?i)(?:base salary range|salary range|pay range)\s+is\s+[\d,]+\s+USD\s*-\s*[\d,]+\s+USD`),
	// "$198K-$343K / year"
	regexp.MustCompile(`(?i)\$[\d,]+K?\s*-\s*\$[\d,]+K?\s*/\s*ye?a?r?`),
	// "$200K/yr+"
	regexp.MustCompile(`(?i)\$[\d,]+K?\s*/\s*ye?a?r?\+`),
	regexp.MustCompile(`(?i)\$[\d,]+[Kk]?\s*-\s*\$[\d,]+[Kk]?`),
	regexp.MustCompile(`(?i)\$[\d,]+[Kk]?\+`),
	regexp.MustCompile(`(?i)[\d,]+[Kk]\s*-\s*[\d,]+[Kk]`),
	regexp.MustCompile(`(?i)(?:base salary|salary range|compensation|pay range):?\s*\$?[\d,]+[Kk]?\s*-\s*\$?[\d,]+[Kk]?`),
	regexp.MustCompile(`(?i)(?:base salary|compensation):?\s*\$?[\d,]+[Kk]?\+`),
}

// pagePatterns capture low and high bounds from a job page, in priority order.
var pagePatterns = []*regexp.Regexp{
	// "$272,000.00/yr - $431,250.00/yr"
	regexp.MustCompile(`(?i)\$([\d,]+)\.00/yr - \$([\d,]+)\.00/yr`),
	regexp.MustCompile(`(?i)base salary range is ([\d,]+) USD - ([\d,]+) USD`),
	regexp.MustCompile(`(?i)\$([\d,]+) - \$([\d,]+)`),
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	yrPattern  = regexp.MustCompile(`(?i)yr`)
	numbers    = regexp.MustCompile(`[\d,]+`)
)

// Extract finds a pay range in text and returns it in display form, or
// model.NotSpecified when none of the known shapes occur.
func Extract(text string) string {
	for _, re := range textPatterns {
		m := re.FindString(text)
		if m == "" {
			continue
		}
		comp := whitespace.ReplaceAllString(m, " ")
		comp = yrPattern.ReplaceAllString(comp, "year")
		if strings.Contains(comp, "USD") {
			nums := numbers.FindAllString(comp, -1)
			if len(nums) >= 2 {
				if k, ok := thousands(nums[0], nums[1]); ok {
					comp = k
				}
			}
		}
		return comp
	}
	return model.NotSpecified
}

// FromPage scans job-page HTML for a salary range and returns "$<low>K-$<high>K".
func FromPage(html string) (string, bool) {
	for _, re := range pagePatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if k, ok := thousands(m[1], m[2]); ok {
			return k, true
		}
	}
	return "", false
}

// thousands renders two comma-grouped dollar amounts as "$<low>K-$<high>K".
func thousands(low, high string) (string, bool) {
	l, err := strconv.Atoi(strings.ReplaceAll(low, ",", ""))
	if err != nil {
		return "", false
	}
	h, err := strconv.Atoi(strings.ReplaceAll(high, ",", ""))
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("$%dK-$%dK", l/1000, h/1000), true
}
