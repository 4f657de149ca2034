package listing

import "regexp"

// locationPatterns recognise strings shaped like a place rather than a company.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][a-z]+,\s*[A-Z]{2}$`),
	regexp.MustCompile(`^[A-Z][a-z]+(\s+[A-Z][a-z]+)*,\s*[A-Z]{2}$`),
	regexp.MustCompile(`^[A-Z][a-z]+(\s+[A-Z][a-z]+)*,\s*United States$`),
	regexp.MustCompile(`^United States$`),
	regexp.MustCompile(`^Remote$`),
	regexp.MustCompile(`^Hybrid$`),
	regexp.MustCompile(`^\d{5}$`),
	regexp.MustCompile(`^(Seattle|San Francisco|New York|Los Angeles|Boston|Austin|Denver|Portland|Chicago|Miami|Atlanta|Dallas|Phoenix|San Diego|San Jose|Washington)$`),
	regexp.MustCompile(`^Greater\s+[A-Z][a-z]+(\s+[A-Z][a-z]+)*\s+Area$`),
	regexp.MustCompile(`^[A-Z][a-z]+(\s+[A-Z][a-z]+)*\s+Area$`),
}

// LooksLikeLocation reports whether s matches one of the known location shapes.
func LooksLikeLocation(s string) bool {
	for _, re := range locationPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
