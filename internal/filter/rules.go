package filter

import "strings"

// Rule categories.
const (
	CategoryPublic    = "public"
	CategoryIndicator = "indicator"
	CategoryTier1     = "tier1"
	CategoryTier2     = "tier2"
)

// Rule maps a lowercase keyword to a category.
type Rule struct {
	Keyword  string
	Category string
}

// RuleSet is an ordered list of rules evaluated first-match-wins.
type RuleSet []Rule

// Match returns the first rule whose keyword occurs in s, case-insensitively.
func (rs RuleSet) Match(s string) (Rule, bool) {
	lower := strings.ToLower(s)
	for _, r := range rs {
		if strings.Contains(lower, r.Keyword) {
			return r, true
		}
	}
	return Rule{}, false
}

func rules(category string, keywords ...string) RuleSet {
	rs := make(RuleSet, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		rs = append(rs, Rule{Keyword: kw, Category: category})
	}
	return rs
}

var knownPublic = []string{
	"google", "alphabet", "meta", "facebook", "amazon", "microsoft",
	"apple", "netflix", "tesla", "nvidia", "intel", "amd", "qualcomm",
	"salesforce", "oracle", "ibm", "cisco", "adobe", "intuit", "paypal",
	"uber", "lyft", "airbnb", "doordash", "coinbase", "snowflake",
	"databricks", "stripe", "atlassian", "shopify", "square", "block",
	"mongodb", "elastic", "twilio", "okta", "zoom", "slack", "dropbox",
	"pinterest", "snap", "twitter", "reddit", "roblox", "unity",
	"servicenow", "workday", "splunk", "crowdstrike", "palo alto",
	"fortinet", "cloudflare", "datadog", "gitlab", "hashicorp",
	"affirm", "cvs", "zillow", "anthropic", "ford", "walmart",
	"target", "home depot", "lowes", "best buy", "dell", "hp",
	"booking", "expedia", "wayfair", "ebay", "etsy", "chewy",
	"draft kings", "mgm", "caesars", "disney", "comcast", "verizon",
	"att", "t-mobile", "sprint", "charter", "dish", "fox", "viacom",
	"paramount", "warner", "discovery", "spotify", "roku", "peloton",
	"figma", "mixpanel", "blue origin", "sofi",
}

var publicIndicators = []string{"nasdaq", "nyse", "publicly traded", "stock options", "equity"}

var tier1Companies = []string{
	"google", "alphabet", "meta", "facebook", "apple", "amazon", "netflix",
	"microsoft", "nvidia", "openai", "anthropic", "tesla", "spacex",
	"stripe", "databricks",
}

var tier2Companies = []string{
	"salesforce", "adobe", "uber", "lyft", "airbnb", "doordash", "snowflake",
	"oracle", "ibm", "cisco", "intel", "amd", "qualcomm", "shopify",
	"atlassian", "mongodb", "elastic", "twilio", "okta", "zoom", "slack",
	"dropbox", "pinterest", "snap", "twitter", "reddit", "roblox", "unity",
	"servicenow", "workday", "splunk", "crowdstrike", "palo alto",
	"fortinet", "cloudflare", "datadog", "gitlab", "hashicorp", "figma",
	"affirm", "coinbase", "square", "block", "spotify", "roku", "peloton",
	"blue origin", "mixpanel", "sofi",
}
