package filter

import (
	"github.com/amishk599/jobdigest/internal/config"
	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure PublicCompanyFilter implements model.JobFilter.
var _ model.JobFilter = (*PublicCompanyFilter)(nil)

// Classifier decides whether a company looks public and which tier it falls in.
type Classifier struct {
	public     RuleSet
	indicators RuleSet
	tiers      RuleSet
}

// NewClassifier builds a classifier from the built-in keyword tables.
// Extra keywords from cfg are consulted before the built-in ones.
func NewClassifier(cfg config.ClassifyConfig) *Classifier {
	var public RuleSet
	public = append(public, rules(CategoryPublic, cfg.ExtraPublic...)...)
	public = append(public, rules(CategoryPublic, knownPublic...)...)

	var tiers RuleSet
	tiers = append(tiers, rules(CategoryTier1, cfg.ExtraTier1...)...)
	tiers = append(tiers, rules(CategoryTier1, tier1Companies...)...)
	tiers = append(tiers, rules(CategoryTier2, cfg.ExtraTier2...)...)
	tiers = append(tiers, rules(CategoryTier2, tier2Companies...)...)

	return &Classifier{
		public:     public,
		indicators: rules(CategoryIndicator, publicIndicators...),
		tiers:      tiers,
	}
}

var defaultClassifier = NewClassifier(config.ClassifyConfig{})

// IsPublic reports whether company contains a known public company name, or
// whether context mentions a public-market indicator.
func (c *Classifier) IsPublic(company, context string) bool {
	if _, ok := c.public.Match(company); ok {
		return true
	}
	_, ok := c.indicators.Match(context)
	return ok
}

// Tier ranks a company: 1 for top companies, 2 for well-known large ones,
// 3 for everything else.
func (c *Classifier) Tier(company string) int {
	r, ok := c.tiers.Match(company)
	if !ok {
		return 3
	}
	if r.Category == CategoryTier1 {
		return 1
	}
	return 2
}

// IsPublic applies the built-in tables.
func IsPublic(company, context string) bool {
	return defaultClassifier.IsPublic(company, context)
}

// Tier applies the built-in tables.
func Tier(company string) int {
	return defaultClassifier.Tier(company)
}

// PublicCompanyFilter keeps listings from companies that look public.
type PublicCompanyFilter struct {
	classifier *Classifier
}

// NewPublicCompanyFilter returns a filter backed by classifier.
func NewPublicCompanyFilter(classifier *Classifier) *PublicCompanyFilter {
	return &PublicCompanyFilter{classifier: classifier}
}

// Match returns true if the job's company looks public given the text it was found in.
func (f *PublicCompanyFilter) Match(job model.Job, context string) bool {
	return f.classifier.IsPublic(job.Company, context)
}
