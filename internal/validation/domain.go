package validation

import (
	"fmt"

	"github.com/hyperengineering/nextbest/internal/types"
)

const (
	MaxNameLength  = 200
	MaxLabelLength = 200
	MaxTagLength   = 50
	MaxTags        = 20
	MaxAward       = 1000
)

func categoryNames() []string {
	out := make([]string, len(types.AllCategories))
	for i, c := range types.AllCategories {
		out[i] = string(c)
	}
	return out
}

func priceNames() []string {
	out := make([]string, len(types.AllPriceTiers))
	for i, p := range types.AllPriceTiers {
		out[i] = string(p)
	}
	return out
}

// ValidateItem checks a single catalog entry. Field names carry the index so
// errors for a whole catalog stay distinguishable.
func ValidateItem(index int, it types.Item) []ValidationError {
	var c Collector
	prefix := fmt.Sprintf("items[%d]", index)

	c.Add(ValidateRequired(prefix+".id", it.ID))
	c.Add(ValidateText(prefix+".id", it.ID))
	c.Add(ValidateRequired(prefix+".name", it.Name))
	c.Add(ValidateText(prefix+".name", it.Name))
	c.Add(ValidateMaxLength(prefix+".name", it.Name, MaxNameLength))
	c.Add(ValidateEnum(prefix+".category", string(it.Category), categoryNames()))
	c.Add(ValidateEnum(prefix+".price", string(it.Price), priceNames()))
	c.Add(ValidateRange(prefix+".rating", it.Rating, 0, 5))
	c.Add(ValidateNonNegative(prefix+".distance_km", it.DistanceKm))

	if len(it.Tags) > MaxTags {
		c.Add(&ValidationError{
			Field:   prefix + ".tags",
			Message: fmt.Sprintf("exceeds maximum of %d tags", MaxTags),
		})
	}
	for j, tag := range it.Tags {
		field := fmt.Sprintf("%s.tags[%d]", prefix, j)
		c.Add(ValidateRequired(field, tag))
		c.Add(ValidateMaxLength(field, tag, MaxTagLength))
	}

	return c.Errors()
}

// ValidateCatalog checks every item and that IDs are unique.
func ValidateCatalog(items []types.Item) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int, len(items))
	for i, it := range items {
		errs = append(errs, ValidateItem(i, it)...)
		if first, dup := seen[it.ID]; dup && it.ID != "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("items[%d].id", i),
				Message: fmt.Sprintf("duplicates items[%d].id %q", first, it.ID),
			})
			continue
		}
		seen[it.ID] = i
	}
	return errs
}

// ValidatePreferences checks a preferences value supplied by a caller.
// An empty category set is allowed; it simply matches nothing.
func ValidatePreferences(p types.Preferences) []ValidationError {
	var c Collector
	for i, cat := range p.Categories {
		c.Add(ValidateEnum(fmt.Sprintf("categories[%d]", i), string(cat), categoryNames()))
	}
	c.Add(ValidateNonNegative("max_distance_km", p.MaxDistanceKm))
	for i, tier := range p.PricePrefs {
		c.Add(ValidateEnum(fmt.Sprintf("price_prefs[%d]", i), string(tier), priceNames()))
	}
	return c.Errors()
}

// ValidateAwardRequest checks a manual award.
func ValidateAwardRequest(req types.AwardRequest) []ValidationError {
	var c Collector
	c.Add(ValidateRange("amount", float64(req.Amount), -MaxAward, MaxAward))
	if req.Win != nil {
		c.Add(ValidateRequired("win.game", string(req.Win.Game)))
		c.Add(ValidateRequired("win.label", req.Win.Label))
		c.Add(ValidateText("win.label", req.Win.Label))
		c.Add(ValidateMaxLength("win.label", req.Win.Label, MaxLabelLength))
	}
	return c.Errors()
}
