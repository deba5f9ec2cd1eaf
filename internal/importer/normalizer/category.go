package normalizer

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Category names emitted by the classifier.
const (
	CategoryFood           = "food"
	CategoryShopping       = "shopping"
	CategoryTransportation = "transportation"
	CategoryUtilities      = "utilities"
	CategoryEntertainment  = "entertainment"
	CategoryHealthcare     = "healthcare"
	CategoryEducation      = "education"
	CategoryRent           = "rent"
	CategoryOthers         = "others"
)

// categoryRules is ordered by precedence: when a text matches keywords from
// more than one category, the earliest category wins. "Restaurant bill" is
// food, not utilities.
var categoryRules = []struct {
	name     string
	keywords []string
}{
	{CategoryFood, []string{"food", "restaurant", "dining"}},
	{CategoryShopping, []string{"shop", "retail", "store"}},
	{CategoryTransportation, []string{"transport", "travel", "cab", "taxi", "ride"}},
	{CategoryUtilities, []string{"bill", "util"}},
	{CategoryEntertainment, []string{"entertainment", "movie", "game"}},
	{CategoryHealthcare, []string{"health", "doctor", "medical"}},
	{CategoryEducation, []string{"edu", "school", "college"}},
	{CategoryRent, []string{"rent", "house", "home"}},
}

var (
	classifierOnce sync.Once
	classifier     *ahocorasick.Matcher
	patternRank    []int
)

func buildClassifier() {
	var patterns [][]byte
	for rank, rule := range categoryRules {
		for _, kw := range rule.keywords {
			patterns = append(patterns, []byte(kw))
			patternRank = append(patternRank, rank)
		}
	}
	classifier = ahocorasick.NewMatcher(patterns)
}

// ClassifyCategory maps free text (a raw category value or a description) to
// one of the known category names. Unknown text maps to "others".
func ClassifyCategory(text string) string {
	classifierOnce.Do(buildClassifier)
	hits := classifier.Match([]byte(strings.ToLower(text)))
	best := -1
	for _, hit := range hits {
		rank := patternRank[hit]
		if best < 0 || rank < best {
			best = rank
		}
	}
	if best < 0 {
		return CategoryOthers
	}
	return categoryRules[best].name
}
