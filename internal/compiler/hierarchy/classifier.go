package hierarchy

// Category is the stage category a declaration is classified into
type Category string

const (
	// Unclassified means no recognized ancestor was found
	Unclassified Category = ""
	// Source stages produce records
	Source Category = "SOURCE"
	// Processor stages transform records
	Processor Category = "PROCESSOR"
	// Target stages consume records
	Target Category = "TARGET"
	// Error marks error-definition enums
	Error Category = "ERROR"
)

// Recognized API type names.
const (
	APISource                    = "pipeline.api.Source"
	APIBaseSource                = "pipeline.api.base.BaseSource"
	APIProcessor                 = "pipeline.api.Processor"
	APIBaseProcessor             = "pipeline.api.base.BaseProcessor"
	APIRecordProcessor           = "pipeline.api.base.RecordProcessor"
	APISingleLaneProcessor       = "pipeline.api.base.SingleLaneProcessor"
	APISingleLaneRecordProcessor = "pipeline.api.base.SingleLaneRecordProcessor"
	APITarget                    = "pipeline.api.Target"
	APIBaseTarget                = "pipeline.api.base.BaseTarget"
	APIErrorCode                 = "pipeline.api.ErrorCode"
	APIValuesProvider            = "pipeline.api.ValuesProvider"
)

// Rule maps a category to the ancestor names that select it
type Rule struct {
	Category  Category
	Ancestors []string
}

// DefaultTable is the recognized-type table in precedence order
var DefaultTable = []Rule{
	{Category: Source, Ancestors: []string{APISource, APIBaseSource}},
	{Category: Processor, Ancestors: []string{
		APIProcessor,
		APIBaseProcessor,
		APIRecordProcessor,
		APISingleLaneProcessor,
		APISingleLaneRecordProcessor,
	}},
	{Category: Target, Ancestors: []string{APITarget, APIBaseTarget}},
	{Category: Error, Ancestors: []string{APIErrorCode}},
}

// Classification is the result of classifying an ancestor set
type Classification struct {
	// Category is the highest-precedence matching category
	Category Category
	// Matches lists every matching category in precedence order
	Matches []Category
}

// Classified reports whether any recognized ancestor was found
func (c Classification) Classified() bool {
	return c.Category != Unclassified
}

// Ambiguous reports whether ancestors from more than one category were found
func (c Classification) Ambiguous() bool {
	return len(c.Matches) > 1
}

// IsStage reports whether the classification is an unambiguous stage category
func (c Classification) IsStage() bool {
	if c.Ambiguous() {
		return false
	}
	switch c.Category {
	case Source, Processor, Target:
		return true
	}
	return false
}

// Classifier matches ancestor sets against an ordered table
type Classifier struct {
	table []Rule
}

// NewClassifier creates a classifier. A nil table uses DefaultTable.
func NewClassifier(table []Rule) *Classifier {
	if table == nil {
		table = DefaultTable
	}
	return &Classifier{table: table}
}

// Classify returns the categories selected by the ancestor set
func (c *Classifier) Classify(ancestors *AncestorSet) Classification {
	var result Classification
	for _, rule := range c.table {
		for _, name := range rule.Ancestors {
			if ancestors.Contains(name) {
				result.Matches = append(result.Matches, rule.Category)
				break
			}
		}
	}
	if len(result.Matches) > 0 {
		result.Category = result.Matches[0]
	}
	return result
}
