package dataset

// DefaultIdentifier is the column used to label each ranked entity.
const DefaultIdentifier = "Country"

// Vocabulary is the closed set of metric columns a table may carry, one per
// MBTI personality type. Matching against table headers is case-sensitive.
var Vocabulary = []string{
	// Analysts
	"INTJ", "INTP", "ENTJ", "ENTP",
	// Diplomats
	"INFJ", "INFP", "ENFJ", "ENFP",
	// Sentinels
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	// Explorers
	"ISTP", "ISFP", "ESTP", "ESFP",
}

var vocabularySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Vocabulary))
	for _, name := range Vocabulary {
		set[name] = struct{}{}
	}
	return set
}()

// IsMetric reports whether name is part of the metric vocabulary.
func IsMetric(name string) bool {
	_, ok := vocabularySet[name]
	return ok
}
