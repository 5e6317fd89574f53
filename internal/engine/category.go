package engine

// categoryRank is the total order over referee categories:
// provincial < autonomico < nacional < feb.
var categoryRank = map[string]int{
	"provincial": 1,
	"autonomico": 2,
	"nacional":   3,
	"feb":        4,
}

// rankOf returns the rank of a category name, or 0 if unknown/empty —
// an unknown category never satisfies a positive minimum.
func rankOf(category string) int {
	return categoryRank[category]
}
