package poker

// HoleCardCategory is a coarse bucket of starting hand strength
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// Bucket boundaries are positions in the starting hand table.
var categoryBands = []struct {
	limit    int
	category HoleCardCategory
}{
	{8, CategoryPremium}, // AA-JJ, AKs, AQs, KQs, AJs
	{20, CategoryStrong},
	{50, CategoryMedium},
	{90, CategoryWeak},
}

// CategorizeHoleCards buckets two hole cards by their starting hand table position.
func CategorizeHoleCards(a, b Card) HoleCardCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return CategoryUnknown
	}
	i, ok := startingHandIndex[StartingHandKey(a, b)]
	if !ok {
		return CategoryUnknown
	}
	for _, band := range categoryBands {
		if i < band.limit {
			return band.category
		}
	}
	return CategoryTrash
}
