package scoring

import "github.com/matchminds/backend/internal/models"

var (
	highlyCompatible = models.Category{
		Name:    models.CategoryHighlyCompatible,
		Quote:   "“A true friend is one soul in two bodies.” – Aristotle",
		Comment: "😄 You guys are practically two peas in a pod!",
		Color:   "#2e8b57",
	}
	compatible = models.Category{
		Name:    models.CategoryCompatible,
		Quote:   "“Friendship is the only cement that will ever hold the world together.” – Woodrow Wilson",
		Comment: "🙂 Great potential for an awesome friendship!",
		Color:   "#6a5acd",
	}
	somewhatCompatible = models.Category{
		Name:    models.CategorySomewhatCompatible,
		Quote:   "“A friend may well be reckoned the masterpiece of nature.” – Ralph Waldo Emerson",
		Comment: "😅 You’ll have fun, but expect some quirks!",
		Color:   "#ffa500",
	}
	lessCompatible = models.Category{
		Name:    models.CategoryLessCompatible,
		Quote:   "“Friendship is unnecessary, like philosophy, like art... It has no survival value; rather it is one of those things which give value to survival.” – C.S. Lewis",
		Comment: "😬 Opposites attract, but brace yourself!",
		Color:   "#b22222",
	}
)

// Categorize maps a percentage onto the fixed caption table. Thresholds are
// strict: exactly 80 is Compatible, exactly 40 is Less Compatible.
func Categorize(percentage float64) models.Category {
	switch {
	case percentage > 80:
		return highlyCompatible
	case percentage > 70:
		return compatible
	case percentage > 40:
		return somewhatCompatible
	default:
		return lessCompatible
	}
}

// Categories lists every category from best to worst.
func Categories() []models.Category {
	return []models.Category{highlyCompatible, compatible, somewhatCompatible, lessCompatible}
}
