package images

// Strategy phrases one encyclopedia search query for a department name
type Strategy func(name string) string

// DefaultStrategies are tried left to right; word order varies because the
// search backend ranks exact title phrasings first.
var DefaultStrategies = []Strategy{
	func(name string) string { return "Departamento de " + name + " (Colombia)" },
	func(name string) string { return name + " (departamento de Colombia)" },
	func(name string) string { return "Departamento del " + name + " (Colombia)" },
	func(name string) string { return name + " Colombia departamento" },
}

// Queries returns the search texts for name in the order they are attempted
func Queries(name string) []string {
	return buildQueries(DefaultStrategies, name)
}

func buildQueries(strategies []Strategy, name string) []string {
	queries := make([]string, len(strategies))
	for i, s := range strategies {
		queries[i] = s(name)
	}
	return queries
}
