package model

// Path represents a file system path.
type Path string

// Scenario is a test case to refine against a bundled program.
type Scenario struct {
	Name    string
	Program string
	// TargetClass is the class under test; its instances are searched even when unused.
	TargetClass string
	Seed        uint64
	Test        *TestCase
	History     MutationHistory
	// Origin is the file the scenario was loaded from.
	Origin Path
}
