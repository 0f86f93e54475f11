package model

// MutationKind is the kind of change a genetic operator applied to a statement.
type MutationKind int

const (
	// Insertion marks a statement added by a mutation.
	Insertion MutationKind = iota
	// Change marks a statement whose value or parameters were modified.
	Change
	// Deletion marks a statement that was removed.
	Deletion
)

func (k MutationKind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Change:
		return "change"
	case Deletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// ParseMutationKind is the inverse of MutationKind.String.
func ParseMutationKind(s string) (MutationKind, bool) {
	for _, kind := range []MutationKind{Insertion, Change, Deletion} {
		if kind.String() == s {
			return kind, true
		}
	}

	return Change, false
}

// MutationEntry records one mutation of the statement with the given ID.
type MutationEntry struct {
	StatementID int
	Kind        MutationKind
}

// MutationHistory is the ordered log of mutations since the last selective local search.
type MutationHistory []MutationEntry

// Add appends an entry.
func (h *MutationHistory) Add(statementID int, kind MutationKind) {
	*h = append(*h, MutationEntry{StatementID: statementID, Kind: kind})
}

// Clear drops every entry.
func (h *MutationHistory) Clear() {
	*h = nil
}
