package domain

import "strconv"

// Sequence describes a named monotonic counter.
type Sequence struct {
	Name  string
	Start int64
}

var (
	AccountNumberSequence = Sequence{Name: "AccountNumberSequence", Start: 11235813}
	IFSCSequence          = Sequence{Name: "IFSCSequence", Start: 5993}
)

// Sequences lists every sequence the ledger allocates from.
var Sequences = []Sequence{AccountNumberSequence, IFSCSequence}

// LookupSequence returns the definition registered under name.
func LookupSequence(name string) (Sequence, bool) {
	for _, s := range Sequences {
		if s.Name == name {
			return s, true
		}
	}
	return Sequence{}, false
}

// IFSCPrefix is prepended to IFSCSequence values to build branch codes.
const IFSCPrefix = "SBIFSC"

// AccountNumberFromSequence renders a raw AccountNumberSequence value.
func AccountNumberFromSequence(v int64) string {
	return strconv.FormatInt(v, 10)
}

// IFSCFromSequence renders a raw IFSCSequence value.
func IFSCFromSequence(v int64) string {
	return IFSCPrefix + strconv.FormatInt(v, 10)
}
