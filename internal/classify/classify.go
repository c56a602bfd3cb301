// Package classify labels a contract with its template family.
package classify

import (
	"strings"

	"github.com/dgallion1/tocgest/internal/doctree"
)

type rule struct {
	docType doctree.DocumentType
	phrase  string
	acronym string
}

// Checked in order; the first rule whose phrase or acronym occurs wins.
var rules = []rule{
	{doctree.TypeECCA, "EQUITY CAPITAL CONTRIBUTION AGREEMENT", "ECCA"},
	{doctree.TypeMIPA, "MASTER INTEREST PURCHASE AGREEMENT", "MIPA"},
	{doctree.TypeLLCA, "LIMITED LIABILITY COMPANY AGREEMENT", "LLCA"},
}

// Classify returns the document type signified by text. Matching is a
// case-insensitive substring test, so an acronym embedded in a longer word
// still counts.
func Classify(text string) doctree.DocumentType {
	upper := strings.ToUpper(text)
	for _, r := range rules {
		if strings.Contains(upper, r.phrase) || strings.Contains(upper, r.acronym) {
			return r.docType
		}
	}
	return doctree.TypeUnknown
}

// Supported lists the known document types in priority order.
func Supported() []doctree.DocumentType {
	out := make([]doctree.DocumentType, len(rules))
	for i, r := range rules {
		out[i] = r.docType
	}
	return out
}
