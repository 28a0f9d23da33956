package service

import (
	"strings"

	"contaflow/internal/models"
)

// minSubstringMatchLen is the floor below which substring containment is not
// trusted: hints are often truncated or masked IBAN fragments, and short
// generic tokens ("PT", "NL") would otherwise match everything.
const minSubstringMatchLen = 4

// accountCandidates gathers every identifying string of an account: id, name,
// IBAN when set, and any string or string-array values nested in the metadata
// map (alias lists, legacy account numbers).
func accountCandidates(acc *models.Account) []string {
	candidates := []string{acc.ID, acc.Name}
	if acc.IBAN != nil {
		candidates = append(candidates, *acc.IBAN)
	}
	for _, v := range acc.Metadata {
		switch value := v.(type) {
		case string:
			candidates = append(candidates, value)
		case []string:
			candidates = append(candidates, value...)
		case []interface{}:
			for _, item := range value {
				if s, ok := item.(string); ok {
					candidates = append(candidates, s)
				}
			}
		}
	}
	return candidates
}

// matchIdentifier compares two normalized identifiers: exact match, or mutual
// substring containment when both sides are at least minSubstringMatchLen long.
func matchIdentifier(normHint, normCandidate string) bool {
	if normHint == "" || normCandidate == "" {
		return false
	}
	if normHint == normCandidate {
		return true
	}
	if len(normHint) < minSubstringMatchLen || len(normCandidate) < minSubstringMatchLen {
		return false
	}
	return strings.Contains(normCandidate, normHint) || strings.Contains(normHint, normCandidate)
}

// FindAccountByHint returns the first account whose identifying strings match
// the hint, in input order. No single-account fallback: this is a pure lookup,
// not an assignment decision.
func FindAccountByHint(hint string, accounts []models.Account) *models.Account {
	normHint := NormalizeIdentifier(hint)
	if normHint == "" {
		return nil
	}
	for i := range accounts {
		for _, candidate := range accountCandidates(&accounts[i]) {
			if matchIdentifier(normHint, NormalizeIdentifier(candidate)) {
				return &accounts[i]
			}
		}
	}
	return nil
}

// ResolveAccountID decides which account an extracted document belongs to.
// An already-assigned account is sticky: extraction never silently re-links an
// expense. With no usable hint the sole account wins by default; with several
// accounts an empty or unmatched hint stays unresolved.
func ResolveAccountID(hint *string, accounts []models.Account, existingAccountID *string) *string {
	if existingAccountID != nil && *existingAccountID != "" {
		return existingAccountID
	}
	if len(accounts) == 0 {
		return nil
	}

	normHint := ""
	if hint != nil {
		normHint = NormalizeIdentifier(*hint)
	}
	if normHint == "" {
		if len(accounts) == 1 {
			return &accounts[0].ID
		}
		return nil
	}

	for i := range accounts {
		for _, candidate := range accountCandidates(&accounts[i]) {
			if matchIdentifier(normHint, NormalizeIdentifier(candidate)) {
				return &accounts[i].ID
			}
		}
	}

	if len(accounts) == 1 {
		return &accounts[0].ID
	}
	return nil
}
