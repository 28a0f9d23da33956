package service

import (
	"hash/fnv"
	"math"
	"strconv"

	"contaflow/internal/models"
)

// keySegmentDelimiter joins the surviving segments of a deduplication key.
const keySegmentDelimiter = "|"

// textSegment normalizes a textual key component. Nil input and strings that
// are empty after trimming are absent and yield nil.
func textSegment(s *string) *string {
	if s == nil {
		return nil
	}
	n := normalizeKeyText(*s)
	if n == "" {
		return nil
	}
	return &n
}

// numberSegment normalizes a numeric key component to a fixed two-decimal
// representation, so 12.5 and 12.50 build the same key. Non-finite numbers
// are absent.
func numberSegment(f *float64) *string {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := strconv.FormatFloat(*f, 'f', 2, 64)
	return &v
}

// intSegment adapts an optional integer (e.g. a day of month) to the numeric
// segment normalization.
func intSegment(i *int) *string {
	if i == nil {
		return nil
	}
	f := float64(*i)
	return numberSegment(&f)
}

// BuildDedupKey joins the non-absent segments with "|". Absent segments are
// dropped entirely rather than kept as empty placeholders, so two inputs that
// differ only in which optional fields are present can collide when the
// present fields agree. That trade-off is intentional and preserved.
// Returns nil when no segment survives.
func BuildDedupKey(segments ...*string) *string {
	var key string
	var have bool
	for _, seg := range segments {
		if seg == nil {
			continue
		}
		if have {
			key += keySegmentDelimiter
		}
		key += *seg
		have = true
	}
	if !have {
		return nil
	}
	return &key
}

// hashKey produces a short, stable, well-distributed identifier for a
// normalized key string. FNV-1a 64-bit rendered in base 36; the exact
// algorithm is frozen because the resulting ids are referenced externally and
// must never change across releases.
func hashKey(s string) string {
	h := fnv.New64a()
	h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 36)
}

// BuildExpenseID derives a stable record id from a deduplication key.
// Identical key always yields the identical id.
func BuildExpenseID(prefix, key string) string {
	return prefix + "-" + hashKey(NormalizeIdentifier(key))
}

// DocumentDedupKey builds the deduplication key for an invoice/receipt-style
// document. Two documents describing the same real-world charge must build
// the same key regardless of surface formatting.
func DocumentDedupKey(meta *models.DocumentMetadata) *string {
	source := models.SourceTypeFatura
	if meta.SourceType != nil {
		source = *meta.SourceType
	}
	company := meta.CompanyName
	if company == nil {
		company = &meta.OriginalName
	}
	return BuildDedupKey(
		textSegment(&source),
		textSegment(company),
		numberSegment(meta.Amount),
		textSegment(meta.Currency),
		textSegment(meta.DueDate),
		textSegment(meta.AccountHint),
		textSegment(meta.SupplierTaxID),
	)
}

// RecurringDedupKey builds the deduplication key for a recurring-expense
// candidate detected on a bank statement. sourceType and statementIBAN come
// from the enclosing extraction.
func RecurringDedupKey(sourceType, statementIBAN *string, cand *models.RecurringExpenseCandidate) *string {
	source := models.SourceTypeExtracto
	if sourceType != nil {
		source = *sourceType
	}
	accountRef := statementIBAN
	if accountRef == nil {
		accountRef = cand.AccountHint
	}
	return BuildDedupKey(
		textSegment(&source),
		textSegment(accountRef),
		textSegment(&cand.Description),
		numberSegment(cand.AverageAmount),
		textSegment(cand.Currency),
		textSegment(cand.AccountHint),
		intSegment(cand.DayOfMonth),
	)
}
