package domain

import "fmt"

// Reference numbers are human-facing identifiers of the form NEB-<year>-<seq>,
// with the sequence scoped to the pledge year and zero-padded to six digits.

func ReferencePrefix(year int) string {
	return fmt.Sprintf("NEB-%d-", year)
}

func FormatReference(year int, seq int64) string {
	return fmt.Sprintf("NEB-%d-%06d", year, seq)
}
