package domain

import "fmt"

// FormatProjectID renders the short sequential project token shown to
// clients and admins (P0001, P0002, ...). The sequence itself is owned by
// the repository; widths past four digits keep growing naturally.
func FormatProjectID(seq int64) string {
	return fmt.Sprintf("P%04d", seq)
}
