package domain

// MonthNames are the collection names used by the upstream datasets, in
// calendar order.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthNumber returns the 1-based calendar number for a month collection
// name, or 0 if the name is not a month.
func MonthNumber(name string) int {
	for i, m := range MonthNames {
		if m == name {
			return i + 1
		}
	}
	return 0
}
