package chat

import "fmt"

// ResolveName returns a display name distinct from every name in taken.
// The desired name is kept as-is when free; otherwise candidates get a
// "#n" suffix, n counting same-named occupants (first collision → "Name#2").
// Each candidate is rechecked against taken, so the loop is bounded by
// len(taken)+1. Pure function, no mutation.
func ResolveName(taken map[string]struct{}, name string) string {
	if _, clash := taken[name]; !clash {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s#%d", name, n)
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
	}
}
