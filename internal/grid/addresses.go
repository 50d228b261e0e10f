package grid

// RawAddresses holds address columns as the engine stored them: arbitrary
// string identifiers, before integer encoding.
type RawAddresses map[string]map[string][]string

// EncodeAddresses converts raw string identifiers into dense integer codes.
//
// The lookup is built fresh per grid instance and is shared across every
// address column of that instance, so a "bus" column in the load table and
// the "id" column of the bus table agree on the code for the same
// identifier. Codes are assigned in first-appearance order under a sorted
// walk of object types and roles, which makes the encoding deterministic
// for a given instance regardless of map iteration order.
func EncodeAddresses(raw RawAddresses) Addresses {
	codes := map[string]int{}
	next := 0
	out := make(Addresses, len(raw))
	for _, k := range SortedKeys(raw) {
		out[k] = make(map[string][]int, len(raw[k]))
		for _, role := range SortedKeys(raw[k]) {
			col := raw[k][role]
			enc := make([]int, len(col))
			for i, id := range col {
				c, ok := codes[id]
				if !ok {
					c = next
					codes[id] = c
					next++
				}
				enc[i] = c
			}
			out[k][role] = enc
		}
	}
	return out
}
