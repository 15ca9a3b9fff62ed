package core

import "fmt"

// Occupancy slots are ordered sequences of agent ids. Insertion appends;
// removal scans by identity and preserves the order of the survivors, so a
// slot enumerates residents in arrival order at every quiescent point.

func insertID(slot []int, id int) []int {
	return append(slot, id)
}

// removeID deletes id from the slot by identity scan. The second return is
// false when the id is not resident, which callers surface as a consistency
// error: the occupancy index and the agent's cached position disagree.
func removeID(slot []int, id int) ([]int, bool) {
	for i, v := range slot {
		if v == id {
			return append(slot[:i], slot[i+1:]...), true
		}
	}
	return slot, false
}

func missingIDError(id int, where string) error {
	return fmt.Errorf("%w: id %d at %s", ErrAgentNotFound, id, where)
}
