package utils

// CreateRankList returns the ranks 1..count for items that are already
// sorted best first.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(i + 1)
	}
	return ranks
}
