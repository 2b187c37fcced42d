package planner

// Per-tier facility quotas. Tier follows the colony's development level;
// out-of-range tiers clamp to the table edges.

var towerQuotaByTier = map[int]int{
	1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 2, 7: 3, 8: 6,
}

var extensionQuotaByTier = map[int]int{
	1: 0, 2: 5, 3: 10, 4: 20, 5: 30, 6: 40, 7: 50, 8: 60,
}

func towerQuota(tier int) int {
	if tier > 8 {
		tier = 8
	}
	return towerQuotaByTier[tier]
}

func extensionQuota(tier int) int {
	if tier > 8 {
		tier = 8
	}
	return extensionQuotaByTier[tier]
}

// towerOffsets are the candidate tower positions relative to an anchor,
// tried in order.
var towerOffsets = [][2]int{
	{-2, -2}, {2, -2}, {-2, 2}, {2, 2},
	{0, -3}, {3, 0}, {0, 3}, {-3, 0},
}

// extensionOffsets is the preferred extension layout relative to an
// anchor: a checkerboard so every extension keeps a walkable neighbor.
var extensionOffsets = [][2]int{
	{-2, 0}, {2, 0}, {0, -2}, {0, 2},
	{-3, -1}, {-3, 1}, {3, -1}, {3, 1},
	{-1, -3}, {1, -3}, {-1, 3}, {1, 3},
	{-4, 0}, {4, 0}, {0, -4}, {0, 4},
	{-4, -2}, {-4, 2}, {4, -2}, {4, 2},
	{-2, -4}, {2, -4}, {-2, 4}, {2, 4},
}
