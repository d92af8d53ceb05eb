package ecs

import "sort"

// StorageStats is a snapshot of storage occupancy.
type StorageStats struct {
	TotalEntityCount int
	SlotCount        int
	FreeSlotCount    int
	BlockCount       int
	ComponentCounts  [KindCount]int
	MaskBreakdown    []MaskStats
}

// MaskStats counts the entities sharing one exact component combination.
type MaskStats struct {
	Mask        KindMask
	EntityCount int
}

// CollectStats walks the storage and returns occupancy figures.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		TotalEntityCount: s.count,
		SlotCount:        len(s.entities),
		FreeSlotCount:    len(s.free),
		BlockCount: s.render.blockCount() + s.transform.blockCount() +
			s.rotation.blockCount() + s.light.blockCount(),
	}
	stats.ComponentCounts[KindRender] = s.render.count
	stats.ComponentCounts[KindTransform] = s.transform.count
	stats.ComponentCounts[KindRotation] = s.rotation.count
	stats.ComponentCounts[KindLight] = s.light.count

	byMask := make(map[KindMask]int)
	for _, rec := range s.entities {
		if rec.alive {
			byMask[rec.mask]++
		}
	}
	for mask, n := range byMask {
		stats.MaskBreakdown = append(stats.MaskBreakdown, MaskStats{Mask: mask, EntityCount: n})
	}
	sort.Slice(stats.MaskBreakdown, func(i, j int) bool {
		return stats.MaskBreakdown[i].Mask < stats.MaskBreakdown[j].Mask
	})

	return stats
}
