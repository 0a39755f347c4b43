package ecs

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	EventQueueCount    int
	PendingEventCount  int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes a single archetype.
type ArchetypeStats struct {
	ID             uint32
	ComponentTypes []string
	EntityCount    int
}

// CollectStats walks the storage and counts archetypes, entities and singletons.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		SingletonCount:  len(s.singletons),
		EventQueueCount: len(s.events),
	}

	for _, archetype := range s.GetArchetypes() {
		count := archetype.Len()
		if count == 0 {
			continue
		}

		types := make([]string, len(archetype.types))
		for i, t := range archetype.types {
			types[i] = t.String()
		}

		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             archetype.id,
			ComponentTypes: types,
			EntityCount:    count,
		})
		stats.ArchetypeCount++
		stats.TotalEntityCount += count
	}

	for _, t := range s.eventOrder {
		stats.PendingEventCount += s.events[t].pending()
	}

	for _, t := range s.singletonOrder {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}

	return stats
}
