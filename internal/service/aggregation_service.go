package service

import (
	"slices"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
)

// Aggregations are pure functions over collection snapshots. Every series lists each member
// of its closed set in canonical order, zero-filled.

// StatusDistribution counts equipment per status.
func StatusDistribution(equipment []models.Equipment) []dto.Bucket {
	return countBy(models.EquipmentStatuses(), equipment, func(e models.Equipment) models.EquipmentStatus { return e.Status })
}

// HoursByDepartment sums maintenance hours per department of the referenced equipment.
// Records whose equipment cannot be resolved contribute nothing.
func HoursByDepartment(records []models.MaintenanceRecord, equipment []models.Equipment) []dto.Bucket {
	resolver := NewJoinResolver(equipment)
	totals := make(map[models.Department]float64)
	for _, record := range records {
		dept, ok := resolver.Resolve(record).Department()
		if !ok {
			continue
		}
		totals[dept] += record.HoursSpent
	}
	buckets := make([]dto.Bucket, 0, len(models.Departments()))
	for _, dept := range models.Departments() {
		buckets = append(buckets, dto.Bucket{Key: string(dept), Value: totals[dept]})
	}
	return buckets
}

// TypeDistribution counts maintenance records per type.
func TypeDistribution(records []models.MaintenanceRecord) []dto.Bucket {
	return countBy(models.MaintenanceTypes(), records, func(m models.MaintenanceRecord) models.MaintenanceType { return m.Type })
}

// PriorityDistribution counts maintenance records per priority.
func PriorityDistribution(records []models.MaintenanceRecord) []dto.Bucket {
	return countBy(models.Priorities(), records, func(m models.MaintenanceRecord) models.Priority { return m.Priority })
}

// CompletionDistribution counts maintenance records per completion status.
func CompletionDistribution(records []models.MaintenanceRecord) []dto.Bucket {
	return countBy(models.CompletionStatuses(), records, func(m models.MaintenanceRecord) models.CompletionStatus { return m.CompletionStatus })
}

// RecentMaintenance returns the n latest records by date, newest first. Records on the same
// date keep storage order.
func RecentMaintenance(records []models.MaintenanceRecord, equipment []models.Equipment, n int) []dto.RecentMaintenanceItem {
	if n <= 0 {
		return []dto.RecentMaintenanceItem{}
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.MaintenanceRecord) int {
		return b.Date.Compare(a.Date.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	resolver := NewJoinResolver(equipment)
	items := make([]dto.RecentMaintenanceItem, 0, len(sorted))
	for _, record := range sorted {
		enriched := resolver.Resolve(record)
		items = append(items, dto.RecentMaintenanceItem{
			ID:               record.ID,
			EquipmentID:      record.EquipmentID,
			EquipmentName:    enriched.EquipmentName(),
			Date:             record.Date,
			Type:             record.Type,
			Technician:       record.Technician,
			HoursSpent:       record.HoursSpent,
			CompletionStatus: record.CompletionStatus,
		})
	}
	return items
}

func countBy[K ~string, T any](keys []K, items []T, key func(T) K) []dto.Bucket {
	counts := make(map[K]int, len(keys))
	for _, item := range items {
		counts[key(item)]++
	}
	buckets := make([]dto.Bucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, dto.Bucket{Key: string(k), Value: float64(counts[k])})
	}
	return buckets
}
