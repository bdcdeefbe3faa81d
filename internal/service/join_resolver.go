package service

import "github.com/noah-isme/maintenance-tracker-api/internal/models"

// JoinResolver attaches equipment to maintenance records from one equipment snapshot.
// Resolution never fails: a dangling equipmentId yields an UnresolvedEquipment link.
type JoinResolver struct {
	byID map[string]models.Equipment
}

// NewJoinResolver indexes snapshot by id. With duplicate ids the first record wins.
func NewJoinResolver(snapshot []models.Equipment) *JoinResolver {
	byID := make(map[string]models.Equipment, len(snapshot))
	for _, eq := range snapshot {
		if _, seen := byID[eq.ID]; !seen {
			byID[eq.ID] = eq
		}
	}
	return &JoinResolver{byID: byID}
}

// Resolve joins a single record.
func (r *JoinResolver) Resolve(record models.MaintenanceRecord) models.EnrichedMaintenanceRecord {
	if eq, ok := r.byID[record.EquipmentID]; ok {
		return models.EnrichedMaintenanceRecord{MaintenanceRecord: record, Link: models.ResolvedEquipment{Equipment: eq}}
	}
	return models.EnrichedMaintenanceRecord{MaintenanceRecord: record, Link: models.UnresolvedEquipment{EquipmentID: record.EquipmentID}}
}

// ResolveAll joins records preserving their order.
func (r *JoinResolver) ResolveAll(records []models.MaintenanceRecord) []models.EnrichedMaintenanceRecord {
	out := make([]models.EnrichedMaintenanceRecord, 0, len(records))
	for _, record := range records {
		out = append(out, r.Resolve(record))
	}
	return out
}

// Resolve joins record against an equipment snapshot without keeping an index.
func Resolve(record models.MaintenanceRecord, snapshot []models.Equipment) models.EnrichedMaintenanceRecord {
	for _, eq := range snapshot {
		if eq.ID == record.EquipmentID {
			return models.EnrichedMaintenanceRecord{MaintenanceRecord: record, Link: models.ResolvedEquipment{Equipment: eq}}
		}
	}
	return models.EnrichedMaintenanceRecord{MaintenanceRecord: record, Link: models.UnresolvedEquipment{EquipmentID: record.EquipmentID}}
}
