package models

import "encoding/json"

// UnresolvedEquipmentName is shown wherever a maintenance record's equipment cannot be found.
const UnresolvedEquipmentName = "N/A"

// EquipmentLink is the outcome of resolving MaintenanceRecord.EquipmentID.
// It is either ResolvedEquipment or UnresolvedEquipment.
type EquipmentLink interface {
	isEquipmentLink()
}

// ResolvedEquipment carries the referenced equipment.
type ResolvedEquipment struct {
	Equipment Equipment
}

// UnresolvedEquipment records a dangling reference.
type UnresolvedEquipment struct {
	EquipmentID string
}

func (ResolvedEquipment) isEquipmentLink()   {}
func (UnresolvedEquipment) isEquipmentLink() {}

// EnrichedMaintenanceRecord is a maintenance record joined with its equipment.
type EnrichedMaintenanceRecord struct {
	MaintenanceRecord
	Link EquipmentLink
}

// Equipment returns the referenced equipment when the join resolved.
func (r EnrichedMaintenanceRecord) Equipment() (Equipment, bool) {
	resolved, ok := r.Link.(ResolvedEquipment)
	if !ok {
		return Equipment{}, false
	}
	return resolved.Equipment, true
}

// EquipmentName falls back to UnresolvedEquipmentName.
func (r EnrichedMaintenanceRecord) EquipmentName() string {
	if eq, ok := r.Equipment(); ok {
		return eq.Name
	}
	return UnresolvedEquipmentName
}

// Department is absent for unresolved records.
func (r EnrichedMaintenanceRecord) Department() (Department, bool) {
	if eq, ok := r.Equipment(); ok {
		return eq.Department, true
	}
	return "", false
}

var enrichedFields = append(append([]string{}, maintenanceFields...), "equipmentName", "department")

func (r EnrichedMaintenanceRecord) Fields() []string { return enrichedFields }

func (r EnrichedMaintenanceRecord) Field(name string) (any, bool) {
	switch name {
	case "equipmentName":
		return r.EquipmentName(), true
	case "department":
		dept, ok := r.Department()
		return string(dept), ok
	}
	return r.MaintenanceRecord.Field(name)
}

// MarshalJSON flattens the record and adds the denormalized columns.
func (r EnrichedMaintenanceRecord) MarshalJSON() ([]byte, error) {
	type wire struct {
		maintenanceWire
		EquipmentName string      `json:"equipmentName"`
		Department    *Department `json:"department,omitempty"`
		Resolved      bool        `json:"equipmentResolved"`
	}
	out := wire{maintenanceWire: r.MaintenanceRecord.wire(), EquipmentName: r.EquipmentName()}
	if dept, ok := r.Department(); ok {
		out.Department = &dept
		out.Resolved = true
	}
	return json.Marshal(out)
}
