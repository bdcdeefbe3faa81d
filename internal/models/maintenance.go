package models

import "encoding/json"

// MaintenanceRecord is one unit of maintenance work performed on equipment.
// EquipmentID is not required to resolve; see service.JoinResolver.
type MaintenanceRecord struct {
	ID               string           `json:"id" validate:"required"`
	EquipmentID      string           `json:"equipmentId"`
	Date             Date             `json:"date"`
	Type             MaintenanceType  `json:"type" validate:"closedset"`
	Technician       string           `json:"technician" validate:"required"`
	HoursSpent       float64          `json:"hoursSpent" validate:"gte=0,lte=24"`
	Description      string           `json:"description"`
	PartsReplaced    []string         `json:"partsReplaced"`
	Priority         Priority         `json:"priority" validate:"closedset"`
	CompletionStatus CompletionStatus `json:"completionStatus" validate:"closedset"`
}

var maintenanceFields = []string{"id", "equipmentId", "date", "type", "technician", "hoursSpent", "description", "partsReplaced", "priority", "completionStatus"}

func (m MaintenanceRecord) RecordID() string { return m.ID }

func (m MaintenanceRecord) WithID(id string) MaintenanceRecord {
	m.ID = id
	return m
}

// maintenanceWire has MaintenanceRecord's fields without its methods.
type maintenanceWire MaintenanceRecord

func (m MaintenanceRecord) wire() maintenanceWire {
	if m.PartsReplaced == nil {
		m.PartsReplaced = []string{}
	}
	return maintenanceWire(m)
}

// MarshalJSON always writes partsReplaced as an array.
func (m MaintenanceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

func (m MaintenanceRecord) Fields() []string { return maintenanceFields }

func (m MaintenanceRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "equipmentId":
		return m.EquipmentID, true
	case "date":
		return m.Date.Time, !m.Date.IsZero()
	case "type":
		return string(m.Type), m.Type != ""
	case "technician":
		return m.Technician, true
	case "hoursSpent":
		return m.HoursSpent, true
	case "description":
		return m.Description, true
	case "partsReplaced":
		return m.PartsReplaced, true
	case "priority":
		return string(m.Priority), m.Priority != ""
	case "completionStatus":
		return string(m.CompletionStatus), m.CompletionStatus != ""
	}
	return nil, false
}
