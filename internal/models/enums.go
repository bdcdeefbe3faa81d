package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Department is the owning plant department of a piece of equipment.
type Department string

const (
	DepartmentMachining Department = "Machining"
	DepartmentAssembly  Department = "Assembly"
	DepartmentPackaging Department = "Packaging"
	DepartmentShipping  Department = "Shipping"
)

// EquipmentStatus is the operational state of a piece of equipment.
type EquipmentStatus string

const (
	StatusOperational EquipmentStatus = "Operational"
	StatusDown        EquipmentStatus = "Down"
	StatusMaintenance EquipmentStatus = "Maintenance"
	StatusRetired     EquipmentStatus = "Retired"
)

// MaintenanceType classifies a maintenance record.
type MaintenanceType string

const (
	TypePreventive MaintenanceType = "Preventive"
	TypeRepair     MaintenanceType = "Repair"
	TypeEmergency  MaintenanceType = "Emergency"
)

// Priority ranks maintenance urgency.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// CompletionStatus tracks whether maintenance work is finished.
type CompletionStatus string

const (
	CompletionComplete     CompletionStatus = "Complete"
	CompletionIncomplete   CompletionStatus = "Incomplete"
	CompletionPendingParts CompletionStatus = "Pending Parts"
)

// Canonical enumeration orders. Aggregates and charts emit keys in exactly this order.
func Departments() []Department {
	return []Department{DepartmentMachining, DepartmentAssembly, DepartmentPackaging, DepartmentShipping}
}

func EquipmentStatuses() []EquipmentStatus {
	return []EquipmentStatus{StatusOperational, StatusDown, StatusMaintenance, StatusRetired}
}

func MaintenanceTypes() []MaintenanceType {
	return []MaintenanceType{TypePreventive, TypeRepair, TypeEmergency}
}

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func CompletionStatuses() []CompletionStatus {
	return []CompletionStatus{CompletionComplete, CompletionIncomplete, CompletionPendingParts}
}

// UnknownValueError reports a wire value outside a closed set.
type UnknownValueError struct {
	Kind  string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

func parseEnum[T ~string](raw string, members []T, kind string) (T, error) {
	value := T(raw)
	if slices.Contains(members, value) {
		return value, nil
	}
	return "", &UnknownValueError{Kind: kind, Value: raw}
}

func unmarshalEnum[T ~string](data []byte, members []T, kind string, dest *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s must be a string: %w", kind, err)
	}
	value, err := parseEnum(raw, members, kind)
	if err != nil {
		return err
	}
	*dest = value
	return nil
}

func ParseDepartment(raw string) (Department, error) {
	return parseEnum(raw, Departments(), "department")
}

func ParseEquipmentStatus(raw string) (EquipmentStatus, error) {
	return parseEnum(raw, EquipmentStatuses(), "status")
}

func ParseMaintenanceType(raw string) (MaintenanceType, error) {
	return parseEnum(raw, MaintenanceTypes(), "type")
}

func ParsePriority(raw string) (Priority, error) {
	return parseEnum(raw, Priorities(), "priority")
}

func ParseCompletionStatus(raw string) (CompletionStatus, error) {
	return parseEnum(raw, CompletionStatuses(), "completionStatus")
}

func (d *Department) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, Departments(), "department", d)
}

func (s *EquipmentStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, EquipmentStatuses(), "status", s)
}

func (t *MaintenanceType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, MaintenanceTypes(), "type", t)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, Priorities(), "priority", p)
}

func (c *CompletionStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, CompletionStatuses(), "completionStatus", c)
}
