package dto

import "github.com/noah-isme/maintenance-tracker-api/internal/models"

// Bucket is one labelled value of a chart series. Series always list every key of the
// underlying closed set in canonical order.
type Bucket struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// RecentMaintenanceItem is one line of the recent maintenance panel.
type RecentMaintenanceItem struct {
	ID               string                  `json:"id"`
	EquipmentID      string                  `json:"equipmentId"`
	EquipmentName    string                  `json:"equipmentName"`
	Date             models.Date             `json:"date"`
	Type             models.MaintenanceType  `json:"type"`
	Technician       string                  `json:"technician"`
	HoursSpent       float64                 `json:"hoursSpent"`
	CompletionStatus models.CompletionStatus `json:"completionStatus"`
}

// DashboardResponse bundles every dashboard aggregate.
type DashboardResponse struct {
	EquipmentCount         int                     `json:"equipmentCount"`
	MaintenanceCount       int                     `json:"maintenanceCount"`
	StatusDistribution     []Bucket                `json:"statusDistribution"`
	HoursByDepartment      []Bucket                `json:"hoursByDepartment"`
	TypeDistribution       []Bucket                `json:"typeDistribution"`
	PriorityDistribution   []Bucket                `json:"priorityDistribution"`
	CompletionDistribution []Bucket                `json:"completionDistribution"`
	RecentMaintenance      []RecentMaintenanceItem `json:"recentMaintenance"`
}
