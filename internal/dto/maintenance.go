package dto

import "github.com/noah-isme/maintenance-tracker-api/internal/models"

// CreateMaintenanceRequest is the payload for logging maintenance work.
type CreateMaintenanceRequest struct {
	EquipmentID      string                  `json:"equipmentId" validate:"required"`
	Date             models.Date             `json:"date" validate:"required,notfuture"`
	Type             models.MaintenanceType  `json:"type" validate:"closedset"`
	Technician       string                  `json:"technician" validate:"required,min=2,max=255"`
	HoursSpent       float64                 `json:"hoursSpent" validate:"gte=0,lte=24"`
	Description      string                  `json:"description" validate:"required,min=10,max=500"`
	PartsReplaced    []string                `json:"partsReplaced" validate:"omitempty,dive,min=1"`
	Priority         models.Priority         `json:"priority" validate:"closedset"`
	CompletionStatus models.CompletionStatus `json:"completionStatus" validate:"closedset"`
}

// ToModel converts the request into an unsaved record.
func (r CreateMaintenanceRequest) ToModel() models.MaintenanceRecord {
	parts := r.PartsReplaced
	if parts == nil {
		parts = []string{}
	}
	return models.MaintenanceRecord{
		EquipmentID:      r.EquipmentID,
		Date:             r.Date,
		Type:             r.Type,
		Technician:       r.Technician,
		HoursSpent:       r.HoursSpent,
		Description:      r.Description,
		PartsReplaced:    parts,
		Priority:         r.Priority,
		CompletionStatus: r.CompletionStatus,
	}
}
