package dto

import "github.com/noah-isme/maintenance-tracker-api/internal/models"

// CreateEquipmentRequest is the payload for registering equipment. The id is assigned by the store.
type CreateEquipmentRequest struct {
	Name         string                 `json:"name" validate:"required,min=3,max=255"`
	Location     string                 `json:"location" validate:"required,max=255"`
	Department   models.Department      `json:"department" validate:"closedset"`
	Model        string                 `json:"model" validate:"required,max=255"`
	SerialNumber string                 `json:"serialNumber" validate:"required,alphanum"`
	InstallDate  models.Date            `json:"installDate" validate:"required,notfuture"`
	Status       models.EquipmentStatus `json:"status" validate:"closedset"`
}

// ToModel converts the request into an unsaved record.
func (r CreateEquipmentRequest) ToModel() models.Equipment {
	return models.Equipment{
		Name:         r.Name,
		Location:     r.Location,
		Department:   r.Department,
		Model:        r.Model,
		SerialNumber: r.SerialNumber,
		InstallDate:  r.InstallDate,
		Status:       r.Status,
	}
}
