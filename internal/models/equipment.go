package models

// Equipment is a tracked piece of plant equipment.
type Equipment struct {
	ID           string          `json:"id" validate:"required"`
	Name         string          `json:"name"`
	Location     string          `json:"location"`
	Department   Department      `json:"department" validate:"closedset"`
	Model        string          `json:"model"`
	SerialNumber string          `json:"serialNumber"`
	InstallDate  Date            `json:"installDate"`
	Status       EquipmentStatus `json:"status" validate:"closedset"`
}

var equipmentFields = []string{"id", "name", "location", "department", "model", "serialNumber", "installDate", "status"}

// RecordID returns the persisted identifier.
func (e Equipment) RecordID() string { return e.ID }

// WithID returns a copy carrying id.
func (e Equipment) WithID(id string) Equipment {
	e.ID = id
	return e
}

// Fields lists the columns exposed to table views, in display order.
func (e Equipment) Fields() []string { return equipmentFields }

// Field returns the value of a column by its wire name.
func (e Equipment) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "location":
		return e.Location, true
	case "department":
		return string(e.Department), e.Department != ""
	case "model":
		return e.Model, true
	case "serialNumber":
		return e.SerialNumber, true
	case "installDate":
		return e.InstallDate.Time, !e.InstallDate.IsZero()
	case "status":
		return string(e.Status), e.Status != ""
	}
	return nil, false
}
