package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/maintenance-tracker-api/internal/models"
)

type equipmentFixture struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Location     string `yaml:"location"`
	Department   string `yaml:"department"`
	Model        string `yaml:"model"`
	SerialNumber string `yaml:"serialNumber"`
	InstallDate  string `yaml:"installDate"`
	Status       string `yaml:"status"`
}

type maintenanceFixture struct {
	ID               string   `yaml:"id"`
	EquipmentID      string   `yaml:"equipmentId"`
	Date             string   `yaml:"date"`
	Type             string   `yaml:"type"`
	Technician       string   `yaml:"technician"`
	HoursSpent       float64  `yaml:"hoursSpent"`
	Description      string   `yaml:"description"`
	PartsReplaced    []string `yaml:"partsReplaced"`
	Priority         string   `yaml:"priority"`
	CompletionStatus string   `yaml:"completionStatus"`
}

type fixture struct {
	Equipment   []equipmentFixture   `yaml:"equipment"`
	Maintenance []maintenanceFixture `yaml:"maintenance"`
}

type collection[T any] interface {
	ReadAll(ctx context.Context) ([]T, error)
	ReplaceAll(ctx context.Context, records []T) error
}

type seedResult struct {
	Equipment   int
	Maintenance int
	Skipped     []string
}

func parseFixture(data []byte) ([]models.Equipment, []models.MaintenanceRecord, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse fixture: %w", err)
	}
	equipment := make([]models.Equipment, 0, len(f.Equipment))
	for i, e := range f.Equipment {
		record, err := e.toModel()
		if err != nil {
			return nil, nil, fmt.Errorf("equipment[%d]: %w", i, err)
		}
		equipment = append(equipment, record)
	}
	records := make([]models.MaintenanceRecord, 0, len(f.Maintenance))
	for i, m := range f.Maintenance {
		record, err := m.toModel()
		if err != nil {
			return nil, nil, fmt.Errorf("maintenance[%d]: %w", i, err)
		}
		records = append(records, record)
	}
	return equipment, records, nil
}

func (e equipmentFixture) toModel() (models.Equipment, error) {
	department, err := models.ParseDepartment(e.Department)
	if err != nil {
		return models.Equipment{}, err
	}
	status, err := models.ParseEquipmentStatus(e.Status)
	if err != nil {
		return models.Equipment{}, err
	}
	installed, err := models.ParseDate(e.InstallDate)
	if err != nil {
		return models.Equipment{}, err
	}
	return models.Equipment{
		ID:           e.ID,
		Name:         e.Name,
		Location:     e.Location,
		Department:   department,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
		InstallDate:  installed,
		Status:       status,
	}, nil
}

func (m maintenanceFixture) toModel() (models.MaintenanceRecord, error) {
	kind, err := models.ParseMaintenanceType(m.Type)
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	priority, err := models.ParsePriority(m.Priority)
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	completion, err := models.ParseCompletionStatus(m.CompletionStatus)
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	date, err := models.ParseDate(m.Date)
	if err != nil {
		return models.MaintenanceRecord{}, err
	}
	parts := m.PartsReplaced
	if parts == nil {
		parts = []string{}
	}
	return models.MaintenanceRecord{
		ID:               m.ID,
		EquipmentID:      m.EquipmentID,
		Date:             date,
		Type:             kind,
		Technician:       m.Technician,
		HoursSpent:       m.HoursSpent,
		Description:      m.Description,
		PartsReplaced:    parts,
		Priority:         priority,
		CompletionStatus: completion,
	}, nil
}

// seed writes each collection unless it already holds records and force is unset.
func seed(ctx context.Context, equipmentStore collection[models.Equipment], maintenanceStore collection[models.MaintenanceRecord], equipment []models.Equipment, records []models.MaintenanceRecord, force bool) (seedResult, error) {
	var result seedResult

	write, err := shouldWrite(ctx, equipmentStore, force)
	if err != nil {
		return result, err
	}
	if write {
		if err := equipmentStore.ReplaceAll(ctx, equipment); err != nil {
			return result, err
		}
		result.Equipment = len(equipment)
	} else {
		result.Skipped = append(result.Skipped, "equipment")
	}

	write, err = shouldWrite(ctx, maintenanceStore, force)
	if err != nil {
		return result, err
	}
	if write {
		if err := maintenanceStore.ReplaceAll(ctx, records); err != nil {
			return result, err
		}
		result.Maintenance = len(records)
	} else {
		result.Skipped = append(result.Skipped, "maintenance")
	}
	return result, nil
}

func shouldWrite[T any](ctx context.Context, store collection[T], force bool) (bool, error) {
	if force {
		return true, nil
	}
	existing, err := store.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	return len(existing) == 0, nil
}
