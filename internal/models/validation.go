package models

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

type closedSet interface {
	Valid() bool
}

func (d Department) Valid() bool       { _, err := ParseDepartment(string(d)); return err == nil }
func (s EquipmentStatus) Valid() bool  { _, err := ParseEquipmentStatus(string(s)); return err == nil }
func (t MaintenanceType) Valid() bool  { _, err := ParseMaintenanceType(string(t)); return err == nil }
func (p Priority) Valid() bool         { _, err := ParsePriority(string(p)); return err == nil }
func (c CompletionStatus) Valid() bool { _, err := ParseCompletionStatus(string(c)); return err == nil }

// NewValidator returns a validator aware of closed sets and calendar dates.
//
// Tags:
//   - closedset: the value is a member of its enumerated type
//   - notfuture: the date is not on a later day than today
func NewValidator() *validator.Validate {
	return newValidator(time.Now)
}

func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
	_ = v.RegisterValidation("closedset", func(fl validator.FieldLevel) bool {
		set, ok := fl.Field().Interface().(closedSet)
		return ok && set.Valid()
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !Date{Time: t}.AfterDay(now())
	})
	return v
}
