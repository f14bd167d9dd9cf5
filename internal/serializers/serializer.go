package serializers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/datatypes"

	"github.com/curio-learn/profile-service/internal/validator"
)

// decode unmarshals data into dest, turning JSON type mismatches into
// field validation errors.
func decode(data []byte, dest interface{}) error {
	err := json.Unmarshal(data, dest)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return validator.ValidationErrors{{
			Field:   typeErr.Field,
			Message: typeMessage(typeErr.Type),
			Value:   typeErr.Value,
			Rule:    "type",
		}}
	}

	return validator.ValidationErrors{{
		Field:   "body",
		Message: fmt.Sprintf("malformed JSON: %v", err),
		Rule:    "json",
	}}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return "a valid integer is required"
	case reflect.String:
		return "not a valid string"
	default:
		return fmt.Sprintf("expected %s", t.Kind())
	}
}

func formatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(validator.DateLayout)
	return &s
}

// parseDate expects a value that already passed calendar_date validation.
func parseDate(s *string) *datatypes.Date {
	if s == nil {
		return nil
	}
	t, err := time.Parse(validator.DateLayout, *s)
	if err != nil {
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

// AsMap returns the representation keyed by field name
func AsMap(rep interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangedFields lists, in fields order, the fields whose values differ
// between two representations of the same type.
func ChangedFields(before, after interface{}, fields []string) ([]string, error) {
	a, err := AsMap(before)
	if err != nil {
		return nil, err
	}
	b, err := AsMap(after)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, f := range fields {
		if !reflect.DeepEqual(a[f], b[f]) {
			changed = append(changed, f)
		}
	}
	return changed, nil
}
