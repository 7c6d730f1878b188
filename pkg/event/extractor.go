package event

import (
	"reflect"
	"strings"
)

// ignoredFields never count as a change.
var ignoredFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// ExtractFields flattens the JSON-tagged fields of a struct, including the
// fields of embedded structs. Only fields listed in fields are kept unless
// fields is empty.
func ExtractFields(obj interface{}, fields []string) map[string]interface{} {
	result := make(map[string]interface{})
	if obj == nil {
		return result
	}

	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return result
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}
	extractInto(val, fields, result)
	return result
}

func extractInto(val reflect.Value, fields []string, result map[string]interface{}) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		fv := val.Field(i)
		if field.Anonymous {
			for fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				extractInto(fv, fields, result)
				continue
			}
		}

		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		if len(fields) == 0 || contains(fields, name) {
			result[name] = fv.Interface()
		}
	}
}

// ExtractChanges returns {"field": {"old": x, "new": y}} for every field whose
// value differs between old and new.
func ExtractChanges(old, new interface{}, fields []string) map[string]interface{} {
	changes := make(map[string]interface{})
	if old == nil || new == nil {
		return changes
	}

	oldFields := ExtractFields(old, fields)
	newFields := ExtractFields(new, fields)

	for field, newValue := range newFields {
		if ignoredFields[field] {
			continue
		}
		if oldValue, exists := oldFields[field]; exists {
			if !reflect.DeepEqual(oldValue, newValue) {
				changes[field] = map[string]interface{}{
					"old": oldValue,
					"new": newValue,
				}
			}
		}
	}
	return changes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
