// Package reflect_util provides reflection helpers for the settings store.
package reflect_util

import "reflect"

// GetFields returns all struct fields of the given reflect.Type.
func GetFields(t reflect.Type) []reflect.StructField {
	num := t.NumField()
	fields := make([]reflect.StructField, 0, num)
	for i := 0; i < num; i++ {
		fields = append(fields, t.Field(i))
	}
	return fields
}

// FieldByTag finds the field whose tag key has the given value.
func FieldByTag(t reflect.Type, key, value string) (reflect.StructField, bool) {
	for _, f := range GetFields(t) {
		if f.Tag.Get(key) == value {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
