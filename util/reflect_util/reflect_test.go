package reflect_util

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Port int    `json:"webPort"`
	Name string `json:"name"`
}

func TestFieldByTag(t *testing.T) {
	typ := reflect.TypeOf(sample{})
	assert.Len(t, GetFields(typ), 2)

	f, ok := FieldByTag(typ, "json", "webPort")
	assert.True(t, ok)
	assert.Equal(t, "Port", f.Name)

	_, ok = FieldByTag(typ, "json", "missing")
	assert.False(t, ok)
}
