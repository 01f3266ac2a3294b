package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewField_Label(t *testing.T) {
	f := NewField("0th_271", "0th", 271, "Make", "ASCII", "Canon")
	assert.Equal(t, "Make (0th_271)", f.Label)
	assert.Equal(t, uint16(271), f.TagID)
}

func TestGroupFields(t *testing.T) {
	fields := []Field{
		{Key: "0th_271", Category: "0th"},
		{Key: "0th_272", Category: "0th"},
		{Key: "GPS_1", Category: "GPS"},
	}

	groups := GroupFields(fields)
	assert.Len(t, groups, 2)
	assert.Equal(t, "0th", groups[0].Category)
	assert.Len(t, groups[0].Fields, 2)
	assert.Equal(t, "GPS_1", groups[1].Fields[0].Key)
	assert.Empty(t, GroupFields(nil))
}
