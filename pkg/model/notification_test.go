package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleTableCoversEveryKind(t *testing.T) {
	for _, k := range Kinds {
		s := StyleFor(k)
		assert.NotEqual(t, DefaultStyle, s, "kind %q should have a dedicated style", k)
		assert.NotEmpty(t, s.Icon)
		assert.NotEmpty(t, s.Color)
	}
}

func TestStyleForUnknownKindFallsBack(t *testing.T) {
	assert.Equal(t, DefaultStyle, StyleFor(Kind("something_new")))
}
