package keys_test

import (
	"testing"

	"github.com/Alia5/kbjoypad/joypad/keys"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		token string
		want  []keys.Key
	}{
		{"w", []keys.Key{keys.W}},
		{"Z", []keys.Key{keys.Z}},
		{"1", []keys.Key{keys.Num1, keys.Kp1}},
		{"0", []keys.Key{keys.Num0, keys.Kp0}},
		{"9", []keys.Key{keys.Num9, keys.Kp9}},
		{"space", []keys.Key{keys.Space}},
		{"BACKSPACE", []keys.Key{keys.Backspace}},
		{"Left", []keys.Key{keys.Left}},
		{"F13", nil},
		{"?", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, keys.Lookup(tt.token))
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "A", keys.A.String())
	assert.Equal(t, "Kp7", keys.Kp7.String())
	assert.Equal(t, "LeftCtrl", keys.LeftCtrl.String())
	assert.Equal(t, "Key(0xFF)", keys.Key(0xFF).String())
}
