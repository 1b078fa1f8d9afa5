package core

import (
	"testing"

	"github.com/kat-co/vala"
	"github.com/stretchr/testify/assert"
)

type notifier interface{ Notify() }

type valueNotifier struct{}

func (valueNotifier) Notify() {}

func TestNotNil(t *testing.T) {
	var (
		nilPtr   *valueNotifier
		nilIface notifier
		nilMap   map[string]string
	)
	tests := []struct {
		name string
		obj  interface{}
		want bool
	}{
		{name: "struct value", obj: valueNotifier{}, want: true},
		{name: "struct value in interface", obj: notifier(valueNotifier{}), want: true},
		{name: "pointer", obj: &valueNotifier{}, want: true},
		{name: "string", obj: "", want: true},
		{name: "nil", obj: nil},
		{name: "nil interface", obj: nilIface},
		{name: "nil pointer", obj: nilPtr},
		{name: "nil map", obj: nilMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				err = vala.BeginValidation().Validate(NotNil(tt.obj, "obj")).Check()
			})
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
