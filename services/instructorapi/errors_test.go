package instructorapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_errorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error", body: `{"error":"permission denied"}`, want: "permission denied"},
		{name: "fields", body: `{"password":"this field is required","username":"invalid"}`, want: "password: this field is required; username: invalid"},
		{name: "not json", body: `<html>bad gateway</html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}
