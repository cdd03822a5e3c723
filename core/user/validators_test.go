package user

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/gradebook/core"
)

func TestValidatePassword(t *testing.T) {
	usr := User{Name: "Ada Lovelace", Username: "adalovelace", Email: "ada@school.edu"}

	tests := []struct {
		name    string
		pwd     string
		errText string
	}{
		{name: "too short", pwd: "Ab1!", errText: pwdMinLenText},
		{name: "whitespace", pwd: "Abcd 123!", errText: pwdNoSpaceText},
		{name: "all numeric", pwd: "1234567890", errText: pwdNotAllNumText},
		{name: "no special char", pwd: "Abcd12345", errText: pwdComplexityText},
		{name: "no upper char", pwd: "abcd1234!", errText: pwdComplexityText},
		{name: "similar to username", pwd: "Adalovelace1!", errText: pwdAttrSimText},
		{name: "valid", pwd: "Gr4debook!Zx"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.pwd, usr)
			if tc.errText == "" {
				assert.NoError(t, err)
				return
			}
			verr, ok := errors.Cause(err).(*core.ValidationError)
			if assert.True(t, ok) && assert.Len(t, verr.Fields, 1) {
				assert.Equal(t, "password", verr.Fields[0].Field)
				assert.Equal(t, tc.errText, verr.Fields[0].Error)
			}
		})
	}
}
