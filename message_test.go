package parley_test

import (
	"testing"

	"github.com/fwojciec/parley"
	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		msg     parley.Message
		wantErr bool
	}{
		{"valid user", parley.Message{ID: "1", Role: parley.RoleUser, Status: parley.StatusComplete}, false},
		{"valid data role", parley.Message{ID: "1", Role: parley.RoleData, Status: parley.StatusComplete}, false},
		{"valid pending assistant", parley.Message{ID: "1", Role: parley.RoleAssistant, Status: parley.StatusPending}, false},
		{"empty id", parley.Message{Role: parley.RoleUser, Status: parley.StatusComplete}, true},
		{"unknown role", parley.Message{ID: "1", Role: "tool", Status: parley.StatusComplete}, true},
		{"unknown status", parley.Message{ID: "1", Role: parley.RoleUser, Status: "done"}, true},
		{"zero status", parley.Message{ID: "1", Role: parley.RoleUser}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, parley.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	t.Parallel()
	for _, r := range []parley.Role{parley.RoleUser, parley.RoleAssistant, parley.RoleSystem, parley.RoleData} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, parley.Role("ai").Valid())
	assert.False(t, parley.Role("").Valid())
}
