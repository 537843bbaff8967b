package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr bool
	}{
		{name: "reader", raw: "reader", want: RoleReader},
		{name: "editor upper case", raw: "EDITOR", want: RoleEditor},
		{name: "journalist with spaces", raw: "  Journalist ", want: RoleJournalist},
		{name: "unknown", raw: "admin", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve))
				assert.Equal(t, "role", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Group(t *testing.T) {
	assert.Equal(t, "Reader", RoleReader.Group())
	assert.Equal(t, "Editor", RoleEditor.Group())
	assert.Equal(t, "Journalist", RoleJournalist.Group())
	assert.Equal(t, "", Role("admin").Group())
	assert.Equal(t, "", Role("").Group())
}

func TestRole_Permissions(t *testing.T) {
	assert.Equal(t, []Permission{PermViewArticle}, RoleReader.Permissions())
	assert.True(t, RoleJournalist.Can(PermAddArticle))
	assert.False(t, RoleEditor.Can(PermAddArticle))
	assert.True(t, RoleEditor.Can(PermChangeArticle))
	assert.False(t, RoleReader.Can(PermChangeArticle))
	assert.False(t, Role("ghost").Can(PermViewArticle))

	// returned slice must not alias the package table
	perms := RoleReader.Permissions()
	perms[0] = PermDeleteArticle
	assert.Equal(t, []Permission{PermViewArticle}, RoleReader.Permissions())
}

func TestAllRoles(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.IsValid(), r)
	}
	assert.Len(t, AllRoles(), 3)
}

func TestParseRole_ErrorListsKnownRoles(t *testing.T) {
	_, err := ParseRole("admin")
	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, `must be one of reader, editor, journalist (got "admin")`, ve.Message)
	}
}
