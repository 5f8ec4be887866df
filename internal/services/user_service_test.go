package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/validator"
)

func TestUserServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	tests := []struct {
		name     string
		req      CreateUserRequest
		wantErr  error
		wantMsgs []string
		approved bool
	}{
		{
			name:     "intern defaults to unapproved",
			req:      CreateUserRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1", Role: "intern"},
			approved: false,
		},
		{
			name:     "intern approved by admin",
			req:      CreateUserRequest{Name: "Joe", Email: "joe@example.com", Password: "secret1", Role: "intern", IsApproved: true},
			approved: true,
		},
		{
			name:     "supervisor is always approved",
			req:      CreateUserRequest{Name: "Sam", Email: "sam@example.com", Password: "secret1", Role: "supervisor"},
			approved: true,
		},
		{
			name:    "duplicate email",
			req:     CreateUserRequest{Name: "Jane 2", Email: "jane@example.com", Password: "secret1", Role: "intern"},
			wantErr: ErrEmailInUse,
		},
		{
			name:     "invalid input",
			req:      CreateUserRequest{Name: "", Email: "bad", Password: "1", Role: "boss"},
			wantMsgs: []string{"Name is required", "Invalid email", "Password must be at least 6 characters", "Invalid role"},
		},
		{
			name:     "multibyte password over bcrypt limit",
			req:      CreateUserRequest{Name: "Eve", Email: "eve@example.com", Password: strings.Repeat("é", 40), Role: "intern"},
			wantMsgs: []string{"Password is too long"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			u, err := users.Create(ctx, &req)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsgs != nil:
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, tt.wantMsgs, verrs.Messages())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.approved, u.IsApproved)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
			}
		})
	}
}

func TestUserServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	jane := env.user(t, "Jane", "jane@example.com", models.RoleIntern, false)
	env.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)

	updated, err := users.Update(ctx, jane.ID, &UpdateUserRequest{Name: "Jane Doe", Email: "jane.doe@example.com", Role: "intern", IsApproved: true})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.True(t, updated.IsApproved)

	_, err = users.Update(ctx, jane.ID, &UpdateUserRequest{Name: "Jane", Email: "sam@example.com", Role: "intern"})
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = users.Update(ctx, 9999, &UpdateUserRequest{Name: "X", Email: "x@example.com", Role: "intern"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceAdminRoleIsFixed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	ada := env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)
	otto := env.user(t, "Otto", "otto@example.com", models.RoleAdmin, true)

	for _, role := range []string{"intern", "supervisor"} {
		t.Run(role, func(t *testing.T) {
			_, err := users.Update(ctx, otto.ID, &UpdateUserRequest{Name: "Otto", Email: "otto@example.com", Role: role})
			assert.ErrorIs(t, err, ErrCannotDemoteAdmin)
		})
	}

	got, err := users.GetByID(ctx, otto.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.ErrorIs(t, users.Delete(ctx, ada.ID, otto.ID), ErrCannotDeleteAdmin)

	// other fields of an admin stay editable
	updated, err := users.Update(ctx, otto.ID, &UpdateUserRequest{Name: "Otto Admin", Email: "otto@example.com", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "Otto Admin", updated.Name)

	msg, ok := UserMessage(ErrCannotDemoteAdmin)
	assert.True(t, ok)
	assert.Equal(t, ErrCannotDemoteAdmin.Error(), msg)
}

func TestUserServiceApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	jane := env.user(t, "Jane", "jane@example.com", models.RoleIntern, false)
	sam := env.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)

	pending, err := users.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, jane.ID, pending[0].ID)

	require.NoError(t, users.Approve(ctx, jane.ID))
	require.NoError(t, users.Approve(ctx, jane.ID), "approving twice is harmless")
	assert.ErrorIs(t, users.Approve(ctx, sam.ID), ErrNotAnIntern)
	assert.ErrorIs(t, users.Approve(ctx, 9999), ErrUserNotFound)

	pending, err = users.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	env.user(t, "Joe", "joe@example.com", models.RoleIntern, false)
	require.NoError(t, users.ApproveByEmail(ctx, " joe@example.com "))
	assert.ErrorIs(t, users.ApproveByEmail(ctx, "ghost@example.com"), ErrUserNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	admin := env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)
	other := env.user(t, "Bob", "bob@example.com", models.RoleAdmin, true)
	jane := env.user(t, "Jane", "jane@example.com", models.RoleIntern, false)

	assert.ErrorIs(t, users.Delete(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, users.Delete(ctx, admin.ID, other.ID), ErrCannotDeleteAdmin)
	assert.ErrorIs(t, users.Delete(ctx, admin.ID, 9999), ErrUserNotFound)

	require.NoError(t, users.Delete(ctx, admin.ID, jane.ID))
	_, err := users.GetByID(ctx, jane.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)
	env.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)
	env.user(t, "Jane", "jane@example.com", models.RoleIntern, false)
	env.user(t, "Joe", "joe@example.com", models.RoleIntern, true)

	tests := []struct {
		name    string
		filters UserListFilters
		want    int
	}{
		{"all", UserListFilters{}, 4},
		{"interns", UserListFilters{Role: "intern"}, 2},
		{"pending interns", UserListFilters{Role: "intern", Status: UserStatusPending}, 1},
		{"approved", UserListFilters{Status: UserStatusApproved}, 3},
		{"unknown role ignored", UserListFilters{Role: "boss"}, 4},
		{"search", UserListFilters{Query: "JO"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := users.List(ctx, tt.filters)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	supervisors, err := users.Supervisors(ctx)
	require.NoError(t, err)
	require.Len(t, supervisors, 1)
	assert.Equal(t, "Sam", supervisors[0].Name)
}

func TestUserServiceFirstAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	has, err := users.HasAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = users.CreateFirstAdmin(ctx, "Ada", "not-an-email", "secret1")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"Invalid email"}, verrs.Messages())

	_, err = users.CreateFirstAdmin(ctx, "Ada", "ada@example.com", strings.Repeat("é", 40))
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"Password is too long"}, verrs.Messages())

	admin, err := users.CreateFirstAdmin(ctx, " Ada ", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", admin.Name)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsApproved)

	_, err = users.CreateFirstAdmin(ctx, "Eve", "eve@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestUserServiceResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := env.services.User()

	jane := env.user(t, "Jane", "jane@example.com", models.RoleIntern, true)

	require.NoError(t, users.ResetPassword(ctx, "jane@example.com", "newpass1"))
	got, err := users.GetByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("newpass1")))

	assert.ErrorIs(t, users.ResetPassword(ctx, "ghost@example.com", "newpass1"), ErrUserNotFound)

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, users.ResetPassword(ctx, "jane@example.com", "123"), &verrs)

	require.ErrorAs(t, users.ResetPassword(ctx, "jane@example.com", strings.Repeat("é", 40)), &verrs)
	assert.Equal(t, []string{"Password is too long"}, verrs.Messages())
}

func TestUserServiceExportXLSX(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)
	env.user(t, "Jane", "jane@example.com", models.RoleIntern, false)

	var buf bytes.Buffer
	require.NoError(t, env.services.User().ExportXLSX(ctx, UserListFilters{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Name", "Email", "Role", "Approved", "Created"}, rows[0])

	byEmail := map[string][]string{}
	for _, row := range rows[1:] {
		byEmail[row[2]] = row
	}
	assert.Equal(t, "Intern", byEmail["jane@example.com"][3])
	assert.Equal(t, "No", byEmail["jane@example.com"][4])
	assert.Equal(t, "Supervisor", byEmail["sam@example.com"][3])
}
