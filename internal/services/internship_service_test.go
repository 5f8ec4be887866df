package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/validator"
)

func TestInternshipServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)

	tests := []struct {
		name     string
		req      CreateInternshipRequest
		wantMsgs []string
	}{
		{"title only", CreateInternshipRequest{Title: "Backend Intern"}, nil},
		{"with dates", CreateInternshipRequest{Title: "Data Intern", StartDate: "2026-01-05", EndDate: "2026-03-27"}, nil},
		{"missing title", CreateInternshipRequest{Title: "  "}, []string{"Title is required"}},
		{"bad date", CreateInternshipRequest{Title: "X", StartDate: "05/01/2026"}, []string{"StartDate must be a date (YYYY-MM-DD)"}},
		{"end before start", CreateInternshipRequest{Title: "X", StartDate: "2026-03-01", EndDate: "2026-02-01"}, []string{"End date must not be before start date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			it, err := env.services.Internship().Create(ctx, admin.ID, &req)
			if tt.wantMsgs != nil {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, tt.wantMsgs, verrs.Messages())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, it.ID)
			assert.Equal(t, admin.ID, it.CreatedByAdminID)
			if req.StartDate != "" {
				require.NotNil(t, it.StartDate)
				assert.Equal(t, req.StartDate, time.Time(*it.StartDate).Format(validator.DateLayout))
			}
		})
	}

	list, err := env.services.Internship().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInternshipServiceAssignSupervisor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	internships := env.services.Internship()

	admin := env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)
	sam := env.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)
	jane := env.user(t, "Jane", "jane@example.com", models.RoleIntern, true)
	it := env.internship(t, admin.ID, "Backend Intern")

	added, err := internships.AssignSupervisor(ctx, it.ID, sam.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = internships.AssignSupervisor(ctx, it.ID, sam.ID)
	require.NoError(t, err)
	assert.False(t, added, "second assignment is ignored")

	_, err = internships.AssignSupervisor(ctx, it.ID, jane.ID)
	assert.ErrorIs(t, err, ErrNotASupervisor)

	_, err = internships.AssignSupervisor(ctx, 9999, sam.ID)
	assert.ErrorIs(t, err, ErrInternshipNotFound)

	_, err = internships.AssignSupervisor(ctx, it.ID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err := internships.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{sam.ID}, got.SupervisorIDs())

	mine, err := internships.ListForSupervisor(ctx, sam.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, it.ID, mine[0].ID)
}

func TestInternshipServiceListCache(t *testing.T) {
	env := newTestEnv(t, withRedis(t))
	ctx := context.Background()
	internships := env.services.Internship()

	admin := env.user(t, "Ada", "ada@example.com", models.RoleAdmin, true)
	env.internship(t, admin.ID, "First")

	list, err := internships.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, env.redis.Exists("internship:list"))

	// creating through the service invalidates the cached listing
	env.internship(t, admin.ID, "Second")
	assert.False(t, env.redis.Exists("internship:list"))

	list, err = internships.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
