package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/site-services-api/internal/models"
)

func ptr[T any](v T) *T { return &v }

var (
	machineNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	adminUser    = &models.User{ID: 1, FullName: "Ada Admin", Role: models.RoleAdmin}
	staffUser    = &models.User{ID: 2, FullName: "Sam Staff", Role: models.RoleStaff}
	otherStaff   = &models.User{ID: 3, FullName: "Olga Other", Role: models.RoleStaff}
	residentUser = &models.User{ID: 4, FullName: "Rita Resident", Role: models.RoleResident}
)

func openTicket() *models.Ticket {
	created := machineNow.Add(-time.Hour)
	return &models.Ticket{
		ID:        10,
		CreatedBy: residentUser.ID,
		Status:    models.TicketStatusOpen,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func eventTypes(events []models.TicketEvent) []models.EventType {
	out := make([]models.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestPlanTicketChange_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.User
		patch   TicketPatch
		wantErr error
	}{
		{
			name:    "resident cannot patch",
			actor:   residentUser,
			patch:   TicketPatch{Status: ptr("IN_REVIEW")},
			wantErr: ErrForbidden,
		},
		{
			name:    "staff cannot close",
			actor:   staffUser,
			patch:   TicketPatch{Status: ptr("CLOSED")},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "staff cannot cancel",
			actor:   staffUser,
			patch:   TicketPatch{Status: ptr("CANCELLED")},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unknown status",
			actor:   adminUser,
			patch:   TicketPatch{Status: ptr("DONE")},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "assignee does not exist",
			actor:   adminUser,
			patch:   TicketPatch{HasAssignedTo: true, AssignedTo: ptr(uint64(99))},
			wantErr: ErrInvalidAssignee,
		},
		{
			name:    "assignee is not staff",
			actor:   adminUser,
			patch:   TicketPatch{HasAssignedTo: true, AssignedTo: ptr(residentUser.ID), Assignee: residentUser},
			wantErr: ErrInvalidAssignee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanTicketChange(tt.actor, openTicket(), tt.patch, machineNow)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlanTicketChange_AdminAssignAdvancesStatus(t *testing.T) {
	change, err := PlanTicketChange(adminUser, openTicket(), TicketPatch{
		HasAssignedTo: true,
		AssignedTo:    ptr(staffUser.ID),
		Assignee:      staffUser,
	}, machineNow)
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusAssigned, change.Next.Status)
	require.NotNil(t, change.Next.AssignedTo)
	assert.Equal(t, staffUser.ID, *change.Next.AssignedTo)
	assert.Equal(t, []models.EventType{models.EventTypeAssign, models.EventTypeStatus}, eventTypes(change.Events))
	assert.Equal(t, "Assigned to Sam Staff (ID: 2)", change.Events[0].Message)
	assert.Equal(t, "Status: ASSIGNED", change.Events[1].Message)
	assert.True(t, change.Next.UpdatedAt.Equal(machineNow))
	assert.Nil(t, change.Next.ResolvedAt)
}

func TestPlanTicketChange_ExplicitStatusWinsOverAutoAssign(t *testing.T) {
	change, err := PlanTicketChange(adminUser, openTicket(), TicketPatch{
		HasAssignedTo: true,
		AssignedTo:    ptr(staffUser.ID),
		Assignee:      staffUser,
		Status:        ptr("IN_REVIEW"),
	}, machineNow)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInReview, change.Next.Status)
}

func TestPlanTicketChange_ReassignSameStaffIsNoop(t *testing.T) {
	current := openTicket()
	current.AssignedTo = ptr(staffUser.ID)
	current.Status = models.TicketStatusInReview

	change, err := PlanTicketChange(adminUser, current, TicketPatch{
		HasAssignedTo: true,
		AssignedTo:    ptr(staffUser.ID),
		Assignee:      staffUser,
	}, machineNow)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInReview, change.Next.Status)
	assert.Empty(t, change.Events)
	assert.False(t, change.AssigneeChanged)
}

func TestPlanTicketChange_Unassign(t *testing.T) {
	current := openTicket()
	current.AssignedTo = ptr(staffUser.ID)
	current.Status = models.TicketStatusAssigned

	change, err := PlanTicketChange(adminUser, current, TicketPatch{HasAssignedTo: true}, machineNow)
	require.NoError(t, err)
	assert.Nil(t, change.Next.AssignedTo)
	assert.Equal(t, models.TicketStatusAssigned, change.Next.Status)
	require.Len(t, change.Events, 1)
	assert.Equal(t, "Unassigned", change.Events[0].Message)
}

func TestPlanTicketChange_StaffResolvesWithNote(t *testing.T) {
	current := openTicket()
	current.AssignedTo = ptr(staffUser.ID)
	current.Status = models.TicketStatusAssigned

	change, err := PlanTicketChange(staffUser, current, TicketPatch{
		Status:       ptr("resolved"),
		ResolvedNote: ptr("Replaced the valve"),
	}, machineNow)
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusResolved, change.Next.Status)
	require.NotNil(t, change.Next.ResolvedAt)
	assert.True(t, change.Next.ResolvedAt.Equal(machineNow))
	assert.Equal(t, []models.EventType{models.EventTypeStatus, models.EventTypeComment}, eventTypes(change.Events))
	assert.Equal(t, "Resolution note: Replaced the valve", change.Events[1].Message)
	for _, e := range change.Events {
		assert.True(t, e.CreatedAt.Equal(machineNow))
		require.NotNil(t, e.ActorID)
		assert.Equal(t, staffUser.ID, *e.ActorID)
	}
}

func TestPlanTicketChange_ResolvedAtNeverCleared(t *testing.T) {
	resolvedAt := machineNow.Add(-30 * time.Minute)
	current := openTicket()
	current.Status = models.TicketStatusResolved
	current.ResolvedAt = &resolvedAt

	change, err := PlanTicketChange(adminUser, current, TicketPatch{Status: ptr("OPEN")}, machineNow)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, change.Next.Status)
	require.NotNil(t, change.Next.ResolvedAt)
	assert.True(t, change.Next.ResolvedAt.Equal(resolvedAt))
}

func TestPlanTicketChange_StaffAssigneeIsIgnored(t *testing.T) {
	current := openTicket()
	current.Status = models.TicketStatusAssigned
	current.AssignedTo = ptr(staffUser.ID)

	patches := map[string]TicketPatch{
		"reassign": {HasAssignedTo: true, AssignedTo: ptr(otherStaff.ID), Assignee: otherStaff, Status: ptr("IN_REVIEW")},
		"unassign": {HasAssignedTo: true, Status: ptr("IN_REVIEW")},
	}
	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			change, err := PlanTicketChange(staffUser, current, patch, machineNow)
			require.NoError(t, err)
			require.NotNil(t, change.Next.AssignedTo)
			assert.Equal(t, staffUser.ID, *change.Next.AssignedTo)
			assert.False(t, change.AssigneeChanged)
			assert.Equal(t, models.TicketStatusInReview, change.Next.Status)
			assert.Equal(t, []models.EventType{models.EventTypeStatus}, eventTypes(change.Events))
		})
	}
}

func TestPlanTicketChange_ReentryRestampsResolvedAt(t *testing.T) {
	earlier := machineNow.Add(-48 * time.Hour)

	tests := []struct {
		name  string
		actor *models.User
		from  models.TicketStatus
		to    string
	}{
		{"in review back to resolved", staffUser, models.TicketStatusInReview, "RESOLVED"},
		{"resolved to closed", adminUser, models.TicketStatusResolved, "CLOSED"},
		{"open to closed", adminUser, models.TicketStatusOpen, "CLOSED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := openTicket()
			current.Status = tt.from
			current.AssignedTo = ptr(staffUser.ID)
			current.ResolvedAt = &earlier

			change, err := PlanTicketChange(tt.actor, current, TicketPatch{Status: ptr(tt.to)}, machineNow)
			require.NoError(t, err)
			assert.True(t, change.StatusChanged)
			require.NotNil(t, change.Next.ResolvedAt)
			assert.True(t, change.Next.ResolvedAt.Equal(machineNow))
			assert.True(t, current.ResolvedAt.Equal(earlier), "current is not mutated")
		})
	}
}

func TestPlanTicketChange_TerminalWithoutResolvedAtIsStamped(t *testing.T) {
	current := openTicket()
	current.Status = models.TicketStatusClosed

	change, err := PlanTicketChange(adminUser, current, TicketPatch{ResolvedNote: ptr("late note")}, machineNow)
	require.NoError(t, err)
	require.NotNil(t, change.Next.ResolvedAt)
	assert.True(t, change.Next.ResolvedAt.Equal(machineNow))
	assert.False(t, change.StatusChanged)
	assert.Equal(t, []models.EventType{models.EventTypeComment}, eventTypes(change.Events))
}

func TestPlanTicketChange_EmptyStatusIsIgnored(t *testing.T) {
	change, err := PlanTicketChange(adminUser, openTicket(), TicketPatch{Status: ptr("")}, machineNow)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, change.Next.Status)
	assert.Empty(t, change.Events)
}

func TestPlanTicketChange_UnchangedNoteAddsNoComment(t *testing.T) {
	current := openTicket()
	current.ResolvedNote = "same"

	change, err := PlanTicketChange(adminUser, current, TicketPatch{ResolvedNote: ptr("same")}, machineNow)
	require.NoError(t, err)
	assert.Empty(t, change.Events)
}

func TestPlanTicketChange_DoesNotMutateCurrent(t *testing.T) {
	current := openTicket()
	_, err := PlanTicketChange(adminUser, current, TicketPatch{Status: ptr("CLOSED")}, machineNow)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, current.Status)
	assert.Nil(t, current.ResolvedAt)
}

func TestCanAccessTicket(t *testing.T) {
	ticket := openTicket()
	ticket.AssignedTo = ptr(staffUser.ID)

	assert.True(t, CanAccessTicket(adminUser, ticket))
	assert.True(t, CanAccessTicket(staffUser, ticket))
	assert.False(t, CanAccessTicket(otherStaff, ticket))
	assert.True(t, CanAccessTicket(residentUser, ticket))
	assert.False(t, CanAccessTicket(&models.User{ID: 77, Role: models.RoleResident}, ticket))
}
