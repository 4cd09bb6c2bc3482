package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmportal/internal/models"
)

func vmList(ids ...int64) []models.VM {
	vms := make([]models.VM, 0, len(ids))
	for _, id := range ids {
		vms = append(vms, models.VM{VMID: id, Status: "running"})
	}
	return vms
}

func vmIDs(vms []models.VM) []int64 {
	ids := make([]int64, 0, len(vms))
	for _, vm := range vms {
		ids = append(ids, vm.VMID)
	}
	return ids
}

func TestFilterVisibleVMs_Student(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		assigned []int64
		listing  []int64
		want     []int64
	}{
		{"subset in listing order", []int64{100, 101}, []int64{100, 101, 102}, []int64{100, 101}},
		{"order follows hypervisor not assignment", []int64{102, 100}, []int64{100, 101, 102}, []int64{100, 102}},
		{"assigned vm deleted on hypervisor", []int64{100, 999}, []int64{100, 101}, []int64{100}},
		{"no assignments", nil, []int64{100, 101}, []int64{}},
		{"empty listing", []int64{100}, nil, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Identity{ID: "u1", Role: models.RoleStudent, AssignedVMs: tt.assigned}
			got := FilterVisibleVMs(id, vmList(tt.listing...))
			assert.Equal(t, tt.want, vmIDs(got))
		})
	}
}

func TestFilterVisibleVMs_AdminSeesEverything(t *testing.T) {
	t.Parallel()

	admin := Identity{ID: "a1", Role: models.RoleAdmin}
	listing := vmList(100, 101, 102)

	got := FilterVisibleVMs(admin, listing)
	assert.Equal(t, listing, got)

	// Empty assigned list must not matter for admins.
	admin.AssignedVMs = []int64{}
	assert.Equal(t, listing, FilterVisibleVMs(admin, listing))
}

func TestFilterVisibleVMs_Pure(t *testing.T) {
	t.Parallel()

	id := Identity{ID: "u1", Role: models.RoleStudent, AssignedVMs: []int64{101}}
	listing := vmList(100, 101, 102)

	first := FilterVisibleVMs(id, listing)
	second := FilterVisibleVMs(id, listing)
	assert.Equal(t, first, second)
	assert.Equal(t, vmList(100, 101, 102), listing, "input slice must not be mutated")
}

func TestCanAccessVM(t *testing.T) {
	t.Parallel()

	student := Identity{ID: "u1", Role: models.RoleStudent, AssignedVMs: []int64{100, 101}}
	admin := Identity{ID: "a1", Role: models.RoleAdmin}

	assert.True(t, CanAccessVM(student, 100))
	assert.True(t, CanAccessVM(student, 101))
	assert.False(t, CanAccessVM(student, 102))
	assert.True(t, CanAccessVM(admin, 102))
	assert.True(t, CanAccessVM(admin, 9999))
}

func TestCanDeleteUser(t *testing.T) {
	t.Parallel()

	admin := Identity{ID: "a1", Role: models.RoleAdmin}
	student := Identity{ID: "u1", Role: models.RoleStudent}

	assert.True(t, CanDeleteUser(admin, "u1"))
	assert.False(t, CanDeleteUser(admin, "a1"), "self-deletion is forbidden")
	assert.False(t, CanDeleteUser(student, "a1"))
}
