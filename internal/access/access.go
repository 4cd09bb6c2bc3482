// Package access holds the authorization rules of the portal: which VMs an
// authenticated user may see and operate, and which operations require the
// admin role. Everything here is pure; storage lookups happen before these
// functions are called.
package access

import "vmportal/internal/models"

// Identity is the fully resolved caller of a request. It is built by the
// authentication middleware from the current user record, never from token
// claims alone, so role and VM assignments always reflect the latest admin
// edits.
type Identity struct {
	ID          string
	Email       string
	Username    string
	Role        string
	AssignedVMs []int64
}

// IdentityFromUser projects a stored user record onto an Identity.
func IdentityFromUser(u *models.User) Identity {
	return Identity{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		AssignedVMs: u.AssignedVMs,
	}
}

// IsAdmin reports whether the identity holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

// FilterVisibleVMs narrows a hypervisor VM listing to what the caller may
// see. Admins see the list unchanged. Students see only their assigned VMs,
// in the order the hypervisor reported them; assigned ids that the
// hypervisor no longer knows simply produce no entry.
func FilterVisibleVMs(id Identity, vms []models.VM) []models.VM {
	if id.IsAdmin() {
		return vms
	}

	assigned := make(map[int64]struct{}, len(id.AssignedVMs))
	for _, vmid := range id.AssignedVMs {
		assigned[vmid] = struct{}{}
	}

	visible := make([]models.VM, 0, len(id.AssignedVMs))
	for _, vm := range vms {
		if _, ok := assigned[vm.VMID]; ok {
			visible = append(visible, vm)
		}
	}
	return visible
}

// CanAccessVM reports whether the caller may view or operate a single VM.
// Checked on every per-VM endpoint, not just the listing.
func CanAccessVM(id Identity, vmid int64) bool {
	if id.IsAdmin() {
		return true
	}
	for _, assigned := range id.AssignedVMs {
		if assigned == vmid {
			return true
		}
	}
	return false
}

// CanDeleteUser permits an admin to delete any account except their own.
func CanDeleteUser(actor Identity, targetID string) bool {
	return actor.IsAdmin() && actor.ID != targetID
}
