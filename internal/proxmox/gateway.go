// Package proxmox talks to the Proxmox VE REST API on behalf of the portal.
// The portal only relays hypervisor state; it never owns it.
package proxmox

import (
	"context"
	"errors"

	"vmportal/internal/models"
)

// ErrVMNotFound means the hypervisor does not know the requested VM.
var ErrVMNotFound = errors.New("VM not found")

// Gateway is the surface of the hypervisor consumed by the HTTP layer.
// Constructed once at startup and injected; the mock implementation is an
// explicit configuration choice.
type Gateway interface {
	GetVMs(ctx context.Context, node string) ([]models.VM, error)
	GetVM(ctx context.Context, node string, vmid int64) (*models.VM, error)
	StartVM(ctx context.Context, node string, vmid int64) (string, error)
	StopVM(ctx context.Context, node string, vmid int64) (string, error)
	ShutdownVM(ctx context.Context, node string, vmid int64) (string, error)
	GetVNCProxy(ctx context.Context, node string, vmid int64) (*models.VNCProxy, error)
	GetNodeStatus(ctx context.Context, node string) (*models.NodeStatus, error)
	GetStorages(ctx context.Context, node string) ([]models.Storage, error)
}
