package proxmox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vmportal/internal/models"
)

// MockGateway serves a fixed inventory so the portal can be demonstrated
// without a real Proxmox cluster. Selected via proxmox.mock in the config.
type MockGateway struct {
	logger *zap.Logger
}

func NewMockGateway(logger *zap.Logger) *MockGateway {
	logger.Warn("Using mock Proxmox gateway, no real hypervisor connection")
	return &MockGateway{logger: logger}
}

func (m *MockGateway) GetVMs(_ context.Context, node string) ([]models.VM, error) {
	m.logger.Debug("Mock: listing VMs", zap.String("node", node))
	return []models.VM{
		{VMID: 100, Name: "Ubuntu-Server-01", Status: "running", MaxMem: 4 << 30, Mem: 2 << 30, MaxDisk: 32 << 30, Disk: 10 << 30, CPUs: 2, CPU: 0.25, Uptime: 86400},
		{VMID: 101, Name: "Ubuntu-Server-02", Status: "stopped", MaxMem: 2 << 30, MaxDisk: 20 << 30, Disk: 5 << 30, CPUs: 1},
		{VMID: 102, Name: "Windows-Server-01", Status: "running", MaxMem: 8 << 30, Mem: 6 << 30, MaxDisk: 100 << 30, Disk: 50 << 30, CPUs: 4, CPU: 0.45, Uptime: 172800},
	}, nil
}

func (m *MockGateway) GetVM(ctx context.Context, node string, vmid int64) (*models.VM, error) {
	vms, _ := m.GetVMs(ctx, node)
	for _, vm := range vms {
		if vm.VMID == vmid {
			v := vm
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: vmid %d on node %s", ErrVMNotFound, vmid, node)
}

func (m *MockGateway) StartVM(_ context.Context, node string, vmid int64) (string, error) {
	m.logger.Debug("Mock: starting VM", zap.String("node", node), zap.Int64("vmid", vmid))
	return mockUPID("qmstart", vmid), nil
}

func (m *MockGateway) StopVM(_ context.Context, node string, vmid int64) (string, error) {
	m.logger.Debug("Mock: stopping VM", zap.String("node", node), zap.Int64("vmid", vmid))
	return mockUPID("qmstop", vmid), nil
}

func (m *MockGateway) ShutdownVM(_ context.Context, node string, vmid int64) (string, error) {
	m.logger.Debug("Mock: shutting down VM", zap.String("node", node), zap.Int64("vmid", vmid))
	return mockUPID("qmshutdown", vmid), nil
}

func (m *MockGateway) GetVNCProxy(_ context.Context, node string, vmid int64) (*models.VNCProxy, error) {
	m.logger.Debug("Mock: VNC proxy", zap.String("node", node), zap.Int64("vmid", vmid))
	return &models.VNCProxy{
		Port:   "5900",
		Ticket: fmt.Sprintf("mock-vnc-ticket-%d", time.Now().UnixNano()),
		UPID:   mockUPID("vncproxy", vmid),
		User:   "root@pam",
		Cert:   "mock-cert",
		VMID:   vmid,
	}, nil
}

func (m *MockGateway) GetNodeStatus(_ context.Context, node string) (*models.NodeStatus, error) {
	m.logger.Debug("Mock: node status", zap.String("node", node))
	return &models.NodeStatus{
		CPU:     0.35,
		MaxCPU:  8,
		Mem:     8 << 30,
		MaxMem:  16 << 30,
		Disk:    100 << 30,
		MaxDisk: 500 << 30,
		Uptime:  259200,
	}, nil
}

func (m *MockGateway) GetStorages(_ context.Context, node string) ([]models.Storage, error) {
	m.logger.Debug("Mock: storages", zap.String("node", node))
	return []models.Storage{
		{Storage: "local", Type: "dir", Content: "vztmpl,iso,backup", Active: 1, Avail: 400 << 30, Total: 500 << 30, Used: 100 << 30},
	}, nil
}

func mockUPID(task string, vmid int64) string {
	return fmt.Sprintf("UPID:mock:0000:0000:%X:%s:%d:root@pam:", time.Now().Unix(), task, vmid)
}
