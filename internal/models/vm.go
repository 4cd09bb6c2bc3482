package models

// VM mirrors a row of the Proxmox /nodes/:node/qemu listing. The portal never
// owns VM state; it relays what the hypervisor reports.
type VM struct {
	VMID    int64   `json:"vmid"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Mem     int64   `json:"mem"`
	MaxMem  int64   `json:"maxmem"`
	Disk    int64   `json:"disk"`
	MaxDisk int64   `json:"maxdisk"`
	CPU     float64 `json:"cpu"`
	CPUs    int     `json:"cpus"`
	Uptime  int64   `json:"uptime"`
}

// VNCProxy is the console hookup returned by the vncproxy call, plus the
// host the browser should dial.
type VNCProxy struct {
	Host   string `json:"host"`
	Port   string `json:"port"`
	Ticket string `json:"ticket"`
	UPID   string `json:"upid"`
	User   string `json:"user"`
	Cert   string `json:"cert"`
	VMID   int64  `json:"vmid"`
}

// NodeStatus carries node-level resource figures from /nodes/:node/status.
type NodeStatus struct {
	CPU     float64 `json:"cpu"`
	MaxCPU  int     `json:"maxcpu"`
	Mem     int64   `json:"mem"`
	MaxMem  int64   `json:"maxmem"`
	Disk    int64   `json:"disk"`
	MaxDisk int64   `json:"maxdisk"`
	Uptime  int64   `json:"uptime"`
}

// Storage is one row of /nodes/:node/storage.
type Storage struct {
	Storage string `json:"storage"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Active  int    `json:"active"`
	Avail   int64  `json:"avail"`
	Total   int64  `json:"total"`
	Used    int64  `json:"used"`
}
