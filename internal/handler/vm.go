package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmportal/internal/access"
	"vmportal/internal/middleware"
	"vmportal/internal/proxmox"
)

type VMHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Start(c *gin.Context)
	Stop(c *gin.Context)
	Shutdown(c *gin.Context)
	VNC(c *gin.Context)
}

type vmHandler struct {
	gateway proxmox.Gateway
	node    string
	host    string
	log     *zap.Logger
}

// NewVMHandler serves the per-VM endpoints against the configured node.
// host is what VNC clients should dial, typically the Proxmox host itself.
func NewVMHandler(gateway proxmox.Gateway, node, host string, log *zap.Logger) VMHandler {
	return &vmHandler{gateway: gateway, node: node, host: host, log: log}
}

// List returns the hypervisor's VM listing narrowed to what the caller may
// see. Admins get everything; students get their assigned subset.
func (h *vmHandler) List(c *gin.Context) {
	identity := middleware.Identity(c)

	vms, err := h.gateway.GetVMs(c.Request.Context(), h.node)
	if err != nil {
		h.log.Error("Failed to list VMs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, access.FilterVisibleVMs(identity, vms))
}

// vmid parses and authorizes the :vmid path parameter. A student may only
// touch VMs on their assignment list; admins may touch any. Returns false
// after writing the response when the request must not proceed.
func (h *vmHandler) vmid(c *gin.Context) (int64, bool) {
	vmid, err := strconv.ParseInt(c.Param("vmid"), 10, 64)
	if err != nil || vmid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VM id"})
		return 0, false
	}

	if !access.CanAccessVM(middleware.Identity(c), vmid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access to this VM is not allowed"})
		return 0, false
	}
	return vmid, true
}

func (h *vmHandler) Get(c *gin.Context) {
	vmid, ok := h.vmid(c)
	if !ok {
		return
	}

	vm, err := h.gateway.GetVM(c.Request.Context(), h.node, vmid)
	if err != nil {
		if errors.Is(err, proxmox.ErrVMNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "VM not found"})
			return
		}
		h.log.Error("Failed to get VM", zap.Int64("vmid", vmid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, vm)
}

func (h *vmHandler) Start(c *gin.Context) {
	h.action(c, "VM started", h.gateway.StartVM)
}

func (h *vmHandler) Stop(c *gin.Context) {
	h.action(c, "VM stopped", h.gateway.StopVM)
}

func (h *vmHandler) Shutdown(c *gin.Context) {
	h.action(c, "VM shutdown initiated", h.gateway.ShutdownVM)
}

func (h *vmHandler) action(c *gin.Context, message string, op func(ctx context.Context, node string, vmid int64) (string, error)) {
	vmid, ok := h.vmid(c)
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), h.node, vmid)
	if err != nil {
		if errors.Is(err, proxmox.ErrVMNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "VM not found"})
			return
		}
		h.log.Error("VM action failed", zap.Int64("vmid", vmid), zap.String("action", message), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "result": result})
}

// VNC returns console connection details for the browser client.
func (h *vmHandler) VNC(c *gin.Context) {
	vmid, ok := h.vmid(c)
	if !ok {
		return
	}

	proxy, err := h.gateway.GetVNCProxy(c.Request.Context(), h.node, vmid)
	if err != nil {
		if errors.Is(err, proxmox.ErrVMNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "VM not found"})
			return
		}
		h.log.Error("Failed to get VNC proxy", zap.Int64("vmid", vmid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	proxy.Host = h.host
	c.JSON(http.StatusOK, proxy)
}
