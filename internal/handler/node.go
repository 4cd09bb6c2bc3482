package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmportal/internal/proxmox"
)

type NodeHandler interface {
	Resources(c *gin.Context)
	Storages(c *gin.Context)
}

type nodeHandler struct {
	gateway proxmox.Gateway
	node    string
	log     *zap.Logger
}

func NewNodeHandler(gateway proxmox.Gateway, node string, log *zap.Logger) NodeHandler {
	return &nodeHandler{gateway: gateway, node: node, log: log}
}

func (h *nodeHandler) Resources(c *gin.Context) {
	status, err := h.gateway.GetNodeStatus(c.Request.Context(), h.node)
	if err != nil {
		h.log.Error("Failed to get node status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *nodeHandler) Storages(c *gin.Context) {
	storages, err := h.gateway.GetStorages(c.Request.Context(), h.node)
	if err != nil {
		h.log.Error("Failed to get storages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, storages)
}
