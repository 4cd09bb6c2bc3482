package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vmportal/internal/models"
)

// ErrInvalidCredentials means the configured Proxmox account was rejected.
var ErrInvalidCredentials = errors.New("invalid Proxmox credentials")

// Config for the HTTPS client.
type Config struct {
	Host          string
	Port          int
	User          string
	Password      string
	Timeout       time.Duration
	SkipTLSVerify bool
}

// Client is an authenticated HTTPS client for the Proxmox API. It holds one
// shared upstream ticket; concurrent requests may race to refresh it after
// expiry, which is tolerated because re-authentication is idempotent.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	logger     *zap.Logger

	mu        sync.Mutex
	ticket    string
	csrfToken string
}

// NewClient creates a new Proxmox API client. Lab clusters usually run on
// self-signed certificates, hence the TLS verification switch.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	transport := &http.Transport{}
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL:  fmt.Sprintf("https://%s:%d/api2/json", cfg.Host, cfg.Port),
		user:     cfg.User,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// authenticate obtains a fresh ticket and CSRF prevention token.
func (c *Client) authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.user)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/access/ticket", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create ticket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyNetError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxmox ticket request returned status %d", resp.StatusCode)
	}

	var response struct {
		Data struct {
			Ticket    string `json:"ticket"`
			CSRFToken string `json:"CSRFPreventionToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode ticket response: %w", err)
	}

	c.mu.Lock()
	c.ticket = response.Data.Ticket
	c.csrfToken = response.Data.CSRFToken
	c.mu.Unlock()

	c.logger.Info("Authenticated to Proxmox")
	return nil
}

func (c *Client) credentials() (ticket, csrf string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticket, c.csrfToken
}

// request performs one API call, authenticating on first use and retrying
// exactly once after an upstream 401 (expired ticket). Other failures
// propagate immediately. The response "data" payload is decoded into out.
func (c *Client) request(ctx context.Context, method, endpoint string, out interface{}) error {
	ticket, _ := c.credentials()
	if ticket == "" {
		if err := c.authenticate(ctx); err != nil {
			return err
		}
	}

	status, err := c.do(ctx, method, endpoint, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		if err := c.authenticate(ctx); err != nil {
			return err
		}
		status, err = c.do(ctx, method, endpoint, out)
		if err != nil {
			return err
		}
	}
	if status == http.StatusNotFound {
		return ErrVMNotFound
	}
	if status != http.StatusOK {
		return fmt.Errorf("proxmox returned status %d for %s %s", status, method, endpoint)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	ticket, csrf := c.credentials()
	req.Header.Set("Cookie", "PVEAuthCookie="+ticket)
	if method != http.MethodGet {
		req.Header.Set("CSRFPreventionToken", csrf)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, classifyNetError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if out != nil {
		var response struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return 0, fmt.Errorf("decode response for %s: %w", endpoint, err)
		}
		if err := json.Unmarshal(response.Data, out); err != nil {
			return 0, fmt.Errorf("decode data for %s: %w", endpoint, err)
		}
	}
	return http.StatusOK, nil
}

// classifyNetError turns transport failures into operator-readable messages
// without leaking credentials.
func classifyNetError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("proxmox host not found: %s", dnsErr.Name)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return errors.New("cannot connect to Proxmox server: connection refused")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.New("connection to Proxmox server timed out")
	}
	return fmt.Errorf("proxmox request failed: %w", err)
}

func (c *Client) GetVMs(ctx context.Context, node string) ([]models.VM, error) {
	var vms []models.VM
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/nodes/%s/qemu", node), &vms); err != nil {
		return nil, err
	}
	return vms, nil
}

func (c *Client) GetVM(ctx context.Context, node string, vmid int64) (*models.VM, error) {
	var vm models.VM
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/nodes/%s/qemu/%d/status/current", node, vmid), &vm); err != nil {
		return nil, err
	}
	vm.VMID = vmid
	return &vm, nil
}

func (c *Client) StartVM(ctx context.Context, node string, vmid int64) (string, error) {
	var upid string
	if err := c.request(ctx, http.MethodPost, fmt.Sprintf("/nodes/%s/qemu/%d/status/start", node, vmid), &upid); err != nil {
		return "", err
	}
	return upid, nil
}

func (c *Client) StopVM(ctx context.Context, node string, vmid int64) (string, error) {
	var upid string
	if err := c.request(ctx, http.MethodPost, fmt.Sprintf("/nodes/%s/qemu/%d/status/stop", node, vmid), &upid); err != nil {
		return "", err
	}
	return upid, nil
}

func (c *Client) ShutdownVM(ctx context.Context, node string, vmid int64) (string, error) {
	var upid string
	if err := c.request(ctx, http.MethodPost, fmt.Sprintf("/nodes/%s/qemu/%d/status/shutdown", node, vmid), &upid); err != nil {
		return "", err
	}
	return upid, nil
}

func (c *Client) GetVNCProxy(ctx context.Context, node string, vmid int64) (*models.VNCProxy, error) {
	var proxy struct {
		Port   json.Number `json:"port"`
		Ticket string      `json:"ticket"`
		UPID   string      `json:"upid"`
		User   string      `json:"user"`
		Cert   string      `json:"cert"`
	}
	endpoint := fmt.Sprintf("/nodes/%s/qemu/%d/vncproxy?websocket=1", node, vmid)
	if err := c.request(ctx, http.MethodPost, endpoint, &proxy); err != nil {
		return nil, err
	}
	return &models.VNCProxy{
		Port:   proxy.Port.String(),
		Ticket: proxy.Ticket,
		UPID:   proxy.UPID,
		User:   proxy.User,
		Cert:   proxy.Cert,
		VMID:   vmid,
	}, nil
}

func (c *Client) GetNodeStatus(ctx context.Context, node string) (*models.NodeStatus, error) {
	var status models.NodeStatus
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/nodes/%s/status", node), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetStorages(ctx context.Context, node string) ([]models.Storage, error) {
	var storages []models.Storage
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/nodes/%s/storage", node), &storages); err != nil {
		return nil, err
	}
	return storages, nil
}
