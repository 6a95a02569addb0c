package utils

import (
	"time"
)

const (
	HTTPReqTimeout = 1 * time.Minute

	DefaultEndpoint = "https://dwn.tbddev.org/beta"
	DefaultGateway  = "https://diddht.tbddev.org"
)

var Settings = &Hub{}

type Hub struct {
	home     string        // root of the tool's output, see ToolHome
	endpoint string        // DWN endpoint put to the service of new DIDs
	gateway  string        // DHT gateway for publish and resolve
	timeout  time.Duration // timeout for a single external call

	versionInfo string
}

// SetHome sets the tool home. Empty value means ToolHome().
func (h *Hub) SetHome(home string) {
	h.home = home
}

func (h *Hub) Home() string {
	if h.home == "" {
		return ToolHome()
	}
	return h.home
}

// SetEndpoint sets the default DWN endpoint.
func (h *Hub) SetEndpoint(endpoint string) {
	h.endpoint = endpoint
}

func (h *Hub) Endpoint() string {
	if h.endpoint == "" {
		return DefaultEndpoint
	}
	return h.endpoint
}

// SetGateway sets the default DHT gateway URI.
func (h *Hub) SetGateway(gateway string) {
	h.gateway = gateway
}

func (h *Hub) Gateway() string {
	if h.gateway == "" {
		return DefaultGateway
	}
	return h.gateway
}

// SetTimeout sets the default timeout for HTTP requests.
func (h *Hub) SetTimeout(to time.Duration) {
	h.timeout = to
}

func (h *Hub) Timeout() time.Duration {
	if h.timeout == 0 {
		return HTTPReqTimeout
	}
	return h.timeout
}

// SetVersionInfo sets current version info which is shown by the version
// command.
func (h *Hub) SetVersionInfo(info string) {
	h.versionInfo = info
}

func (h *Hub) VersionInfo() string {
	if h.versionInfo == "" {
		return VersionInfo()
	}
	return h.versionInfo
}
