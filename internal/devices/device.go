// Package devices holds the registry of browsing targets: the synthetic
// local device plus remote machines reachable over HTTP or SSH.
package devices

import (
	"errors"
	"regexp"
	"strings"
)

// LocalID is the reserved id of the hub itself. It never appears in the
// persisted registry and the synthetic local device is always enabled.
const LocalID = "local"

var (
	ErrNotFound      = errors.New("device not found")
	ErrConflict      = errors.New("device id already exists")
	ErrLocalReserved = errors.New("the local device cannot be modified")
)

// HTTPConn describes a device running its own skiff instance.
type HTTPConn struct {
	URL       string `json:"url"`
	AuthToken string `json:"authToken,omitempty"`
}

// SSHConn describes a device reachable only via ssh.
type SSHConn struct {
	Host string `json:"host"`
	Root string `json:"root,omitempty"`
}

// Device is one browsing target. Exactly one of HTTP and SSH is set; the
// pair is the tagged connection union the dispatcher branches on.
type Device struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Icon    string    `json:"icon,omitempty"`
	Enabled bool      `json:"enabled"`
	HTTP    *HTTPConn `json:"http,omitempty"`
	SSH     *SSHConn  `json:"ssh,omitempty"`
}

// Valid checks the one-connection invariant.
func (d Device) Valid() bool {
	return (d.HTTP != nil) != (d.SSH != nil)
}

// Public is the redacted wire representation: the raw auth token never
// leaves the hub, only whether one is stored.
type Public struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	Enabled      bool   `json:"enabled"`
	IsLocal      bool   `json:"isLocal"`
	URL          string `json:"url,omitempty"`
	SSHHost      string `json:"sshHost,omitempty"`
	SSHRoot      string `json:"sshRoot,omitempty"`
	HasAuthToken bool   `json:"hasAuthToken"`
}

func (d Device) Public() Public {
	p := Public{ID: d.ID, Name: d.Name, Icon: d.Icon, Enabled: d.Enabled}
	if d.HTTP != nil {
		p.URL = d.HTTP.URL
		p.HasAuthToken = d.HTTP.AuthToken != ""
	}
	if d.SSH != nil {
		p.SSHHost = d.SSH.Host
		p.SSHRoot = d.SSH.Root
	}
	return p
}

// Local builds the synthetic local device from the persisted identity.
func Local(name, icon string) Public {
	if name == "" {
		name = "This device"
	}
	return Public{ID: LocalID, Name: name, Icon: icon, Enabled: true, IsLocal: true}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a device or combo id from its display name: lowercased,
// runs of non-alphanumerics collapsed to single hyphens, trimmed.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
