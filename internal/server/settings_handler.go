package server

import (
	"net"
	"net/http"
	"os"

	"github.com/shirou/gopsutil/v3/host"

	"skiff/internal/settings"
	"skiff/pkg/httpx"
)

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.settings.Get())
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LocalName *string `json:"localName"`
		LocalIcon *string `json:"localIcon"`
	}
	if err := decodeValidated(r, settingsUpdateSchema, &body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	updated, err := s.settings.Update(settings.Patch{LocalName: body.LocalName, LocalIcon: body.LocalIcon})
	if err != nil {
		httpx.Internal(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true, "settings": updated})
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	cfg := s.settings.Get()
	hostname := ""
	if info, err := host.Info(); err == nil {
		hostname = info.Hostname
	}
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	writeJSON(w, map[string]any{
		"hostname": hostname,
		"name":     cfg.LocalName,
		"icon":     cfg.LocalIcon,
		"port":     s.cfg.Port,
		"ips":      localIPs(),
	})
}

// localIPs lists the machine's non-loopback IPv4 addresses, so peers can be
// pointed at this instance.
func localIPs() []string {
	out := []string{}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return out
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			out = append(out, v4.String())
		}
	}
	return out
}
