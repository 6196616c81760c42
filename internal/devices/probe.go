package devices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"skiff/internal/sshfs"
)

const httpProbeTimeout = 5 * time.Second

// ProbeHTTP performs the bounded reachability check used at add time and for
// health checks: GET {url}/api/files?path= with the given bearer token.
// A non-2xx answer or any transport failure is a probe failure.
func ProbeHTTP(ctx context.Context, baseURL, token string) error {
	cctx, cancel := context.WithTimeout(ctx, httpProbeTimeout)
	defer cancel()

	u := strings.TrimSuffix(baseURL, "/") + "/api/files?path="
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{Code: res.StatusCode}
	}
	return nil
}

// StatusError marks a probe that reached the device but got a non-2xx
// answer, as opposed to not reaching it at all.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device answered %d %s", e.Code, http.StatusText(e.Code))
}

// ProbeSSH confirms an SSH round trip and returns the remote home
// directory, used as the default root for new SSH devices.
func ProbeSSH(ctx context.Context, host string) (string, error) {
	return sshfs.Probe(ctx, host)
}

type Health struct {
	Status    string `json:"status"` // ok | error | unreachable
	LatencyMs int64  `json:"latencyMs"`
}

// CheckHealth measures one device. The local device is always healthy at
// zero latency; SSH devices answer a trivial echo; HTTP devices answer the
// same probe endpoint used at add time. Token layering for HTTP matches the
// proxy: device token, then the caller's, then the hub admin token.
func CheckHealth(ctx context.Context, d Device, callerToken, adminToken string) Health {
	switch {
	case d.ID == LocalID:
		return Health{Status: "ok", LatencyMs: 0}
	case d.SSH != nil:
		client := sshfs.NewClient(d.SSH.Host, d.SSH.Root)
		latency, err := client.Ping(ctx)
		if err != nil {
			return sshHealth(err)
		}
		return Health{Status: "ok", LatencyMs: latency.Milliseconds()}
	case d.HTTP != nil:
		token := d.HTTP.AuthToken
		if token == "" {
			token = callerToken
		}
		if token == "" {
			token = adminToken
		}
		start := time.Now()
		if err := ProbeHTTP(ctx, d.HTTP.URL, token); err != nil {
			status := "unreachable"
			var se *StatusError
			if errors.As(err, &se) {
				status = "error"
			}
			return Health{Status: status, LatencyMs: time.Since(start).Milliseconds()}
		}
		return Health{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	default:
		return Health{Status: "error"}
	}
}

func sshHealth(err error) Health {
	if re, ok := err.(*sshfs.RemoteError); ok {
		// 255 is the ssh client's own connection failure, -1 a spawn
		// failure. Anything else ran remotely and failed.
		if re.Code == 255 || re.Code == -1 {
			return Health{Status: "unreachable"}
		}
		return Health{Status: "error"}
	}
	// Timeouts and sandbox violations never reached the device.
	return Health{Status: "unreachable"}
}
