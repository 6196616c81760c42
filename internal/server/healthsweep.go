package server

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"skiff/internal/devices"
)

// StartHealthSweep probes every registered device on a fixed schedule,
// keeps the skiff_device_up gauge current and logs status transitions.
// Returns the scheduler so the caller owns its lifecycle.
func (s *Server) StartHealthSweep(logger *zerolog.Logger, every time.Duration) *cron.Cron {
	var mu sync.Mutex
	last := map[string]string{}

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		for _, d := range s.devices.List() {
			h := devices.CheckHealth(ctx, d, "", s.cfg.AdminToken)
			up := 0.0
			if h.Status == "ok" {
				up = 1
			}
			deviceUp.WithLabelValues(d.ID).Set(up)

			mu.Lock()
			prev, seen := last[d.ID]
			last[d.ID] = h.Status
			mu.Unlock()
			if seen && prev == h.Status {
				continue
			}
			ev := logger.Info()
			if h.Status != "ok" {
				ev = logger.Warn()
			}
			ev.Str("device", d.ID).Str("status", h.Status).Int64("latencyMs", h.LatencyMs).Msg("device health")
		}
	}

	c := cron.New()
	_, _ = c.AddFunc("@every "+every.String(), sweep)
	c.Start()
	go sweep()
	return c
}
