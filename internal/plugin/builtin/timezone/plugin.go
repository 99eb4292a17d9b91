package timezone

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"timezonebot/internal/eventbus"
	core "timezonebot/internal/plugin"
	"timezonebot/internal/storage"
	"timezonebot/internal/tz"
	logx "timezonebot/pkg/logx"
)

// Config is the raw plugin config blob.
//
// ScanGroups is a pointer so an omitted field defaults to true.
type Config struct {
	ScanGroups      *bool  `json:"scan_groups,omitempty"`
	RefreshInterval string `json:"refresh_interval,omitempty"`
	MaxExpressions  int    `json:"max_expressions,omitempty"`

	Timeouts struct {
		Command string `json:"command,omitempty"`
	} `json:"timeouts,omitempty"`
}

type runtimeConfig struct {
	scanGroups bool
	refresh    time.Duration
	maxExpr    int
}

const (
	defaultRefresh = time.Minute
	defaultMaxExpr = 4
	refreshTask    = "timemsg-refresh"
)

type Plugin struct {
	core.PluginBase

	reg  *tz.Registry
	pipe *tz.Pipeline

	mu      sync.RWMutex
	cfg     runtimeConfig
	started bool
}

func New(reg *tz.Registry) *Plugin {
	return &Plugin{reg: reg, pipe: tz.NewPipeline(reg)}
}

func (p *Plugin) Name() string { return "timezone" }

func (p *Plugin) Init(ctx context.Context, deps core.PluginDeps) error {
	p.InitBase(deps, p.Name())
	p.mu.Lock()
	p.cfg = runtimeConfig{scanGroups: true, refresh: defaultRefresh, maxExpr: defaultMaxExpr}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	p.StartBase(ctx)
	p.mu.Lock()
	p.started = true
	refresh := p.cfg.refresh
	p.mu.Unlock()

	if p.Deps.Store != nil {
		if _, err := p.Every(refreshTask, refresh, 30*time.Second, p.refreshTimeMessages); err != nil {
			p.Log.Warn("time message refresh not scheduled", logx.Err(err))
		}
	}
	return nil
}

func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.started = false
	p.mu.Unlock()
	p.RemoveSchedule(refreshTask)
	return p.StopBase(ctx)
}

func (p *Plugin) ValidateConfig(ctx context.Context, raw json.RawMessage) error {
	_, err := parseConfig(raw)
	return err
}

func (p *Plugin) OnConfigChange(ctx context.Context, raw json.RawMessage) error {
	rc, err := parseConfig(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	old := p.cfg
	p.cfg = rc
	started := p.started
	p.mu.Unlock()

	// Re-register the refresh schedule when the interval changed while running.
	if started && p.Deps.Store != nil && rc.refresh != old.refresh {
		if _, err := p.Every(refreshTask, rc.refresh, 30*time.Second, p.refreshTimeMessages); err != nil {
			return fmt.Errorf("reschedule time message refresh: %w", err)
		}
	}
	return nil
}

func parseConfig(raw json.RawMessage) (runtimeConfig, error) {
	rc := runtimeConfig{scanGroups: true, refresh: defaultRefresh, maxExpr: defaultMaxExpr}
	if len(raw) == 0 {
		return rc, nil
	}
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return rc, err
	}
	if c.ScanGroups != nil {
		rc.scanGroups = *c.ScanGroups
	}
	if s := strings.TrimSpace(c.RefreshInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return rc, fmt.Errorf("refresh_interval: %w", err)
		}
		if d < 10*time.Second {
			return rc, fmt.Errorf("refresh_interval: must be at least 10s, got %s", d)
		}
		rc.refresh = d
	}
	if c.MaxExpressions > 0 {
		rc.maxExpr = c.MaxExpressions
	}
	return rc, nil
}

func (p *Plugin) cfgSnapshot() runtimeConfig {
	p.mu.RLock()
	c := p.cfg
	p.mu.RUnlock()
	return c
}

// reqContext loads the requester's stored zone and recent-zone hint.
// Stored zones that no longer load are pruned with a warning.
func (p *Plugin) reqContext(ctx context.Context, chatID, userID int64) tz.ReqContext {
	var rctx tz.ReqContext
	st := p.Deps.Store
	if st == nil {
		return rctx
	}
	if hz, ok, err := st.GetHomeZone(ctx, chatID, userID); err == nil && ok {
		if _, lerr := p.reg.LookupID(tz.ZoneID(hz.Zone)); lerr == nil {
			rctx.HomeZone = tz.ZoneID(hz.Zone)
		} else {
			p.pruneHomeZone(ctx, hz)
		}
	}
	if hint, ok, err := st.GetZoneHint(ctx, chatID, userID); err == nil && ok {
		if _, lerr := p.reg.LookupID(tz.ZoneID(hint)); lerr == nil {
			rctx.RecentZone = tz.ZoneID(hint)
		}
	}
	return rctx
}

func (p *Plugin) pruneHomeZone(ctx context.Context, hz storage.HomeZone) {
	st := p.Deps.Store
	if st == nil {
		return
	}
	p.Log.Warn("pruning invalid stored zone",
		logx.Int64("chat_id", hz.ChatID),
		logx.Int64("user_id", hz.UserID),
		logx.String("zone", hz.Zone),
	)
	_ = st.DeleteHomeZone(ctx, hz.ChatID, hz.UserID)
	p.PublishEvent(eventbus.TypeZonePruned, hz.Zone)
}

// chatZones returns the valid stored home zones of a chat, pruning broken
// entries on the way.
func (p *Plugin) chatZones(ctx context.Context, chatID int64) []storage.HomeZone {
	st := p.Deps.Store
	if st == nil {
		return nil
	}
	all, err := st.ListHomeZones(ctx, chatID)
	if err != nil {
		p.Log.Warn("list home zones failed", logx.Int64("chat_id", chatID), logx.Err(err))
		return nil
	}
	out := make([]storage.HomeZone, 0, len(all))
	for _, hz := range all {
		if _, err := p.reg.LookupID(tz.ZoneID(hz.Zone)); err != nil {
			p.pruneHomeZone(ctx, hz)
			continue
		}
		out = append(out, hz)
	}
	return out
}

// targetZones picks the conversion targets for a chat: the distinct stored
// zones of its members, falling back to the requester's home zone plus UTC.
func (p *Plugin) targetZones(ctx context.Context, chatID int64, rctx tz.ReqContext) []tz.ZoneID {
	var out []tz.ZoneID
	seen := map[tz.ZoneID]bool{}
	add := func(id tz.ZoneID) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, hz := range p.chatZones(ctx, chatID) {
		add(tz.ZoneID(hz.Zone))
	}
	if len(out) == 0 {
		add(rctx.HomeZone)
		add(tz.ZoneID("UTC"))
	}
	return out
}

// processText runs the full pipeline for one message and feeds confident
// resolutions back into the recent-zone hint.
func (p *Plugin) processText(ctx context.Context, chatID, userID int64, text string) []tz.Record {
	rctx := p.reqContext(ctx, chatID, userID)
	targets := p.targetZones(ctx, chatID, rctx)
	recs := p.pipe.Process(text, rctx, targets, time.Now())

	if max := p.cfgSnapshot().maxExpr; len(recs) > max {
		recs = recs[:max]
	}

	if st := p.Deps.Store; st != nil {
		for _, rec := range recs {
			if rec.Kind == tz.RecordConverted && rec.Expr.ZoneToken != "" {
				if err := st.PutZoneHint(ctx, chatID, userID, rec.Source.String()); err != nil {
					p.Log.Debug("zone hint update failed", logx.Err(err))
				}
			}
		}
	}
	return recs
}
