package status

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	core "timezonebot/internal/plugin"
	kit "timezonebot/internal/transport"
)

// Config is the raw plugin config blob.
//
// Report is an optional schedule for pushing the status digest to
// ReportChatID: a cron spec ("0 9 * * *", "@daily"), a Go duration ("6h"),
// or HH:MM as an interval ("01:30"). Empty disables the push.
type Config struct {
	Report       string `json:"report,omitempty"`
	ReportChatID int64  `json:"report_chat_id,omitempty"`
}

type runtimeConfig struct {
	report string
	chatID int64
}

const reportTask = "report"

type Plugin struct {
	core.PluginBase

	startedAt time.Time

	mu      sync.Mutex
	cfg     runtimeConfig
	started bool
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return "status" }

func (p *Plugin) Init(ctx context.Context, deps core.PluginDeps) error {
	p.InitBase(deps, p.Name())
	p.startedAt = time.Now()
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	p.StartBase(ctx)
	p.mu.Lock()
	p.started = true
	cfg := p.cfg
	p.mu.Unlock()
	return p.applySchedule(cfg)
}

func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.started = false
	p.mu.Unlock()
	p.RemoveSchedule(reportTask)
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

	if started && rc != old {
		return p.applySchedule(rc)
	}
	return nil
}

func parseConfig(raw json.RawMessage) (runtimeConfig, error) {
	var rc runtimeConfig
	if len(raw) == 0 {
		return rc, nil
	}
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return rc, err
	}
	rc.report = strings.TrimSpace(c.Report)
	rc.chatID = c.ReportChatID
	if rc.report != "" && rc.chatID == 0 {
		return rc, fmt.Errorf("report: report_chat_id required")
	}
	return rc, nil
}

// applySchedule re-registers the periodic digest. The schedule string is
// parsed on registration, so a malformed value surfaces as a config error
// rather than a silent no-op.
func (p *Plugin) applySchedule(rc runtimeConfig) error {
	p.RemoveSchedule(reportTask)
	if rc.report == "" || rc.chatID == 0 {
		return nil
	}
	if _, err := p.Schedule(reportTask, rc.report, 15*time.Second, p.sendReport); err != nil {
		return fmt.Errorf("schedule status report: %w", err)
	}
	return nil
}

// sendReport pushes the digest through the notifier so it shares the
// bot-wide rate limit with everything else.
func (p *Plugin) sendReport(ctx context.Context) error {
	p.mu.Lock()
	chatID := p.cfg.chatID
	p.mu.Unlock()
	if chatID == 0 {
		return nil
	}
	view := p.collect(p.Deps.Services)
	return p.Notify(ctx, kit.Notification{
		Channel:  "telegram",
		Priority: 5,
		Target:   kit.ChatTarget{ChatID: chatID},
		Text:     "🩺 status\n" + renderStatus(view),
	})
}
