package status

import (
	"context"
	"runtime"
	"sort"
	"time"

	core "timezonebot/internal/plugin"
	"timezonebot/pkg/tgui"
)

func (p *Plugin) Commands() []core.Command {
	return []core.Command{
		{
			Route:       "status",
			Description: "runtime status: scheduler, queues, supervisors",
			Usage:       "/status",
			Access:      core.AccessOwnerOnly,
			Handle:      p.cmdStatus,
		},
	}
}

func (p *Plugin) cmdStatus(ctx context.Context, req *core.Request) error {
	view := p.collect(req.Services)
	msg := tgui.New().
		Title("🩺", "status").
		RawLine(string(tgui.Pre(renderStatus(view)))).
		Build()
	_, err := msg.Send(ctx, req.Adapter, req.Chat)
	return err
}

// collect gathers the point-in-time runtime state for rendering. Every
// source is optional; missing services render as "n/a".
func (p *Plugin) collect(serv *core.Services) statusView {
	v := statusView{
		uptime:     time.Since(p.startedAt),
		goroutines: runtime.NumGoroutine(),
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	v.heapAlloc = m.HeapAlloc
	v.sys = m.Sys
	v.numGC = m.NumGC

	if serv == nil {
		return v
	}
	if serv.Scheduler != nil {
		v.sched = serv.Scheduler.Snapshot()
		v.schedOK = true
	}
	if serv.AppSupervisor != nil {
		v.sups = append(v.sups, supLine{name: "app", c: serv.AppSupervisor.Counters()})
	}
	if sup := p.Supervisor(); sup != nil {
		v.sups = append(v.sups, supLine{name: "plugin." + p.Name(), c: sup.Counters()})
	}
	if serv.RuntimeSupervisors != nil {
		extra := serv.RuntimeSupervisors.Snapshot()
		names := make([]string, 0, len(extra))
		for name, sup := range extra {
			if sup == nil {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v.sups = append(v.sups, supLine{name: name, c: extra[name].Counters()})
		}
	}
	return v
}
