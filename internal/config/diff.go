package config

import (
	"reflect"
	"sort"
	"strings"

	logx "timezonebot/pkg/logx"
)

// changeSet accumulates per-section diff results for the reload summary.
type changeSet struct {
	sections []string
	attrs    []logx.Field
}

func (c *changeSet) mark(section string, attrs ...logx.Field) {
	c.sections = append(c.sections, section)
	c.attrs = append(c.attrs, attrs...)
}

// SummarizeConfigChange compares two configs and returns the changed
// section names, log fields describing the new values, and the plugins
// whose enable flag or config blob changed. Secrets (the bot token) never
// appear in the output.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	var cs changeSet

	ot, nt := oldCfg.Telegram, newCfg.Telegram
	if strings.TrimSpace(ot.PollTimeout) != strings.TrimSpace(nt.PollTimeout) ||
		!reflect.DeepEqual(ot.OwnerUserIDs, nt.OwnerUserIDs) ||
		strings.TrimSpace(ot.GroupLog) != strings.TrimSpace(nt.GroupLog) {
		cs.mark("telegram",
			logx.String("telegram.poll_timeout", strings.TrimSpace(nt.PollTimeout)),
			logx.Int("telegram.owner_count", len(nt.OwnerUserIDs)),
			logx.Bool("telegram.group_log_set", strings.TrimSpace(nt.GroupLog) != ""),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		cs.mark("logging",
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logx.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}

	if oldCfg.Scheduler.Enabled != newCfg.Scheduler.Enabled ||
		oldCfg.Scheduler.Workers != newCfg.Scheduler.Workers ||
		strings.TrimSpace(oldCfg.Scheduler.Timezone) != strings.TrimSpace(newCfg.Scheduler.Timezone) {
		cs.mark("scheduler",
			logx.Bool("scheduler.enabled", newCfg.Scheduler.Enabled),
			logx.Int("scheduler.workers", newCfg.Scheduler.Workers),
			logx.String("scheduler.timezone", strings.TrimSpace(newCfg.Scheduler.Timezone)),
		)
	}

	oldN := notifierOrDefault(oldCfg.Notifier)
	newN := notifierOrDefault(newCfg.Notifier)
	if !reflect.DeepEqual(*oldN, *newN) {
		cs.mark("notifier",
			logx.Bool("notifier.enabled", newN.Enabled),
			logx.Int("notifier.workers", newN.Workers),
			logx.Int("notifier.queue_size", newN.QueueSize),
			logx.Int("notifier.rate_per_sec", newN.RatePerSec),
			logx.Int("notifier.retry_max", newN.RetryMax),
		)
	}

	if storageChanged(oldCfg.Storage, newCfg.Storage) {
		driver, busy, pathSet := storageView(newCfg.Storage)
		cs.mark("storage",
			logx.String("storage.driver", driver),
			logx.Bool("storage.path_set", pathSet),
			logx.String("storage.busy_timeout", busy),
		)
	}

	pluginChanged := diffPlugins(oldCfg.Plugins, newCfg.Plugins)
	if len(pluginChanged) > 0 {
		cs.mark("plugins",
			logx.Int("plugins.changed_count", len(pluginChanged)),
			logx.Int("plugins.enabled_count", countEnabled(newCfg.Plugins)),
		)
	}

	sort.Strings(cs.sections)
	return cs.sections, cs.attrs, pluginChanged
}

// notifierOrDefault stands in the documented runtime defaults for an
// omitted notifier section, so omitted-vs-explicit-default never reports
// a change.
func notifierOrDefault(n *NotifierConfig) *NotifierConfig {
	if n != nil {
		return n
	}
	return &NotifierConfig{
		Enabled:         true,
		Workers:         2,
		QueueSize:       512,
		RatePerSec:      3,
		RetryMax:        3,
		RetryBase:       "500ms",
		RetryMaxDelay:   "10s",
		DedupWindow:     "1m",
		DedupMaxEntries: 2000,
	}
}

// storageView extracts the comparable bits of a storage section. The path
// itself is reduced to set/unset so filesystem locations stay out of logs.
func storageView(s *StorageConfig) (driver, busy string, pathSet bool) {
	if s == nil {
		return "", "", false
	}
	return strings.TrimSpace(s.Driver), strings.TrimSpace(s.BusyTimeout), strings.TrimSpace(s.Path) != ""
}

func storageChanged(oldS, newS *StorageConfig) bool {
	od, ob, op := storageView(oldS)
	nd, nb, np := storageView(newS)
	return od != nd || ob != nb || op != np
}

func countEnabled(m map[string]PluginConfigRaw) int {
	n := 0
	for _, v := range m {
		if v.Enabled {
			n++
		}
	}
	return n
}

func diffPlugins(oldM, newM map[string]PluginConfigRaw) []string {
	names := map[string]struct{}{}
	for k := range oldM {
		names[k] = struct{}{}
	}
	for k := range newM {
		names[k] = struct{}{}
	}

	out := make([]string, 0, len(names))
	for name := range names {
		o, n := oldM[name], newM[name]
		if o.Enabled != n.Enabled || canonicalHashJSON(o.Config) != canonicalHashJSON(n.Config) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
