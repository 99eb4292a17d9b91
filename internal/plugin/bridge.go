package plugin

import (
	"timezonebot/internal/config"
	"timezonebot/internal/runtime/supervisor"
	"timezonebot/internal/transport/telegram/router"
)

// Aliases re-exporting the config, supervisor and router names that plugins
// touch, so a plugin package only ever imports this one.

type Config = config.Config

type ConfigManager = config.ConfigManager

// PluginConfigRaw is the raw per-plugin config blob inside config.Config.
// The schema stays centralized in the config package.
type PluginConfigRaw = config.PluginConfigRaw

type Supervisor = supervisor.Supervisor

var (
	NewSupervisor     = supervisor.NewSupervisor
	WithLogger        = supervisor.WithLogger
	WithCancelOnError = supervisor.WithCancelOnError
)

// Router surface: commands, callbacks and message scanners.

type Access = router.Access

const (
	AccessEveryone  = router.AccessEveryone
	AccessOwnerOnly = router.AccessOwnerOnly
)

type Command = router.Command

type Request = router.Request

type CallbackRoute = router.CallbackRoute

type CallbackAccess = router.CallbackAccess

const (
	CallbackAccessOwnerOnly = router.CallbackAccessOwnerOnly
	CallbackAccessEveryone  = router.CallbackAccessEveryone
)

type Scanner = router.Scanner

type Services = router.Services

type CommandManager = router.CommandManager

type NotifierPort = router.NotifierPort

// SchedulerSnapshot is the scheduler state view behind Services.Scheduler.
type SchedulerSnapshot = router.Snapshot

type SupervisorCounters = supervisor.SupervisorCounters
