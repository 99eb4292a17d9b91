package router

import (
	"timezonebot/internal/config"
	"timezonebot/internal/runtime/supervisor"
	"timezonebot/internal/task/scheduler"
)

// Aliases so router consumers don't import config/supervisor/scheduler
// directly. Only names the router surface actually hands out live here.

type Config = config.Config

type ConfigManager = config.ConfigManager

type Supervisor = supervisor.Supervisor

var (
	NewSupervisor     = supervisor.NewSupervisor
	WithLogger        = supervisor.WithLogger
	WithCancelOnError = supervisor.WithCancelOnError

	WithRestartBackoff    = supervisor.WithRestartBackoff
	WithPublishFirstError = supervisor.WithPublishFirstError
	WithStopOnCleanExit   = supervisor.WithStopOnCleanExit
)

// Snapshot is the scheduler state view surfaced through SchedulerPort.
type Snapshot = scheduler.Snapshot
