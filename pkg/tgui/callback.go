package tgui

import "strings"

// MaxCallbackDataLen is Telegram's byte limit for callback_data. It applies
// to the whole "plugin:action:payload" string.
const MaxCallbackDataLen = 64

// Data assembles callback data as "plugin:action:payload".
// An empty payload drops the trailing separator. The payload is carried
// verbatim; keep it free of ':' only if the handler splits on it.
func Data(plugin, action, payload string) string {
	plugin = strings.TrimSpace(plugin)
	action = strings.TrimSpace(action)
	if payload == "" {
		return plugin + ":" + action
	}
	return plugin + ":" + action + ":" + payload
}
