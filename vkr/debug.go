package vkr

import (
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

func debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    logDebug,
	}
}

func debugLevel(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) log.Level {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return log.ErrorLevel
	case severity&ext_debug_utils.SeverityWarning != 0:
		return log.WarnLevel
	case severity&ext_debug_utils.SeverityInfo != 0:
		return log.InfoLevel
	}
	return log.DebugLevel
}

// logDebug routes validation messages into the program log. Returning false
// lets the triggering call proceed.
func logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	log.WithFields(log.Fields{
		"source": "vulkan",
		"type":   msgType.String(),
	}).Log(debugLevel(severity), data.Message)
	return false
}
