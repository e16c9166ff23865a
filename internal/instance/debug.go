package instance

import (
	"log/slog"
	"strings"

	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

// Level maps a validation message severity onto a log level. The most severe
// bit wins when several are set.
func Level(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) slog.Level {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return slog.LevelError
	case severity&ext_debug_utils.SeverityWarning != 0:
		return slog.LevelWarn
	case severity&ext_debug_utils.SeverityInfo != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// TypeString renders message categories as "General | Validation".
func TypeString(msgType ext_debug_utils.DebugUtilsMessageTypeFlags) string {
	var parts []string
	if msgType&ext_debug_utils.TypeGeneral != 0 {
		parts = append(parts, "General")
	}
	if msgType&ext_debug_utils.TypeValidation != 0 {
		parts = append(parts, "Validation")
	}
	if msgType&ext_debug_utils.TypePerformance != 0 {
		parts = append(parts, "Performance")
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, " | ")
}
