package poll

import "log/slog"

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// sessionValue renders an optional session id for log attributes.
func sessionValue(id *int64) any {
	if id == nil {
		return "none"
	}
	return *id
}
