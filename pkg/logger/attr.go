package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RobotID records a robot record identifier under the key "robot_id".
func RobotID(id int) slog.Attr {
	return slog.Int("robot_id", id)
}

// Reputation records a robot reputation under the key "reputation".
// Empty values produce an empty Attr.
func Reputation(status string) slog.Attr {
	if status == "" {
		return slog.Attr{}
	}
	return slog.String("reputation", status)
}

// Address records a visitor IP under the key "address".
func Address(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("address", ip)
}

// UserAgentHash records a hashed User-Agent under the key "ua_hash".
// Raw User-Agents are not logged.
func UserAgentHash(hash string) slog.Attr {
	if hash == "" {
		return slog.Attr{}
	}
	return slog.String("ua_hash", hash)
}

// Source records where data came from (a file path, S3 URL or API base).
func Source(src string) slog.Attr {
	return slog.String("source", src)
}

// Count records a quantity under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}
