package sl

import (
	"log/slog"
)

// Err creates a slog.Attr with the given error.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Employee groups the identifying fields of a payroll record under the "employee" key.
func Employee(id, name string) slog.Attr {
	return slog.Group("employee",
		slog.String("id", id),
		slog.String("name", name),
	)
}
