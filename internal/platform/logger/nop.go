package logger

// Nop devuelve un Logger que descarta todo.
// Útil en tests y en componentes puros que aceptan logger opcional.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) With(map[string]any) Logger          { return nopLogger{} }
func (nopLogger) Debug(string, map[string]any)        {}
func (nopLogger) Info(string, map[string]any)         {}
func (nopLogger) Warn(string, map[string]any)         {}
func (nopLogger) Error(string, map[string]any)        {}
