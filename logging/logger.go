package logging

// Logger is the leveled logger the reconstruction stages and the command line tool log through.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infof(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	AddAppender(appender Appender)
	SetLevel(level Level)
	Sync() error
}
