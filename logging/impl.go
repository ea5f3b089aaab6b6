package logging

import (
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl is a zap sugared logger writing to a tee of its appenders, each gated by the logger's level.
type impl struct {
	*zap.SugaredLogger

	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	imp := &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
	imp.build()
	return imp
}

func (imp *impl) build() {
	cores := make([]zapcore.Core, 0, len(imp.appenders))
	for _, appender := range imp.appenders {
		cores = append(cores, &appenderCore{LevelEnabler: imp.level, appender: appender, inUTC: imp.inUTC})
	}
	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if imp.name != "" {
		logger = logger.Named(imp.name)
	}
	imp.SugaredLogger = logger.Sugar()
}

// AddAppender must not be called concurrently with logging.
func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
	imp.build()
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return newImpl(name, imp.level.Get(), imp.inUTC, slices.Clone(imp.appenders)...)
}

// appenderCore adapts an Appender to a zapcore.Core.
type appenderCore struct {
	zapcore.LevelEnabler
	appender Appender
	fields   []zapcore.Field
	inUTC    bool
}

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(slices.Clip(c.fields), fields...)
	return &clone
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.inUTC {
		entry.Time = entry.Time.UTC()
	}
	return c.appender.Write(entry, append(slices.Clip(c.fields), fields...))
}

func (c *appenderCore) Sync() error {
	return c.appender.Sync()
}
