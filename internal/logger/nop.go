// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

// nopLogger discards everything. Used in tests and as a safe default.
type nopLogger struct{}

// Nop returns a Logger that discards all entries.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) With(...Field) Logger   { return nopLogger{} }
func (nopLogger) Sync() error            { return nil }
