// Package log builds the application's slog logger.
//
// Every handler is wrapped in a SecureHandler, which masks passwords, tokens
// and raw message text before they reach the log output. Users send secrets
// to the bot on purpose, so log lines must never echo them back.
package log
