package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging through a charm logger.
// Successful events log at debug level, failures at warn.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that write to l (log.Default() when nil).
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnClaim(_ context.Context, signatureID string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("claim failed", "signature", signatureID, "duration", d, "err", err)
		return
	}
	h.Logger.Info("signature claimed", "signature", signatureID, "duration", d)
}

func (h *LogHooks) OnVote(_ context.Context, signatureID, category string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("vote failed", "signature", signatureID, "category", category, "duration", d, "err", err)
		return
	}
	h.Logger.Info("vote recorded", "signature", signatureID, "category", category, "duration", d)
}

func (h *LogHooks) OnStats(_ context.Context, cached bool, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("stats failed", "duration", d, "err", err)
		return
	}
	h.Logger.Debug("stats served", "cached", cached, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "key", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "key", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "key", keyType, "bytes", size)
}

func (h *LogHooks) OnCacheError(_ context.Context, keyType string, err error) {
	h.Logger.Warn("cache error", "key", keyType, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond))
}

var (
	_ ServiceHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
