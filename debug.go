package flateralus

import (
	"time"

	"go.uber.org/zap"
)

// debugStatsInterval is how many frames are aggregated per stats log line.
const debugStatsInterval = 60

// frameStats accumulates timing between stats log lines.
// Only populated when Config.Debug is true.
type frameStats struct {
	update time.Duration
	draw   time.Duration
	frames int
}

// debugLog records one frame and, every debugStatsInterval frames, logs the
// average update and draw times plus the tree size and fault count.
func (a *Application) debugLog() {
	a.stats.frames++
	if a.stats.frames < debugStatsInterval {
		return
	}
	n := time.Duration(a.stats.frames)
	fields := []zap.Field{
		zap.Duration("update", a.stats.update/n),
		zap.Duration("draw", a.stats.draw/n),
		zap.Duration("total", (a.stats.update+a.stats.draw)/n),
		zap.Uint64("frame", a.frames),
	}
	if sc, ok := a.animation.(spriteCounter); ok {
		fields = append(fields, zap.Int("sprites", sc.Root().Count()))
	}
	if fc, ok := a.animation.(faultCounter); ok {
		fields = append(fields, zap.Int("faults", fc.Faults()))
	}
	a.logger.Debug("frame stats", fields...)
	a.stats = frameStats{}
}

// checkTree runs the tree-shape checks over the animation's sprite tree in
// debug mode. Warnings go to this application's logger only.
func (a *Application) checkTree() {
	if !a.cfg.Debug {
		return
	}
	if sc, ok := a.animation.(spriteCounter); ok && sc.Root() != nil {
		checkTreeShape(sc.Root(), a.logger)
	}
}
