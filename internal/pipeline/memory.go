package pipeline

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/observability/metrics"
)

// recordMemory logs the resident set size of this process and sets the RSS
// gauge when m is not nil. Failures are logged at debug level.
func recordMemory(m *metrics.SamplingMetrics, log logger.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		log.Debug("Process stats unavailable", logger.Error(err))
		return
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		log.Debug("Process memory unavailable", logger.Error(err))
		return
	}

	if m != nil {
		m.RecordRSS(mem.RSS)
	}
	log.Debug("Process memory",
		logger.Uint64("rss_bytes", mem.RSS),
		logger.String("rss", humanize.Bytes(mem.RSS)))
}
