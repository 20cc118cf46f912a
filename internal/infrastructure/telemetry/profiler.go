package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// Profile type names accepted in ProfilerConfig.ProfileTypes
const (
	ProfileTypeCPU           = "cpu"
	ProfileTypeAllocObjects  = "alloc_objects"
	ProfileTypeAllocSpace    = "alloc_space"
	ProfileTypeInuseObjects  = "inuse_objects"
	ProfileTypeInuseSpace    = "inuse_space"
	ProfileTypeGoroutines    = "goroutines"
	ProfileTypeMutexCount    = "mutex_count"
	ProfileTypeMutexDuration = "mutex_duration"
	ProfileTypeBlockCount    = "block_count"
	ProfileTypeBlockDuration = "block_duration"
)

var profileTypesByName = map[string]pyroscope.ProfileType{
	ProfileTypeCPU:           pyroscope.ProfileCPU,
	ProfileTypeAllocObjects:  pyroscope.ProfileAllocObjects,
	ProfileTypeAllocSpace:    pyroscope.ProfileAllocSpace,
	ProfileTypeInuseObjects:  pyroscope.ProfileInuseObjects,
	ProfileTypeInuseSpace:    pyroscope.ProfileInuseSpace,
	ProfileTypeGoroutines:    pyroscope.ProfileGoroutines,
	ProfileTypeMutexCount:    pyroscope.ProfileMutexCount,
	ProfileTypeMutexDuration: pyroscope.ProfileMutexDuration,
	ProfileTypeBlockCount:    pyroscope.ProfileBlockCount,
	ProfileTypeBlockDuration: pyroscope.ProfileBlockDuration,
}

// DefaultProfileTypes is used when ProfilerConfig.ProfileTypes is empty
var DefaultProfileTypes = []string{
	ProfileTypeCPU,
	ProfileTypeAllocObjects,
	ProfileTypeAllocSpace,
	ProfileTypeInuseObjects,
	ProfileTypeInuseSpace,
	ProfileTypeGoroutines,
}

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string

	MutexProfileFraction int // default 5
	BlockProfileRate     int // default 5
}

// Profiler wraps the Pyroscope profiler with lifecycle management.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler starts a Pyroscope profiler. A disabled config yields a no-op profiler.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled, using no-op profiler")
		return p, nil
	}

	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	profileTypes, err := ParseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}
	configureRuntimeProfiling(profileTypes, cfg, logger)

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}
	if podName := os.Getenv("POD_NAME"); podName != "" {
		tags["pod"] = podName
	}

	pyroscopeCfg := pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          newPyroscopeLogger(logger),
		Tags:            tags,
		ProfileTypes:    profileTypes,
	}
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPassword != "" {
		pyroscopeCfg.BasicAuthUser = cfg.BasicAuthUser
		pyroscopeCfg.BasicAuthPassword = cfg.BasicAuthPassword
	}

	profiler, err := pyroscope.Start(pyroscopeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(profileTypes)),
	)
	return p, nil
}

// ParseProfileTypes maps profile type names to Pyroscope profile types.
// An empty list selects DefaultProfileTypes. Unknown names are an error.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	if len(names) == 0 {
		names = DefaultProfileTypes
	}
	types := make([]pyroscope.ProfileType, 0, len(names))
	seen := make(map[pyroscope.ProfileType]bool, len(names))
	for _, name := range names {
		pt, ok := profileTypesByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		if seen[pt] {
			continue
		}
		seen[pt] = true
		types = append(types, pt)
	}
	return types, nil
}

// configureRuntimeProfiling turns on the runtime sampling that mutex and
// block profiles depend on.
func configureRuntimeProfiling(types []pyroscope.ProfileType, cfg ProfilerConfig, logger *zap.Logger) {
	var mutex, block bool
	for _, pt := range types {
		switch pt {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			mutex = true
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			block = true
		}
	}
	if mutex {
		fraction := cfg.MutexProfileFraction
		if fraction <= 0 {
			fraction = 5
		}
		runtime.SetMutexProfileFraction(fraction)
		logger.Debug("Mutex profiling enabled", zap.Int("fraction", fraction))
	}
	if block {
		rate := cfg.BlockProfileRate
		if rate <= 0 {
			rate = 5
		}
		runtime.SetBlockProfileRate(rate)
		logger.Debug("Block profiling enabled", zap.Int("rate", rate))
	}
}

// Stop flushes pending profiles and stops the profiler. Safe to call twice.
// The Pyroscope SDK takes no context here, so shutdown relies on its own timeouts.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	if p.profiler == nil {
		return nil
	}

	p.logger.Info("Stopping Pyroscope profiler...")
	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// IsEnabled returns whether a profiler is running.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

// pyroscopeLogger adapts zap to pyroscope.Logger
type pyroscopeLogger struct {
	sugar *zap.SugaredLogger
}

func newPyroscopeLogger(logger *zap.Logger) pyroscope.Logger {
	return &pyroscopeLogger{sugar: logger.Named("pyroscope").Sugar()}
}

func (l *pyroscopeLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *pyroscopeLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *pyroscopeLogger) Errorf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}
