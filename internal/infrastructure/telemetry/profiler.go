package telemetry

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// contentionSampleRate is applied to both the mutex fraction and block rate
const contentionSampleRate = 5

// ProfilerConfig configures continuous profiling with Pyroscope
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	// ProfileContention adds mutex and block profiles
	ProfileContention bool
	// Tags are attached to every profile, next to hostname and pod
	Tags map[string]string
}

// Profiler owns a running Pyroscope session. The zero session is a no-op.
type Profiler struct {
	session  *pyroscope.Profiler
	log      *zap.Logger
	stopOnce sync.Once
	stopErr  error
}

// NewProfiler starts profiling when cfg.Enabled is set
func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	p := &Profiler{log: log}
	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return p, nil
	}
	switch {
	case cfg.ServerAddress == "":
		return nil, errors.New("profiler server address is required")
	case cfg.ApplicationName == "":
		return nil, errors.New("profiler application name is required")
	}

	if cfg.ProfileContention {
		runtime.SetMutexProfileFraction(contentionSampleRate)
		runtime.SetBlockProfileRate(contentionSampleRate)
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          log.Named("pyroscope").Sugar(),
		Tags:            profileTags(cfg.Tags),
		ProfileTypes:    profileTypes(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	p.session = session
	log.Info("Continuous profiling started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Bool("contention", cfg.ProfileContention),
	)
	return p, nil
}

func profileTags(extra map[string]string) map[string]string {
	tags := make(map[string]string, len(extra)+2)
	for env, tag := range map[string]string{"HOSTNAME": "hostname", "POD_NAME": "pod"} {
		if v := os.Getenv(env); v != "" {
			tags[tag] = v
		}
	}
	for k, v := range extra {
		tags[k] = v
	}
	return tags
}

func profileTypes(cfg ProfilerConfig) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileGoroutines,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
	}
	if !cfg.ProfileContention {
		return types
	}
	return append(types,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
		pyroscope.ProfileBlockCount,
		pyroscope.ProfileBlockDuration,
	)
}

// IsEnabled reports whether a session is running
func (p *Profiler) IsEnabled() bool { return p.session != nil }

// Stop flushes and ends the session. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.session == nil {
			return
		}
		if err := p.session.Stop(); err != nil {
			p.stopErr = fmt.Errorf("stop pyroscope: %w", err)
			return
		}
		p.log.Info("Continuous profiling stopped")
	})
	return p.stopErr
}
