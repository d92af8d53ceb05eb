package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/rotisserie/eris"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	FailedFrames    uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	ErrorCount     int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	errorCount     int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type registeredSystem struct {
	system  System
	queries []*Query
	stats   *systemStatsInternal
}

// Scheduler manages and executes systems in order.
type Scheduler struct {
	storage      *Storage
	systems      []registeredSystem
	frames       uint64
	failedFrames uint64
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
		systems: make([]registeredSystem, 0),
	}
}

// Storage returns the storage systems operate on.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register adds a system to the scheduler and initializes its tagged Query
// fields. Systems execute in registration order. Register panics on a
// malformed query tag.
func (s *Scheduler) Register(system System) {
	s.RegisterNamed(systemName(system), system)
}

// RegisterNamed is Register with an explicit name for stats and errors.
func (s *Scheduler) RegisterNamed(name string, system System) {
	s.systems = append(s.systems, registeredSystem{
		system:  system,
		queries: s.initializeQueries(system),
		stats: &systemStatsInternal{
			name:        name,
			minDuration: time.Duration(1<<63 - 1),
		},
	})
}

func systemName(system System) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	if name := systemType.Name(); name != "" {
		return name
	}
	return systemType.String()
}

var queryType = reflect.TypeFor[Query]()

func (s *Scheduler) initializeQueries(system System) []*Query {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr {
		return nil
	}
	systemValue = systemValue.Elem()

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	systemType := systemValue.Type()
	var queries []*Query

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Type() != queryType {
			continue
		}

		tag, ok := fieldType.Tag.Lookup("ecs")
		if !ok {
			continue
		}

		mask, err := ParseKinds(tag)
		if err != nil {
			panic(fmt.Sprintf("query field %s.%s: %v", systemType.Name(), fieldType.Name, err))
		}

		q := field.Addr().Interface().(*Query)
		q.Init(s.storage, mask)
		queries = append(queries, q)
	}

	return queries
}

// Once executes all registered systems once with the given delta time, then
// flushes the commands they queued. The first system error stops the pass;
// queued commands are discarded and the error is returned wrapped with the
// system name.
func (s *Scheduler) Once(dt float64) error {
	frame := newUpdateFrame(dt, s.frames, s.storage)
	s.frames++

	for _, rs := range s.systems {
		for _, q := range rs.queries {
			q.Execute()
		}

		start := time.Now()
		err := rs.system.Execute(frame)
		duration := time.Since(start)

		stats := rs.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}

		if err != nil {
			stats.errorCount++
			s.failedFrames++
			return eris.Wrapf(err, "system %s", stats.name)
		}
	}

	return eris.Wrap(frame.Commands.Flush(s.storage), "flush commands")
}

// Run executes all systems repeatedly at the given interval until the context
// is cancelled or a pass fails. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount:  len(s.systems),
		Frames:       s.frames,
		FailedFrames: s.failedFrames,
		Systems:      make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, rs := range s.systems {
		internal := rs.stats
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			ErrorCount:     internal.errorCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
