package ecs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrOrderingCycle is returned when Before/After constraints inside a stage form a cycle.
	ErrOrderingCycle = errors.New("system ordering cycle")
	// ErrUnknownSystem is returned when a constraint references a system that was never added.
	ErrUnknownSystem = errors.New("ordering constraint references unknown system")
	// ErrStageOrder is returned when a cross-stage constraint contradicts stage order.
	ErrStageOrder = errors.New("ordering constraint contradicts stage order")
)

// Stage groups systems that run together. Stages run in declaration order
// and deferred commands are flushed between stages.
type Stage int

const (
	First Stage = iota
	PreUpdate
	Update
	PostUpdate
	Last
	stageCount
)

func (s Stage) String() string {
	switch s {
	case First:
		return "First"
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case Last:
		return "Last"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// RunCondition decides whether a system runs this frame.
type RunCondition func(storage *Storage) bool

// SystemOption configures a system when it is added to the Scheduler.
type SystemOption func(*systemNode)

// Before orders the system ahead of other.
func Before(other System) SystemOption {
	return func(n *systemNode) { n.before = append(n.before, other) }
}

// After orders the system behind other.
func After(other System) SystemOption {
	return func(n *systemNode) { n.after = append(n.after, other) }
}

// RunIf skips the system on frames where cond returns false. Multiple
// conditions must all hold.
func RunIf(cond RunCondition) SystemOption {
	return func(n *systemNode) { n.conds = append(n.conds, cond) }
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          Stage
	ExecutionCount int64
	SkipCount      int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	skipCount      int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type queryExecutor interface {
	Execute()
}

type systemNode struct {
	system  System
	stage   Stage
	order   int
	before  []System
	after   []System
	conds   []RunCondition
	queries []queryExecutor
	stats   *systemStatsInternal
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for registration and ordering diagnostics.
func WithLogger(logger *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// WithoutEventUpdates stops Once from advancing the event queues. Use it
// for a second scheduler, such as a render pass, that runs in the same
// frame as the one that owns the events.
func WithoutEventUpdates() SchedulerOption {
	return func(s *Scheduler) { s.skipEvents = true }
}

// Scheduler manages and executes systems in order.
type Scheduler struct {
	storage *Storage
	logger  *zap.Logger
	nodes   []*systemNode
	byImpl  map[System]*systemNode
	stages  [stageCount][]*systemNode
	dirty   bool

	skipEvents bool
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		storage: storage,
		logger:  zap.NewNop(),
		byImpl:  make(map[System]*systemNode),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a system to the Update stage and initializes its Query fields.
func (s *Scheduler) Register(system System) {
	s.Add(Update, system)
}

// Add adds a system to the given stage.
func (s *Scheduler) Add(stage Stage, system System, opts ...SystemOption) {
	if stage < 0 || stage >= stageCount {
		panic("unknown stage " + stage.String())
	}
	if _, ok := s.byImpl[system]; ok {
		panic("system " + systemName(system) + " added twice")
	}

	node := &systemNode{
		system: system,
		stage:  stage,
		order:  len(s.nodes),
		stats: &systemStatsInternal{
			name:        systemName(system),
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	for _, opt := range opts {
		opt(node)
	}
	node.queries = s.initializeQueries(system)

	s.nodes = append(s.nodes, node)
	s.byImpl[system] = node
	s.dirty = true

	s.logger.Debug("system registered",
		zap.String("system", node.stats.name),
		zap.Stringer("stage", stage))
}

// AddChain adds systems to a stage so that each one runs after the previous.
func (s *Scheduler) AddChain(stage Stage, systems []System, opts ...SystemOption) {
	for i, system := range systems {
		nodeOpts := append([]SystemOption{}, opts...)
		if i > 0 {
			nodeOpts = append(nodeOpts, After(systems[i-1]))
		}
		s.Add(stage, system, nodeOpts...)
	}
}

func systemName(system System) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

func (s *Scheduler) initializeQueries(system System) []queryExecutor {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	systemType := systemValue.Type()
	var queries []queryExecutor

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()

		switch {
		case strings.HasPrefix(typeName, "Query["),
			strings.HasPrefix(typeName, "Singleton["),
			strings.HasPrefix(typeName, "EventReader["),
			strings.HasPrefix(typeName, "EventWriter["):
		default:
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}

		initMethod.Call([]reflect.Value{
			reflect.ValueOf(s.storage),
		})

		if q, ok := field.Addr().Interface().(queryExecutor); ok {
			queries = append(queries, q)
		}
	}

	return queries
}

// Build resolves ordering constraints into a run order for each stage.
// Once calls it automatically after systems were added.
func (s *Scheduler) Build() error {
	var stages [stageCount][]*systemNode

	for stage := Stage(0); stage < stageCount; stage++ {
		var nodes []*systemNode
		for _, n := range s.nodes {
			if n.stage == stage {
				nodes = append(nodes, n)
			}
		}

		sorted, err := s.sortStage(nodes)
		if err != nil {
			s.logger.Error("invalid system ordering", zap.Stringer("stage", stage), zap.Error(err))
			return err
		}
		stages[stage] = sorted
	}

	s.stages = stages
	s.dirty = false
	return nil
}

// sortStage is a stable topological sort: among systems whose constraints
// are satisfied, the earliest registered runs first.
func (s *Scheduler) sortStage(nodes []*systemNode) ([]*systemNode, error) {
	indegree := make(map[*systemNode]int, len(nodes))
	edges := make(map[*systemNode][]*systemNode, len(nodes))

	link := func(from, to *systemNode) {
		edges[from] = append(edges[from], to)
		indegree[to]++
	}

	for _, n := range nodes {
		indegree[n] += 0
		for _, other := range n.before {
			target, ok := s.byImpl[other]
			if !ok {
				return nil, fmt.Errorf("%s before %s: %w", n.stats.name, systemName(other), ErrUnknownSystem)
			}
			if target.stage != n.stage {
				if target.stage < n.stage {
					return nil, fmt.Errorf("%s before %s: %w", n.stats.name, target.stats.name, ErrStageOrder)
				}
				continue
			}
			link(n, target)
		}
		for _, other := range n.after {
			target, ok := s.byImpl[other]
			if !ok {
				return nil, fmt.Errorf("%s after %s: %w", n.stats.name, systemName(other), ErrUnknownSystem)
			}
			if target.stage != n.stage {
				if target.stage > n.stage {
					return nil, fmt.Errorf("%s after %s: %w", n.stats.name, target.stats.name, ErrStageOrder)
				}
				continue
			}
			link(target, n)
		}
	}

	sorted := make([]*systemNode, 0, len(nodes))
	done := make(map[*systemNode]bool, len(nodes))
	for len(sorted) < len(nodes) {
		var next *systemNode
		for _, n := range nodes {
			if !done[n] && indegree[n] == 0 {
				next = n
				break
			}
		}
		if next == nil {
			var names []string
			for _, n := range nodes {
				if !done[n] {
					names = append(names, n.stats.name)
				}
			}
			return nil, fmt.Errorf("%s: %w", strings.Join(names, ", "), ErrOrderingCycle)
		}
		done[next] = true
		sorted = append(sorted, next)
		for _, to := range edges[next] {
			indegree[to]--
		}
	}

	return sorted, nil
}

// Once executes every stage once with the given delta time.
// Panics if the ordering constraints cannot be satisfied.
func (s *Scheduler) Once(dt float64) {
	if s.dirty {
		if err := s.Build(); err != nil {
			panic(err)
		}
	}

	frame := newUpdateFrame(dt, s.storage)

	for _, nodes := range s.stages {
		for _, node := range nodes {
			s.runNode(node, frame)
		}
		frame.Commands.Flush(s.storage)
	}

	if !s.skipEvents {
		s.storage.UpdateEvents()
	}
}

func (s *Scheduler) runNode(node *systemNode, frame *UpdateFrame) {
	stats := node.stats

	for _, cond := range node.conds {
		if !cond(s.storage) {
			stats.skipCount++
			return
		}
	}

	for _, q := range node.queries {
		q.Execute()
	}

	start := time.Now()
	node.system.Execute(frame)
	duration := time.Since(start)

	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration

	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.nodes),
		Systems:     make([]SystemStats, len(s.nodes)),
	}

	var totalExecs int64
	for i, node := range s.nodes {
		internal := node.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			Stage:          node.stage,
			ExecutionCount: internal.executionCount,
			SkipCount:      internal.skipCount,
			MinDuration:    internal.minDuration,
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
