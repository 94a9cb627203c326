package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wqmon/wqengine/internal/model"
)

// DefaultMaxWorkers is the worker pool size when none is configured
const DefaultMaxWorkers = 5

// FilterFunc decides whether an item survives the process phase. An item
// survives only if every registered filter accepts it.
type FilterFunc func(model.DataItem) bool

// ProcessorFunc transforms one item, returning the (possibly mutated) item
type ProcessorFunc func(model.DataItem) model.DataItem

// BatchFilterFunc narrows a whole batch at once; batch mode only
type BatchFilterFunc func([]model.DataItem) []model.DataItem

// BatchProcessorFunc transforms a whole batch at once; batch mode only
type BatchProcessorFunc func([]model.DataItem) []model.DataItem

// Engine orchestrates one collect → process → distribute cycle across the
// registered plugins. Cycles are triggered externally; the engine holds
// no timer. Phase sequencing and the filter/processor chains run on the
// calling goroutine, the worker pool is used only to fan out plugin calls.
type Engine struct {
	collectors map[string]model.CollectorPlugin
	outputs    map[string]model.OutputPlugin
	items      map[string]model.DataItem

	filters         []FilterFunc
	processors      []ProcessorFunc
	batchFilters    []BatchFilterFunc
	batchProcessors []BatchProcessorFunc

	maxWorkers int
	mode       model.ProcessMode
	configDirs []string
	running    bool
	state      model.EngineState
	logger     *slog.Logger
	mu         sync.RWMutex
}

// Option configures the engine at construction
type Option func(*Engine)

// WithMaxWorkers sets the worker pool size for plugin fan-out
func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithMode selects per-item or batch processing
func WithMode(mode model.ProcessMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithConfigDirs records the config directories for the status snapshot
func WithConfigDirs(dirs []string) Option {
	return func(e *Engine) {
		e.configDirs = append([]string(nil), dirs...)
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a processing engine
func New(opts ...Option) *Engine {
	e := &Engine{
		collectors: make(map[string]model.CollectorPlugin),
		outputs:    make(map[string]model.OutputPlugin),
		items:      make(map[string]model.DataItem),
		maxWorkers: DefaultMaxWorkers,
		mode:       model.PerItemMode,
		state:      model.StateIdle,
		logger:     slog.Default().With("component", "processing_engine"),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterCollector registers a collector plugin under its declared name.
// A second registration under the same name replaces the first.
func (e *Engine) RegisterCollector(p model.CollectorPlugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil collector plugin")
	}
	if !p.ValidateConfig() {
		return fmt.Errorf("invalid configuration for plugin: %s", p.Name())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.collectors[p.Name()]; exists {
		e.logger.Warn("collector plugin replaced", "plugin", p.Name())
	}
	e.collectors[p.Name()] = p
	e.logger.Info("registered collector plugin", "plugin", p.Name(), "data_type", p.DataType())
	return nil
}

// RegisterOutput registers an output plugin under its declared name.
// A second registration under the same name replaces the first.
func (e *Engine) RegisterOutput(p model.OutputPlugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil output plugin")
	}
	if !p.ValidateConfig() {
		return fmt.Errorf("invalid configuration for plugin: %s", p.Name())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.outputs[p.Name()]; exists {
		e.logger.Warn("output plugin replaced", "plugin", p.Name())
	}
	e.outputs[p.Name()] = p
	e.logger.Info("registered output plugin", "plugin", p.Name(), "supported_types", p.SupportedDataTypes())
	return nil
}

// ReplacePlugins swaps the full plugin set, used when configs are reloaded
func (e *Engine) ReplacePlugins(collectors map[string]model.CollectorPlugin, outputs map[string]model.OutputPlugin) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.collectors = make(map[string]model.CollectorPlugin, len(collectors))
	for name, p := range collectors {
		e.collectors[name] = p
	}
	e.outputs = make(map[string]model.OutputPlugin, len(outputs))
	for name, p := range outputs {
		e.outputs[name] = p
	}
	e.logger.Info("plugins reloaded", "collectors", len(collectors), "outputs", len(outputs))
}

// AddFilter appends a filter; filters run in registration order
func (e *Engine) AddFilter(f FilterFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = append(e.filters, f)
}

// AddProcessor appends a processor; processors run in registration order
func (e *Engine) AddProcessor(p ProcessorFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processors = append(e.processors, p)
}

// AddBatchFilter appends a whole-batch filter, applied in batch mode
// after the element-wise filters
func (e *Engine) AddBatchFilter(f BatchFilterFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batchFilters = append(e.batchFilters, f)
}

// AddBatchProcessor appends a whole-batch processor, applied in batch
// mode after the element-wise processors
func (e *Engine) AddBatchProcessor(p BatchProcessorFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batchProcessors = append(e.batchProcessors, p)
}

// Start marks the engine running for the status snapshot
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	e.logger.Info("engine started", "mode", string(e.mode), "max_workers", e.maxWorkers)
}

// Stop marks the engine stopped
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.logger.Info("engine stopped")
}

// RunCycle executes one full collect → process → distribute pass. Plugin
// failures are recorded on the plugins and reflected in the returned
// stats; they never propagate out of the cycle.
func (e *Engine) RunCycle(ctx context.Context) model.CycleStats {
	start := time.Now()
	e.logger.Info("starting processing cycle")

	e.setState(model.StateCollecting)
	collected, collectErrs := e.collectAll(ctx)
	e.logger.Info("collect phase complete", "items", len(collected), "errors", collectErrs)

	e.setState(model.StateProcessing)
	var processed []model.DataItem
	if e.processMode() == model.BatchMode {
		processed = e.processBatch(collected)
	} else {
		processed = e.processItems(collected)
	}
	e.logger.Info("process phase complete", "items", len(processed))

	sent, sendErrs := 0, 0
	if len(processed) > 0 {
		e.setState(model.StateDistributing)
		sent, sendErrs = e.distribute(ctx, processed)
		e.logger.Info("distribute phase complete", "sent", sent, "errors", sendErrs)
	} else {
		e.logger.Info("no items survived processing, skipping distribution")
	}

	e.setState(model.StateIdle)

	stats := model.CycleStats{
		Collected:   len(collected),
		Processed:   len(processed),
		Distributed: sent,
		Errors:      collectErrs + sendErrs,
		Duration:    time.Since(start),
	}
	e.logger.Info("processing cycle complete",
		"collected", stats.Collected,
		"processed", stats.Processed,
		"distributed", stats.Distributed,
		"errors", stats.Errors,
		"duration", stats.Duration)
	return stats
}

type collectResult struct {
	plugin model.CollectorPlugin
	items  []model.DataItem
	err    error
}

// collectAll fans collect calls out to every enabled collector. A failing
// or timed-out plugin contributes zero items and has its error recorded;
// it never aborts the phase for the others.
func (e *Engine) collectAll(ctx context.Context) ([]model.DataItem, int) {
	e.mu.RLock()
	enabled := make([]model.CollectorPlugin, 0, len(e.collectors))
	for _, p := range e.collectors {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}
	e.mu.RUnlock()

	if len(enabled) == 0 {
		e.logger.Info("no enabled collector plugins")
		return nil, 0
	}

	pool := newWorkerPool(e.maxWorkers)
	results := make(chan collectResult, len(enabled))

	for _, p := range enabled {
		p := p
		pool.submit(func() {
			items, err := collectFromPlugin(ctx, p)
			results <- collectResult{plugin: p, items: items, err: err}
		})
	}

	go func() {
		pool.wait()
		close(results)
	}()

	var all []model.DataItem
	errs := 0
	for res := range results {
		if res.err != nil {
			res.plugin.HandleError(res.err)
			errs++
			continue
		}
		all = append(all, res.items...)
		e.logger.Info("collected items", "plugin", res.plugin.Name(), "count", len(res.items))
	}

	return all, errs
}

// collectFromPlugin runs one collect call bounded by the plugin's own
// configured timeout. On timeout the call's eventual result is discarded.
func collectFromPlugin(ctx context.Context, p model.CollectorPlugin) ([]model.DataItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.Config().Timeout())
	defer cancel()

	p.MarkRun(time.Now())

	type result struct {
		items []model.DataItem
		err   error
	}
	done := make(chan result, 1)

	go func() {
		items, err := p.Collect(callCtx)
		done <- result{items: items, err: err}
	}()

	select {
	case r := <-done:
		return r.items, r.err
	case <-callCtx.Done():
		return nil, fmt.Errorf("collect from %s: %w", p.Name(), callCtx.Err())
	}
}

// processItems applies the filter chain then the processor chain to each
// item. Surviving items are inserted into the item index keyed by item ID.
func (e *Engine) processItems(items []model.DataItem) []model.DataItem {
	filters, processors := e.chains()

	var processed []model.DataItem
	for _, item := range items {
		if !passesFilters(item, filters) {
			continue
		}
		for _, proc := range processors {
			item = proc(item)
		}
		processed = append(processed, item)
	}

	e.indexItems(processed)
	return processed
}

// processBatch is the whole-batch policy: element-wise filters first,
// then batch filters, element-wise processors, batch processors. The item
// index is updated from the processed batch itself, never from prior
// stored state. With only element-wise functions registered the result
// matches processItems exactly.
func (e *Engine) processBatch(items []model.DataItem) []model.DataItem {
	filters, processors := e.chains()
	e.mu.RLock()
	batchFilters := append([]BatchFilterFunc(nil), e.batchFilters...)
	batchProcessors := append([]BatchProcessorFunc(nil), e.batchProcessors...)
	e.mu.RUnlock()

	var batch []model.DataItem
	for _, item := range items {
		if passesFilters(item, filters) {
			batch = append(batch, item)
		}
	}

	for _, bf := range batchFilters {
		batch = bf(batch)
	}

	for i, item := range batch {
		for _, proc := range processors {
			item = proc(item)
		}
		batch[i] = item
	}

	for _, bp := range batchProcessors {
		batch = bp(batch)
	}

	e.indexItems(batch)
	return batch
}

func (e *Engine) chains() ([]FilterFunc, []ProcessorFunc) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]FilterFunc(nil), e.filters...), append([]ProcessorFunc(nil), e.processors...)
}

func passesFilters(item model.DataItem, filters []FilterFunc) bool {
	for _, f := range filters {
		if !f(item) {
			return false
		}
	}
	return true
}

// indexItems inserts or overwrites items in the index, keyed by item ID.
// Only the controller goroutine calls this, after all futures resolved.
func (e *Engine) indexItems(items []model.DataItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, item := range items {
		e.items[item.ItemID()] = item
	}
}

type sendResult struct {
	plugin model.OutputPlugin
	itemID string
	err    error
}

// distribute fans every (item, output) pair out to the pool. One pair's
// failure or timeout never blocks or fails any other pair.
func (e *Engine) distribute(ctx context.Context, items []model.DataItem) (int, int) {
	e.mu.RLock()
	outputs := make([]model.OutputPlugin, 0, len(e.outputs))
	for _, p := range e.outputs {
		outputs = append(outputs, p)
	}
	e.mu.RUnlock()

	pool := newWorkerPool(e.maxWorkers)
	results := make(chan sendResult, len(items)*len(outputs))

	for _, item := range items {
		for _, out := range outputs {
			if !out.Enabled() || !out.ShouldSend(item) {
				continue
			}
			item, out := item, out
			pool.submit(func() {
				err := sendViaPlugin(ctx, out, item)
				results <- sendResult{plugin: out, itemID: item.ItemID(), err: err}
			})
		}
	}

	go func() {
		pool.wait()
		close(results)
	}()

	sent, errs := 0, 0
	for res := range results {
		if res.err != nil {
			res.plugin.HandleError(res.err)
			errs++
			continue
		}
		res.plugin.MarkSent()
		sent++
		e.logger.Info("sent item", "item", res.itemID, "plugin", res.plugin.Name())
	}

	return sent, errs
}

// sendViaPlugin runs one send call bounded by the plugin's own timeout
func sendViaPlugin(ctx context.Context, p model.OutputPlugin, item model.DataItem) error {
	callCtx, cancel := context.WithTimeout(ctx, p.Config().Timeout())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Send(callCtx, item)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %s via %s: %w", item.ItemID(), p.Name(), err)
		}
		return nil
	case <-callCtx.Done():
		return fmt.Errorf("send %s via %s: %w", item.ItemID(), p.Name(), callCtx.Err())
	}
}

func (e *Engine) setState(state model.EngineState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

func (e *Engine) processMode() model.ProcessMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// Items returns the tracked items
func (e *Engine) Items() []model.DataItem {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]model.DataItem, 0, len(e.items))
	for _, item := range e.items {
		result = append(result, item)
	}
	return result
}

// Item returns one tracked item by ID
func (e *Engine) Item(id string) (model.DataItem, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	item, exists := e.items[id]
	return item, exists
}

// ResetPlugin clears a plugin's error state so it rejoins future cycles.
// It reports whether a plugin with that name exists.
func (e *Engine) ResetPlugin(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if p, exists := e.collectors[name]; exists {
		p.Reset()
		return true
	}
	if p, exists := e.outputs[name]; exists {
		p.Reset()
		return true
	}
	return false
}

// Status returns a read-only snapshot of the engine and its plugins
func (e *Engine) Status() model.EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	collectors := make(map[string]model.CollectorStatus, len(e.collectors))
	for name, p := range e.collectors {
		cs := model.CollectorStatus{
			Status:     p.Status(),
			DataType:   p.DataType(),
			ErrorCount: p.ErrorCount(),
		}
		if last := p.LastRun(); !last.IsZero() {
			last := last
			cs.LastRun = &last
		}
		collectors[name] = cs
	}

	outputs := make(map[string]model.OutputStatus, len(e.outputs))
	for name, p := range e.outputs {
		outputs[name] = model.OutputStatus{
			Status:         p.Status(),
			SupportedTypes: p.SupportedDataTypes(),
			SentCount:      p.SentCount(),
			ErrorCount:     p.ErrorCount(),
		}
	}

	return model.EngineStatus{
		Running:    e.running,
		State:      e.state,
		TotalItems: len(e.items),
		ConfigDirs: append([]string(nil), e.configDirs...),
		Collectors: collectors,
		Outputs:    outputs,
		Timestamp:  time.Now(),
	}
}
