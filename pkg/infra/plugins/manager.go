package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/quilr/guardrails-go/pkg/infra/metrics"
	"github.com/quilr/guardrails-go/pkg/infra/metrics/metric_events"
	"github.com/quilr/guardrails-go/pkg/infra/pluginiface"
	"github.com/quilr/guardrails-go/pkg/infra/plugins/quilr_guardrail"
	pluginTypes "github.com/quilr/guardrails-go/pkg/infra/plugins/types"
	"github.com/quilr/guardrails-go/pkg/infra/quilr"
	"github.com/quilr/guardrails-go/pkg/types"
)

var (
	instance Manager
	once     sync.Once
)

//go:generate mockery --name=Manager --dir=. --output=./mocks --filename=plugin_manager_mock.go --case=underscore --with-expecter
type Manager interface {
	ValidatePlugin(name string, config pluginTypes.PluginConfig) error
	RegisterPlugin(plugin pluginiface.Plugin) error
	ClearPluginChain(id string)
	GetChains(entityID string, stage pluginTypes.Stage) [][]pluginTypes.PluginConfig
	SetPluginChain(entityID string, chains []pluginTypes.PluginConfig) error
	GetPlugin(name string) pluginiface.Plugin
	InitializePlugins()
	ExecuteChain(
		ctx context.Context,
		chain []pluginTypes.PluginConfig,
		req *types.RequestContext,
		resp *types.ResponseContext,
		collector *metrics.Collector,
	) (*types.ResponseContext, error)
	ExecuteStage(
		ctx context.Context,
		stage pluginTypes.Stage,
		entityID string,
		req *types.RequestContext,
		resp *types.ResponseContext,
		collector *metrics.Collector,
	) (*types.ResponseContext, error)
	ExecuteStageAlongside(
		ctx context.Context,
		entityID string,
		req *types.RequestContext,
		resp *types.ResponseContext,
		collector *metrics.Collector,
		upstream func(ctx context.Context) error,
	) error
}

type manager struct {
	mu                sync.RWMutex
	logger            *logrus.Logger
	quilrClient       quilr.Client
	guardrailDefaults quilr_guardrail.Config
	plugins           map[string]pluginiface.Plugin
	configurations    map[string][][]pluginTypes.PluginConfig
}

func NewManager(logger *logrus.Logger, opts ...Option) Manager {
	once.Do(func() {
		m := &manager{
			logger:         logger,
			plugins:        make(map[string]pluginiface.Plugin),
			configurations: make(map[string][][]pluginTypes.PluginConfig),
		}
		for _, opt := range opts {
			opt(m)
		}
		instance = m
	})
	instance.InitializePlugins()
	return instance
}

func (m *manager) InitializePlugins() {
	if err := m.RegisterPlugin(quilr_guardrail.NewQuilrGuardrailPlugin(
		m.logger,
		m.quilrClient,
		m.guardrailDefaults,
	)); err != nil {
		m.logger.WithError(err).Error("failed to register quilr guardrail plugin")
	}
}

// ValidatePlugin validates a plugin configuration
func (m *manager) ValidatePlugin(name string, config pluginTypes.PluginConfig) error {
	m.mu.RLock()
	plugin, exists := m.plugins[name]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", pluginTypes.ErrUnknownPlugin, name)
	}

	if err := plugin.ValidateConfig(config); err != nil {
		m.logger.WithError(err).Errorf("plugin %s validation failed", name)
		return err
	}

	return nil
}

func (m *manager) RegisterPlugin(plugin pluginiface.Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := plugin.Name()
	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	m.plugins[name] = plugin
	return nil
}

func (m *manager) ClearPluginChain(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.configurations[id]; !exists {
		return
	}

	delete(m.configurations, id)
}

func (m *manager) SetPluginChain(entityID string, chains []pluginTypes.PluginConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, chain := range chains {
		if _, exists := m.plugins[chain.Name]; !exists {
			return fmt.Errorf("%w: plugin %s not registered", pluginTypes.ErrPluginChainValidation, chain.Name)
		}
	}

	if m.configurations[entityID] == nil {
		m.configurations[entityID] = [][]pluginTypes.PluginConfig{}
	}

	m.configurations[entityID] = append(m.configurations[entityID], chains)

	return nil
}

func (m *manager) ExecuteStage(
	ctx context.Context,
	stage pluginTypes.Stage,
	entityID string,
	req *types.RequestContext,
	resp *types.ResponseContext,
	collector *metrics.Collector,
) (*types.ResponseContext, error) {
	m.mu.RLock()
	stageChains := m.GetChains(entityID, stage)
	plugins := m.plugins
	m.mu.RUnlock()

	req.Stage = stage

	// Track executed plugin instances to prevent duplicates across chains
	executedPlugins := make(map[string]bool)

	for _, chain := range stageChains {
		if len(chain) > 0 {
			if err := m.executeChains(ctx, plugins, chain, req, resp, executedPlugins, collector); err != nil {
				return resp, err
			}
		}
	}

	return resp, nil
}

// ExecuteStageAlongside runs the during stage concurrently with the upstream
// call and waits for both. The first failure cancels the other side; checks
// at this stage never mutate the request.
func (m *manager) ExecuteStageAlongside(
	ctx context.Context,
	entityID string,
	req *types.RequestContext,
	resp *types.ResponseContext,
	collector *metrics.Collector,
	upstream func(ctx context.Context) error,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := m.ExecuteStage(gctx, pluginTypes.DuringRequest, entityID, req, resp, collector)
		return err
	})
	g.Go(func() error {
		return upstream(gctx)
	})
	return g.Wait()
}

func (m *manager) ExecuteChain(
	ctx context.Context,
	chain []pluginTypes.PluginConfig,
	req *types.RequestContext,
	resp *types.ResponseContext,
	collector *metrics.Collector,
) (*types.ResponseContext, error) {
	m.mu.RLock()
	plugins := m.plugins
	m.mu.RUnlock()

	executedPlugins := make(map[string]bool)
	if err := m.executeChains(ctx, plugins, chain, req, resp, executedPlugins, collector); err != nil {
		return resp, err
	}

	return resp, nil
}

func (m *manager) executeChains(
	ctx context.Context,
	plugins map[string]pluginiface.Plugin,
	chains []pluginTypes.PluginConfig,
	req *types.RequestContext,
	resp *types.ResponseContext,
	executedPlugins map[string]bool,
	collector *metrics.Collector,
) error {
	// Group parallel and sequential chains
	var parallelChains, sequentialChains []pluginTypes.PluginConfig
	for _, chain := range chains {
		pluginInstanceID := chain.ID
		if pluginInstanceID == "" {
			pluginInstanceID = chain.Name
		}

		if executedPlugins[pluginInstanceID] {
			continue
		}
		executedPlugins[pluginInstanceID] = true

		if chain.Parallel {
			parallelChains = append(parallelChains, chain)
		} else {
			sequentialChains = append(sequentialChains, chain)
		}
	}

	if len(parallelChains) > 0 {
		if err := m.executeParallel(ctx, plugins, parallelChains, req, resp, collector); err != nil {
			return err
		}
	}

	if len(sequentialChains) > 0 {
		if err := m.executeSequential(ctx, plugins, sequentialChains, req, resp, collector); err != nil {
			return err
		}
	}

	return nil
}

func (m *manager) executeParallel(
	ctx context.Context,
	plugins map[string]pluginiface.Plugin,
	configs []pluginTypes.PluginConfig,
	req *types.RequestContext,
	resp *types.ResponseContext,
	metricsCollector *metrics.Collector,
) error {
	// Group plugins by priority
	priorityGroups := make(map[int][]pluginTypes.PluginConfig)
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		priorityGroups[cfg.Priority] = append(priorityGroups[cfg.Priority], cfg)
	}

	priorities := make([]int, 0, len(priorityGroups))
	for p := range priorityGroups {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	// Execute plugins priority group by priority group
	for _, priority := range priorities {
		group := priorityGroups[priority]

		type pluginResult struct {
			pluginName string
			config     pluginTypes.PluginConfig
			response   *pluginTypes.PluginResponse
			err        error
			startTime  time.Time
			endTime    time.Time
		}
		resultChan := make(chan pluginResult, len(group))

		var wg sync.WaitGroup
		for i := range group {
			cfg := group[i]
			wg.Add(1)
			go func(cfg pluginTypes.PluginConfig) {
				defer wg.Done()

				pluginStartTime := time.Now()
				if plugin, exists := plugins[cfg.Name]; exists {
					wrapper := NewPluginWrapper(plugin, metricsCollector)
					pluginResp, err := wrapper.Execute(ctx, cfg, req, resp)
					pluginEndTime := time.Now()
					resultChan <- pluginResult{
						pluginName: cfg.Name,
						config:     cfg,
						response:   pluginResp,
						err:        err,
						startTime:  pluginStartTime,
						endTime:    pluginEndTime,
					}
				}
			}(cfg)
		}

		go func() {
			wg.Wait()
			close(resultChan)
		}()

		var results []pluginResult
		var errs []error

		for result := range resultChan {
			if result.err != nil {
				m.raisePluginErrorEvent(metricsCollector, result.pluginName, string(req.Stage), result.err)
				errs = append(errs, result.err)
			}
			if result.response != nil {
				results = append(results, result)
			}

			select {
			case <-ctx.Done():
				m.logger.Errorf("context cancelled while collecting plugin results: %v", ctx.Err())
				return ctx.Err()
			default:
			}
		}

		sort.Slice(results, func(i, j int) bool {
			return results[i].config.Priority < results[j].config.Priority
		})

		for _, result := range results {
			m.applyPluginResponse(resp, result.response)
		}

		if len(errs) > 0 {
			return errs[0]
		}
	}

	return nil
}

func (m *manager) executeSequential(
	ctx context.Context,
	plugins map[string]pluginiface.Plugin,
	configs []pluginTypes.PluginConfig,
	req *types.RequestContext,
	resp *types.ResponseContext,
	metricsCollector *metrics.Collector,
) error {
	sortedConfigs := make([]pluginTypes.PluginConfig, len(configs))
	copy(sortedConfigs, configs)
	sort.Slice(sortedConfigs, func(i, j int) bool {
		return sortedConfigs[i].Priority < sortedConfigs[j].Priority
	})

	for _, cfg := range sortedConfigs {
		if !cfg.Enabled {
			continue
		}

		plugin, exists := plugins[cfg.Name]
		if !exists {
			continue
		}

		wrapper := NewPluginWrapper(plugin, metricsCollector)
		pluginResp, err := wrapper.Execute(ctx, cfg, req, resp)
		if err != nil {
			m.raisePluginErrorEvent(metricsCollector, cfg.Name, string(req.Stage), err)
			return err
		}
		if pluginResp != nil {
			m.applyPluginResponse(resp, pluginResp)
		}
	}
	return nil
}

// applyPluginResponse folds a plugin's response into the response context.
// A nil Body never clobbers a body another hook already rewrote in place.
func (m *manager) applyPluginResponse(resp *types.ResponseContext, pluginResp *pluginTypes.PluginResponse) {
	if pluginResp == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	resp.StatusCode = pluginResp.StatusCode
	if pluginResp.Body != nil {
		resp.Body = pluginResp.Body
	}
	if pluginResp.Headers != nil {
		if resp.Headers == nil {
			resp.Headers = make(map[string][]string)
		}
		for k, v := range pluginResp.Headers {
			resp.Headers[k] = v
		}
	}
	if pluginResp.Metadata != nil {
		if resp.Metadata == nil {
			resp.Metadata = make(map[string]interface{})
		}
		for k, v := range pluginResp.Metadata {
			resp.Metadata[k] = v
		}
	}
}

func (m *manager) raisePluginErrorEvent(metricsCollector *metrics.Collector, pluginName, stage string, err error) {
	if metricsCollector == nil {
		return
	}
	evt := metric_events.NewPluginEvent()
	evt.Plugin = &metric_events.PluginDataEvent{
		PluginName:   pluginName,
		Stage:        stage,
		Error:        true,
		ErrorMessage: err.Error(),
	}
	metricsCollector.Emit(evt)
}

func (m *manager) GetChains(entityID string, stage pluginTypes.Stage) [][]pluginTypes.PluginConfig {
	chainsGroups, exists := m.configurations[entityID]
	if !exists {
		return nil
	}

	var stageChains [][]pluginTypes.PluginConfig

	for _, chains := range chainsGroups {
		var filteredGroup []pluginTypes.PluginConfig

		for _, chain := range chains {
			plugin, exists := m.plugins[chain.Name]
			if !exists {
				continue
			}

			fixedStages := plugin.Stages()
			if len(fixedStages) > 0 {
				for _, fixedStage := range fixedStages {
					if fixedStage == stage {
						chainConfig := chain
						chainConfig.Stage = stage
						filteredGroup = append(filteredGroup, chainConfig)
						break
					}
				}
				continue
			}

			if chain.Stage == "" {
				continue
			}

			if chain.Stage == stage {
				for _, allowedStage := range plugin.AllowedStages() {
					if allowedStage == stage {
						filteredGroup = append(filteredGroup, chain)
						break
					}
				}
			}
		}

		if len(filteredGroup) > 0 {
			stageChains = append(stageChains, filteredGroup)
		}
	}

	return stageChains
}

// GetPlugin returns a plugin by name
func (m *manager) GetPlugin(name string) pluginiface.Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plugins[name]
}
