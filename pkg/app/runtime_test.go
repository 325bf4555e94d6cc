package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinAgentGo/config"
)

type echoModel struct{}

func (echoModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage("ok", nil), nil
}

func (echoModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("ok", nil)}), nil
}

func (m echoModel) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func testConfig(t *testing.T) config.Config {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.CacheEnabled = false
	return *cfg
}

func TestBuildEngineWiresAgent(t *testing.T) {
	e, err := BuildEngine(testConfig(t), WithChatModel(func(context.Context, *config.Config) (model.ToolCallingChatModel, error) {
		return echoModel{}, nil
	}))
	require.NoError(t, err)
	defer e.Close()

	rt, err := e.Agent()
	require.NoError(t, err)
	require.NotNil(t, rt)
	assert.Len(t, e.Catalog.Tools(), 6)
	assert.Equal(t, "yahoo", e.Fetcher.Provider().Name())
}

func TestBuildEngineWithoutModelKeepsData(t *testing.T) {
	e, err := BuildEngine(testConfig(t), WithChatModel(func(context.Context, *config.Config) (model.ToolCallingChatModel, error) {
		return nil, errors.New("DEEPSEEK_API_KEY is not set")
	}))
	require.NoError(t, err)

	_, err = e.Agent()
	assert.ErrorIs(t, err, ErrAgentUnavailable)
	assert.NotNil(t, e.Fetcher)
	assert.NotNil(t, e.Scraper)
}

func TestBuildEngineRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.QuoteProvider = "bloomberg"
	_, err := BuildEngine(cfg, WithoutAgent())
	assert.Error(t, err)
}

func TestRuntimeRebuildsOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	initial := testConfig(t)
	mgr, err := config.NewManager(config.WithConfigDir(dir), config.WithInitialConfig(&initial), config.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		topics []string
	)
	rt, err := NewRuntime(mgr,
		WithBuilder(func(cfg config.Config) (*Engine, error) {
			return BuildEngine(cfg, WithoutAgent())
		}),
		WithNotifier(func(topic, _ string) {
			mu.Lock()
			defer mu.Unlock()
			topics = append(topics, topic)
		}),
	)
	require.NoError(t, err)
	defer rt.Close()

	first := rt.Engine()
	require.NotNil(t, first)
	assert.Equal(t, 10, first.Config.MoversMaxRows)

	next := mgr.Get()
	next.MoversMaxRows = 25
	require.NoError(t, mgr.Update(next))

	require.Eventually(t, func() bool {
		return rt.Engine().Config.MoversMaxRows == 25
	}, 2*time.Second, 10*time.Millisecond)
	assert.Greater(t, rt.Engine().Version, first.Version)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"engine.reloaded", "engine.reloaded"}, topics)
}

func TestRuntimeKeepsEngineWhenRebuildFails(t *testing.T) {
	initial := testConfig(t)
	mgr, err := config.NewManager(config.WithConfigDir(t.TempDir()), config.WithInitialConfig(&initial))
	require.NoError(t, err)

	calls := 0
	rt, err := NewRuntime(mgr, WithBuilder(func(cfg config.Config) (*Engine, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("boom")
		}
		return BuildEngine(cfg, WithoutAgent())
	}))
	require.NoError(t, err)
	defer rt.Close()

	before := rt.Engine()
	next := mgr.Get()
	next.MoversMaxRows = 5
	require.NoError(t, mgr.Update(next))

	assert.Same(t, before, rt.Engine())
}

func TestNewRuntimeRequiresManager(t *testing.T) {
	_, err := NewRuntime(nil)
	assert.Error(t, err)
}
