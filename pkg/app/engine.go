package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/internal/agent"
	"github.com/dyike/FinAgentGo/internal/tools"
	"github.com/dyike/FinAgentGo/pkg/dataflows"
)

// ErrAgentUnavailable is returned when no chat model could be configured.
var ErrAgentUnavailable = errors.New("agent runtime unavailable")

// Engine is everything built from one config snapshot: data capabilities and
// the agent runtime that uses them.
type Engine struct {
	Config  config.Config
	Fetcher *dataflows.Fetcher
	Scraper *dataflows.MoversScraper
	Catalog *tools.Catalog

	agent    agent.Runtime
	agentErr error
	closeFn  func() error

	BuiltAt time.Time
	Version uint64
}

var engineSeq atomic.Uint64

type EngineOption func(*engineOptions)

type engineOptions struct {
	observer  dataflows.Observer
	chatModel agent.ChatModelFactory
	skipAgent bool
}

func WithObserver(o dataflows.Observer) EngineOption {
	return func(opts *engineOptions) { opts.observer = o }
}

// WithChatModel replaces the chat model factory, mainly for tests.
func WithChatModel(f agent.ChatModelFactory) EngineOption {
	return func(opts *engineOptions) { opts.chatModel = f }
}

// WithoutAgent builds only the data capabilities.
func WithoutAgent() EngineOption {
	return func(opts *engineOptions) { opts.skipAgent = true }
}

func BuildEngine(cfg config.Config, opts ...EngineOption) (*Engine, error) {
	options := engineOptions{chatModel: agent.NewChatModel}
	for _, opt := range opts {
		opt(&options)
	}

	provider, closeProvider, err := dataflows.NewProvider(&cfg)
	if err != nil {
		return nil, err
	}

	var fetchOpts []dataflows.FetcherOption
	var scrapeOpts []dataflows.ScraperOption
	fetchOpts = append(fetchOpts, dataflows.WithFetchTimeout(cfg.FetchTimeout()))
	if options.observer != nil {
		fetchOpts = append(fetchOpts, dataflows.WithFetchObserver(options.observer))
		scrapeOpts = append(scrapeOpts, dataflows.WithScraperObserver(options.observer))
	}

	e := &Engine{
		Config:  cfg,
		Fetcher: dataflows.NewFetcher(provider, fetchOpts...),
		Scraper: dataflows.NewMoversScraper(&cfg, scrapeOpts...),
		closeFn: closeProvider,
		BuiltAt: time.Now(),
		Version: engineSeq.Add(1),
	}
	e.Catalog = tools.NewCatalog(e.Fetcher, e.Scraper)

	if options.skipAgent {
		e.agentErr = ErrAgentUnavailable
		return e, nil
	}

	// A missing model only disables chat; the data endpoints keep working.
	ctx := context.Background()
	chatModel, err := options.chatModel(ctx, &cfg)
	if err != nil {
		slog.Warn("chat model unavailable", "provider", cfg.LLMProvider, "err", err)
		e.agentErr = errors.Join(ErrAgentUnavailable, err)
		return e, nil
	}
	reactAgent, err := agent.NewReactAgent(ctx, chatModel, e.Catalog.Tools(), cfg.MaxAgentSteps)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.agent = agent.NewEinoRuntime(reactAgent)
	return e, nil
}

// Agent returns the agent runtime or the reason it is unavailable.
func (e *Engine) Agent() (agent.Runtime, error) {
	if e.agent == nil {
		if e.agentErr == nil {
			return nil, ErrAgentUnavailable
		}
		return nil, e.agentErr
	}
	return e.agent, nil
}

func (e *Engine) Close() error {
	if e == nil || e.closeFn == nil {
		return nil
	}
	return e.closeFn()
}
