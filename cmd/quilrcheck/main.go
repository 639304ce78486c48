package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/quilr/guardrails-go/pkg/config"
	"github.com/quilr/guardrails-go/pkg/infra/httpx"
	infraLogger "github.com/quilr/guardrails-go/pkg/infra/logger"
	"github.com/quilr/guardrails-go/pkg/infra/metrics"
	"github.com/quilr/guardrails-go/pkg/infra/plugins"
	"github.com/quilr/guardrails-go/pkg/infra/plugins/quilr_guardrail"
	pluginTypes "github.com/quilr/guardrails-go/pkg/infra/plugins/types"
	"github.com/quilr/guardrails-go/pkg/infra/prometheus"
	"github.com/quilr/guardrails-go/pkg/infra/quilr"
	"github.com/quilr/guardrails-go/pkg/types"
	"github.com/quilr/guardrails-go/pkg/version"
)

// chainID names the single entity the one-shot chain is registered under.
const chainID = "quilrcheck"

func main() {
	os.Exit(run())
}

func run() int {
	stageFlag := flag.String("stage", "pre", "check stage: pre, during or post")
	modelFlag := flag.String("model", "", "model the payload targets, matched against the allow-list")
	credentialFlag := flag.String("credential", "", "credential identifier, matched against the allow-list")
	useFastHTTP := flag.Bool("fasthttp", false, "use the pooled fasthttp transport for check calls")
	configPath := flag.String("config", "", "directory containing config.yaml")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		info := version.GetInfo()
		fmt.Printf("%s %s (%s, %s, built %s)\n",
			info.AppName, info.Version, info.GoVersion, info.Platform, info.BuildDate)
		return 0
	}

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, hook := infraLogger.NewLogger()
	defer hook.Close()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	cfg := config.GetConfig()

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency:            cfg.Metrics.EnableLatency,
		EnableCategoryDetections: cfg.Metrics.EnableCategoryDetections,
	})

	stage, err := resolveStage(*stageFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	body, err := readPayload(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read payload: %v\n", err)
		return 1
	}

	var clientOpts []quilr.ClientOption
	if *useFastHTTP {
		clientOpts = append(clientOpts, quilr.WithHTTPClient(httpx.NewFastHTTPClient()))
	}
	if cfg.Quilr.Guardrails.TimeoutSeconds > 0 {
		clientOpts = append(clientOpts, quilr.WithCheckTimeout(
			time.Duration(cfg.Quilr.Guardrails.TimeoutSeconds)*time.Second,
		))
	}

	manager := plugins.NewManager(
		logger,
		plugins.WithQuilrClient(quilr.NewHTTPClient(logger, clientOpts...)),
		plugins.WithGuardrailDefaults(quilr_guardrail.Config{
			Credentials: quilr_guardrail.Credentials{
				ApiKey:  cfg.Quilr.Guardrails.Key,
				BaseURL: cfg.Quilr.Guardrails.BaseURL,
			},
			AllowedModels:      config.ParseList(cfg.Quilr.Guardrails.AllowedModels),
			AllowedCredentials: config.ParseList(cfg.Quilr.Guardrails.AllowedCredentials),
		}),
	)

	if err := manager.SetPluginChain(chainID, []pluginTypes.PluginConfig{{
		Name:    quilr_guardrail.PluginName,
		Enabled: true,
		Stage:   stage,
	}}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure plugin chain: %v\n", err)
		return 1
	}

	worker := metrics.NewWorker(logger)
	worker.StartWorkers(1)
	defer worker.Shutdown()

	collector := metrics.NewCollector(&metrics.Config{
		EnablePluginTraces: cfg.Metrics.EnablePluginTraces,
	})

	req, resp := buildContexts(stage, *modelFlag, *credentialFlag, body)

	ctx := context.Background()
	if stage == pluginTypes.DuringRequest {
		err = manager.ExecuteStageAlongside(ctx, chainID, req, resp, collector,
			func(ctx context.Context) error {
				// Stand-in for the proxied upstream call the check runs next to.
				select {
				case <-time.After(50 * time.Millisecond):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
	} else {
		_, err = manager.ExecuteStage(ctx, stage, chainID, req, resp, collector)
	}

	worker.Process(collector)

	if err != nil {
		var pluginErr *pluginTypes.PluginError
		if errors.As(err, &pluginErr) {
			fmt.Fprintln(os.Stderr, pluginErr.Message)
			return 2
		}
		fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
		return 1
	}

	if stage == pluginTypes.PostResponse {
		fmt.Println(string(resp.Body))
	} else {
		fmt.Println(string(req.Body))
	}

	return 0
}

func resolveStage(name string) (pluginTypes.Stage, error) {
	switch name {
	case "pre":
		return pluginTypes.PreRequest, nil
	case "during":
		return pluginTypes.DuringRequest, nil
	case "post":
		return pluginTypes.PostResponse, nil
	default:
		return "", fmt.Errorf("unknown stage %q, expected pre, during or post", name)
	}
}

func readPayload(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func buildContexts(
	stage pluginTypes.Stage,
	model, credential string,
	body []byte,
) (*types.RequestContext, *types.ResponseContext) {
	req := &types.RequestContext{
		Context:    context.Background(),
		Method:     "POST",
		Path:       "/v1/chat/completions",
		Headers:    map[string][]string{"Content-Type": {"application/json"}},
		Model:      model,
		Credential: credential,
	}
	resp := &types.ResponseContext{
		Context: context.Background(),
		Headers: map[string][]string{"Content-Type": {"application/json"}},
	}
	if stage == pluginTypes.PostResponse {
		resp.Body = body
	} else {
		req.Body = body
	}
	return req, resp
}
