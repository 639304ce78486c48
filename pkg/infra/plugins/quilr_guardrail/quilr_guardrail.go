package quilr_guardrail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/quilr/guardrails-go/pkg/infra/httpx"
	"github.com/quilr/guardrails-go/pkg/infra/metrics"
	"github.com/quilr/guardrails-go/pkg/infra/pluginiface"
	pluginTypes "github.com/quilr/guardrails-go/pkg/infra/plugins/types"
	"github.com/quilr/guardrails-go/pkg/infra/quilr"
	"github.com/quilr/guardrails-go/pkg/types"
)

const (
	PluginName = "quilr_guardrail"
)

type QuilrGuardrailPlugin struct {
	client   quilr.Client
	logger   *logrus.Logger
	defaults Config
}

// NewQuilrGuardrailPlugin builds the guardrail hook. defaults carries the
// environment-derived settings; per-chain Settings override them field by
// field.
func NewQuilrGuardrailPlugin(
	logger *logrus.Logger,
	client quilr.Client,
	defaults Config,
) pluginiface.Plugin {
	if client == nil {
		client = quilr.NewHTTPClient(logger)
	}
	return &QuilrGuardrailPlugin{
		client:   client,
		logger:   logger,
		defaults: defaults,
	}
}

func (p *QuilrGuardrailPlugin) Name() string {
	return PluginName
}

func (p *QuilrGuardrailPlugin) RequiredPlugins() []string {
	var requiredPlugins []string
	return requiredPlugins
}

func (p *QuilrGuardrailPlugin) Stages() []pluginTypes.Stage {
	var stages []pluginTypes.Stage
	return stages
}

func (p *QuilrGuardrailPlugin) AllowedStages() []pluginTypes.Stage {
	return []pluginTypes.Stage{
		pluginTypes.PreRequest,
		pluginTypes.DuringRequest,
		pluginTypes.PostResponse,
	}
}

func (p *QuilrGuardrailPlugin) ValidateConfig(config pluginTypes.PluginConfig) error {
	var cfg Config
	if err := mapstructure.Decode(config.Settings, &cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Credentials.BaseURL != "" {
		u, err := url.Parse(cfg.Credentials.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("credentials.base_url must be a valid http(s) url")
		}
	}
	return nil
}

func (p *QuilrGuardrailPlugin) Execute(
	ctx context.Context,
	cfg pluginTypes.PluginConfig,
	req *types.RequestContext,
	resp *types.ResponseContext,
	evtCtx *metrics.EventContext,
) (*pluginTypes.PluginResponse, error) {
	var conf Config
	if err := mapstructure.Decode(cfg.Settings, &conf); err != nil {
		p.logger.WithError(err).Error("failed to decode config")
		return nil, fmt.Errorf("failed to decode config: %v", err)
	}
	conf = conf.withDefaults(p.defaults)

	evt := &QuilrGuardrailData{Stage: string(req.Stage)}

	if conf.Credentials.ApiKey == "" {
		p.logger.Warn("quilr guardrails key is not configured, skipping content check")
		evt.Skipped = true
		evtCtx.SetExtras(evt)
		return passResponse("guardrail check skipped"), nil
	}

	switch req.Stage {
	case pluginTypes.PreRequest, pluginTypes.DuringRequest:
		return p.checkRequest(ctx, conf, req, evt, evtCtx)
	case pluginTypes.PostResponse:
		return p.checkResponse(ctx, conf, req, resp, evt, evtCtx)
	default:
		return nil, fmt.Errorf("unsupported stage: %s", req.Stage)
	}
}

func (p *QuilrGuardrailPlugin) checkRequest(
	ctx context.Context,
	conf Config,
	req *types.RequestContext,
	evt *QuilrGuardrailData,
	evtCtx *metrics.EventContext,
) (*pluginTypes.PluginResponse, error) {
	if len(req.Body) == 0 {
		evtCtx.SetExtras(evt)
		return passResponse("no content to check"), nil
	}

	var parser fastjson.Parser
	body, err := parser.ParseBytes(req.Body)
	if err != nil || body.Type() != fastjson.TypeObject {
		p.logger.Debug("request body is not a json object, skipping content check")
		evt.Skipped = true
		evtCtx.SetExtras(evt)
		return passResponse("guardrail check skipped"), nil
	}

	if !shouldCheck(conf, req.Model, req.Credential, body) {
		evt.Skipped = true
		evtCtx.SetExtras(evt)
		return passResponse("guardrail check skipped"), nil
	}

	adapted, err := adaptRequest(body)
	if err != nil {
		if errors.Is(err, errUnsupportedShape) {
			p.logger.WithError(err).Debug("skipping content check")
			evt.Skipped = true
			evtCtx.SetExtras(evt)
			return passResponse("guardrail check skipped"), nil
		}
		evtCtx.SetError(err)
		evtCtx.SetExtras(evt)
		return nil, err
	}
	if adapted.shape == shapeNone {
		evtCtx.SetExtras(evt)
		return passResponse("no content to check"), nil
	}
	evt.CheckedMessages = adapted.count

	start := time.Now()
	result, err := p.client.Check(ctx, quilr.CheckContent{Messages: adapted.messages}, p.credentials(conf))
	evt.DetectionLatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		p.logger.WithError(err).Error("quilr guardrails check failed")
		evtCtx.SetError(err)
		evtCtx.SetExtras(evt)
		return nil, err
	}

	evt.Verdict = result.Status
	evt.Categories = result.CategoriesDetected
	evtCtx.SetVerdict(result.Status, result.CategoriesDetected)

	switch result.Status {
	case quilr.VerdictBlocked:
		evt.Blocked = true
		violation := NewQuilrViolation(blockMessage(result.CategoriesDetected))
		evtCtx.SetError(violation)
		evtCtx.SetExtras(evt)
		return nil, &pluginTypes.PluginError{
			StatusCode: http.StatusForbidden,
			Message:    violation.Error(),
			Err:        violation,
		}
	case quilr.VerdictRedacted:
		if req.Stage == pluginTypes.DuringRequest {
			// The upstream call is already in flight; record the verdict only.
			evtCtx.SetExtras(evt)
			return passResponse("prompt content checked"), nil
		}
		if replacementPresent(result.Messages) {
			if err := applyRedactedRequest(body, adapted, result.Messages); err != nil {
				p.logger.WithError(err).Error("failed to apply redacted content")
				evtCtx.SetError(err)
				evtCtx.SetExtras(evt)
				return nil, err
			}
			req.Body = body.MarshalTo(nil)
			evt.Redacted = true
		}
		evtCtx.SetExtras(evt)
		return passResponse("prompt content was redacted"), nil
	default:
		evtCtx.SetExtras(evt)
		return passResponse("prompt content is safe"), nil
	}
}

func (p *QuilrGuardrailPlugin) checkResponse(
	ctx context.Context,
	conf Config,
	req *types.RequestContext,
	resp *types.ResponseContext,
	evt *QuilrGuardrailData,
	evtCtx *metrics.EventContext,
) (*pluginTypes.PluginResponse, error) {
	if resp == nil || len(resp.Body) == 0 {
		evtCtx.SetExtras(evt)
		return passResponse("no content to check"), nil
	}

	encoding := headerValue(resp.Headers, "Content-Encoding")
	decoded, reencoded, err := httpx.DecodeBody(encoding, resp.Body)
	if err != nil {
		p.logger.WithError(err).Error("failed to decode response body")
		evtCtx.SetError(err)
		evtCtx.SetExtras(evt)
		return nil, err
	}

	var parser fastjson.Parser
	body, err := parser.ParseBytes(decoded)
	if err != nil || body.Type() != fastjson.TypeObject {
		p.logger.Debug("response body is not a json object, skipping content check")
		evt.Skipped = true
		evtCtx.SetExtras(evt)
		return passResponse("guardrail check skipped"), nil
	}

	if !shouldCheck(conf, req.Model, req.Credential, body) {
		evt.Skipped = true
		evtCtx.SetExtras(evt)
		return passResponse("guardrail check skipped"), nil
	}

	choices := body.GetArray("choices")
	if len(choices) == 0 {
		evtCtx.SetExtras(evt)
		return passResponse("no content to check"), nil
	}

	verdict := quilr.VerdictSafe
	mutated := false
	for _, choice := range choices {
		contentValue := choice.Get("message", "content")
		if contentValue == nil {
			continue
		}
		var content MessageContent
		if err := json.Unmarshal(contentValue.MarshalTo(nil), &content); err != nil {
			continue
		}
		text, ok := content.TextValue()
		if !ok {
			continue
		}
		evt.CheckedMessages++

		start := time.Now()
		result, err := p.client.Check(ctx, quilr.CheckContent{Text: text}, p.credentials(conf))
		evt.DetectionLatencyMs += time.Since(start).Milliseconds()
		if err != nil {
			p.logger.WithError(err).Error("quilr guardrails check failed")
			evtCtx.SetError(err)
			evtCtx.SetExtras(evt)
			return nil, err
		}

		for _, category := range result.CategoriesDetected {
			if !containsString(evt.Categories, category) {
				evt.Categories = append(evt.Categories, category)
			}
		}

		switch result.Status {
		case quilr.VerdictBlocked:
			evt.Verdict = quilr.VerdictBlocked
			evt.Blocked = true
			evtCtx.SetVerdict(quilr.VerdictBlocked, evt.Categories)
			violation := NewQuilrViolation(blockMessage(result.CategoriesDetected))
			evtCtx.SetError(violation)
			evtCtx.SetExtras(evt)
			return nil, &pluginTypes.PluginError{
				StatusCode: http.StatusForbidden,
				Message:    violation.Error(),
				Err:        violation,
			}
		case quilr.VerdictRedacted:
			verdict = quilr.VerdictRedacted
			if result.ProcessedText == "" {
				continue
			}
			content.SetText(result.ProcessedText)
			patched, err := jsonValue(content)
			if err != nil {
				evtCtx.SetError(err)
				evtCtx.SetExtras(evt)
				return nil, err
			}
			if message := choice.GetObject("message"); message != nil {
				message.Set("content", patched)
				mutated = true
				evt.Redacted = true
			}
		}
	}

	if mutated {
		resp.Body = body.MarshalTo(nil)
		for k := range resp.Headers {
			// The rewritten body is plain json now.
			if reencoded && strings.EqualFold(k, "Content-Encoding") {
				delete(resp.Headers, k)
			}
			if strings.EqualFold(k, "Content-Length") {
				resp.Headers[k] = []string{strconv.Itoa(len(resp.Body))}
			}
		}
	}

	evt.Verdict = verdict
	evtCtx.SetVerdict(verdict, evt.Categories)
	evtCtx.SetExtras(evt)
	if verdict == quilr.VerdictRedacted {
		return passResponse("response content was redacted"), nil
	}
	return passResponse("response content is safe"), nil
}

func (p *QuilrGuardrailPlugin) credentials(conf Config) quilr.Credentials {
	return quilr.Credentials{
		APIKey:  conf.Credentials.ApiKey,
		BaseURL: conf.Credentials.BaseURL,
	}
}

// shouldCheck applies the model and credential allow-lists. An unset list
// leaves its axis unrestricted; when both are set, both must match.
func shouldCheck(conf Config, model, credential string, body *fastjson.Value) bool {
	if len(conf.AllowedModels) > 0 {
		if model == "" && body != nil {
			model = string(body.GetStringBytes("model"))
		}
		if !containsString(conf.AllowedModels, model) {
			return false
		}
	}
	if len(conf.AllowedCredentials) > 0 && !containsString(conf.AllowedCredentials, credential) {
		return false
	}
	return true
}

// replacementPresent reports whether the service returned a non-empty
// replacement message list.
func replacementPresent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return false
	}
	return v.Type() == fastjson.TypeArray && len(v.GetArray()) > 0
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func headerValue(headers map[string][]string, key string) string {
	if values, ok := headers[key]; ok && len(values) > 0 {
		return values[0]
	}
	for k, values := range headers {
		if strings.EqualFold(k, key) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func passResponse(message string) *pluginTypes.PluginResponse {
	return &pluginTypes.PluginResponse{
		StatusCode: 200,
		Message:    message,
		Headers: map[string][]string{
			"Content-Type": {"application/json"},
		},
	}
}
