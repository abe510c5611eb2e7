// Package llm 提供 LLM 推理网关
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"arxiv-digest-api/internal/workflow/node"
	apperrors "arxiv-digest-api/pkg/errors"
	"arxiv-digest-api/pkg/logger"
	"arxiv-digest-api/pkg/metrics"
	"arxiv-digest-api/pkg/tracer"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
)

// Request 单次推理请求
type Request struct {
	// Provider 为空时使用默认 Provider
	Provider string
	// Model 为空时使用 Provider 配置的模型
	Model    string
	Messages []*schema.Message
	// Kind 业务来源标识，仅用于指标和日志 (flashcard/mindmap/answer)
	Kind        string
	MaxTokens   *int
	Temperature *float32
	// OutputSchema 非空时通过 response_format=json_schema 强约束输出；
	// Provider 不支持时自动降级为纯 Prompt 约束
	OutputSchema map[string]any
	SchemaName   string
}

// Result 单次推理结果
type Result struct {
	Text string
	// Structured 当输出形状已由 Provider 强约束且文本为合法 JSON 时携带
	Structured json.RawMessage
	Model      string
}

// Gateway LLM 推理网关：无重试、无缓存，只负责调用与错误分类
type Gateway struct {
	factory *EinoFactory
}

// NewGateway 创建推理网关
func NewGateway(factory *EinoFactory) *Gateway {
	return &Gateway{factory: factory}
}

// Generate 执行一次推理调用
func (g *Gateway) Generate(ctx context.Context, req *Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", req.Provider),
		attribute.String("llm.kind", req.Kind),
	)

	chatModel, err := g.factory.Get(ctx, req.Provider)
	if err != nil {
		return nil, apperrors.ErrLLMConnection.WithError(err)
	}

	start := time.Now()
	schemaEnforced := req.OutputSchema != nil
	outMsg, err := chatModel.Generate(ctx, req.Messages, buildModelOptions(req, true)...)

	// 降级：Provider 不支持 json_schema 时回退到纯 Prompt 约束
	if err != nil && schemaEnforced && node.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"provider", req.Provider,
			"kind", req.Kind,
			"error", err.Error(),
		)
		schemaEnforced = false
		outMsg, err = chatModel.Generate(ctx, req.Messages, buildModelOptions(req, false)...)
	}

	g.observe(req, start, err)
	if err != nil {
		return nil, classifyError(err)
	}
	if outMsg == nil {
		return nil, apperrors.ErrLLMProtocol.WithDetail("empty llm response")
	}

	result := &Result{
		Text:  outMsg.Content,
		Model: g.modelName(req),
	}
	if schemaEnforced {
		if trimmed := strings.TrimSpace(outMsg.Content); json.Valid([]byte(trimmed)) {
			result.Structured = json.RawMessage(trimmed)
		}
	}
	return result, nil
}

// Stream 执行一次流式推理调用
// 返回的 StreamReader 惰性、有限、不可重放，可能在中途以错误结束，由调用方关闭
func (g *Gateway) Stream(ctx context.Context, req *Request) (*schema.StreamReader[*schema.Message], error) {
	ctx, span := tracer.Start(ctx, "llm.stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", req.Provider),
		attribute.String("llm.kind", req.Kind),
	)

	chatModel, err := g.factory.Get(ctx, req.Provider)
	if err != nil {
		return nil, apperrors.ErrLLMConnection.WithError(err)
	}

	start := time.Now()
	reader, err := chatModel.Stream(ctx, req.Messages, buildModelOptions(req, true)...)

	if err != nil && req.OutputSchema != nil && node.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported for stream, fallback to prompt-only",
			"provider", req.Provider,
			"kind", req.Kind,
			"error", err.Error(),
		)
		reader, err = chatModel.Stream(ctx, req.Messages, buildModelOptions(req, false)...)
	}

	g.observe(req, start, err)
	if err != nil {
		return nil, classifyError(err)
	}
	return reader, nil
}

func (g *Gateway) modelName(req *Request) string {
	if req.Model != "" {
		return req.Model
	}
	return g.factory.DefaultModelName()
}

func (g *Gateway) observe(req *Request, start time.Time, err error) {
	provider := req.Provider
	if provider == "" {
		provider = g.factory.config.DefaultProvider
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallsTotal.WithLabelValues(provider, req.Kind, status).Inc()
	metrics.LLMCallDuration.WithLabelValues(provider, req.Kind).Observe(time.Since(start).Seconds())
}

func buildModelOptions(req *Request, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)

	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.MaxTokens))
	}
	if strings.TrimSpace(req.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(req.Model)))
	}

	if enableSchema && req.OutputSchema != nil {
		name := req.SchemaName
		if name == "" {
			name = "structured_output"
		}
		// 优先使用 response_format=json_schema 强约束；失败时由调用方降级为“纯 Prompt 约束”。
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   name,
					"strict": false,
					"schema": req.OutputSchema,
				},
			},
		}))
	}

	return opts
}

// classifyError 将底层调用错误归类为连接 / 超时 / 协议三类
func classifyError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrLLMTimeout.WithError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return apperrors.ErrLLMTimeout.WithError(err)
		}
		return apperrors.ErrLLMConnection.WithError(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return apperrors.ErrLLMTimeout.WithError(err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "dial tcp"):
		return apperrors.ErrLLMConnection.WithError(err)
	default:
		return apperrors.ErrLLMProtocol.WithError(err)
	}
}
