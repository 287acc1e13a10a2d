package otel

import (
	"context"
	"sync"

	"github.com/hanpama/gqlclient/internal/eventbus"
	"github.com/hanpama/gqlclient/internal/events"
	"github.com/hanpama/gqlclient/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/hanpama/gqlclient"

// Setup configures OpenTelemetry and attaches eventbus subscribers,
// installing a global bus if none is set. If endpoint is empty, no
// telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	if !eventbus.Enabled() {
		eventbus.Use(eventbus.New())
	}
	unregister := Register(nil, tp.Tracer(instrumentationName))

	return func(ctx context.Context) error {
		unregister()
		return tp.Shutdown(ctx)
	}, nil
}

// Register turns client events published on bus into spans of tracer.
// A nil bus means the global one.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unregister func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer   trace.Tracer
	opSpans  sync.Map // rid -> trace.Span
	reqSpans sync.Map // rid -> trace.Span
	subSpans sync.Map // subscription id -> trace.Span
}

func subscribe[T any](bus *eventbus.Bus, h eventbus.Handler[T]) func() {
	if bus == nil {
		return eventbus.Subscribe(h)
	}
	return eventbus.SubscribeTo(bus, h)
}

// parent returns ctx carrying the open operation span of rid, if any.
func (s *subscriber) parent(ctx context.Context, rid int64) context.Context {
	if v, ok := s.opSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		subscribe(bus, func(ctx context.Context, e events.OperationStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql.client.operation", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.opSpans.Store(rid, span)
		}),

		subscribe(bus, func(ctx context.Context, e events.OperationFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.opSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
			endSpan(span, e.Err)
		}),

		subscribe(bus, func(ctx context.Context, e events.HTTPClientStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "http.client.request", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.url", e.Request.URL.String()),
			)
			s.reqSpans.Store(rid, span)
		}),

		subscribe(bus, func(ctx context.Context, e events.HTTPClientFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.reqSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			if e.Status != 0 {
				span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			}
			endSpan(span, e.Err)
		}),

		subscribe(bus, func(ctx context.Context, e events.SubscribeStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "graphql.client.subscription", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.subscription.id", e.ID),
				attribute.String("url.full", e.URL),
			)
			s.subSpans.Store(e.ID, span)
		}),

		subscribe(bus, func(ctx context.Context, e events.SubscribeFinish) {
			v, ok := s.subSpans.LoadAndDelete(e.ID)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.subscription.messages", e.Messages))
			endSpan(span, e.Err)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
