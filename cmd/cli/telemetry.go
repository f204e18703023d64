package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/duration"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// shutdownFunc releases a telemetry component.
type shutdownFunc func(context.Context) error

// startMetrics registers the dispatcher collectors on a private registry
// and serves it at addr under /metrics.
func startMetrics(addr string, logger *slog.Logger) (*probe.Metrics, *prometheus.Registry, shutdownFunc, error) {
	// Custom registry so tests and embedders never share collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m, err := probe.NewMetrics(registry)
	if err != nil {
		return nil, nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  duration.Shutdown,
		WriteTimeout: duration.ExporterConnect,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return m, registry, server.Shutdown, nil
}

// startTracing installs a global tracer provider exporting spans over
// OTLP/gRPC to endpoint.
func startTracing(endpoint string, insecureConn bool) (shutdownFunc, error) {
	grpcOpts := []grpc.DialOption{}
	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}
	if insecureConn {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	exporterOpts = append(exporterOpts, otlptracegrpc.WithDialOption(grpcOpts...))

	ctx, cancel := context.WithTimeout(context.Background(), duration.ExporterConnect)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(defaults.ToolName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "probe"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
