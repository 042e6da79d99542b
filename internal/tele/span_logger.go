/*
Copyright 2024 The Mayastor Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tele

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
)

// CorrID is the correlation id minted once per operation and carried in
// its context: every log record and span under the operation repeats it,
// and the data-plane client forwards it to the storage node agent (see
// CorrIDHeader), so one placement or custody pass can be followed across
// the control plane and node logs.
type CorrID string

// CorrIDHeader is the HTTP header the data-plane client sends the
// operation's correlation id under.
const CorrIDHeader = "x-mayastor-correlation-id"

type corrIDKey struct{}

// withCorrID returns ctx's correlation id, minting and attaching a fresh
// one if this is the operation's first span.
func withCorrID(ctx context.Context) (context.Context, CorrID) {
	if id, ok := ctx.Value(corrIDKey{}).(CorrID); ok {
		return ctx, id
	}
	id := CorrID(uuid.NewString())
	return context.WithValue(ctx, corrIDKey{}, id), id
}

// CtxCorrID returns the correlation id already attached to ctx, or the
// empty string when ctx is not part of a spanned operation.
func CtxCorrID(ctx context.Context) CorrID {
	id, _ := ctx.Value(corrIDKey{}).(CorrID)
	return id
}

// spanSink is a logr.LogSink that mirrors log records onto the active span
// as events, so a trace viewer shows what the structured logger printed.
type spanSink struct {
	trace.Span
	name string
	vals []interface{}
}

func (s *spanSink) Init(_ logr.RuntimeInfo) {}

func (s *spanSink) Enabled(_ int) bool { return true }

func (s *spanSink) kvsToAttrs(keysAndValues ...interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, (len(keysAndValues)+len(s.vals))/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		attrs = append(attrs, attribute.String(fmt.Sprintf("%v", keysAndValues[i]), fmt.Sprintf("%v", keysAndValues[i+1])))
	}
	for i := 0; i+1 < len(s.vals); i += 2 {
		attrs = append(attrs, attribute.String(fmt.Sprintf("%v", s.vals[i]), fmt.Sprintf("%v", s.vals[i+1])))
	}
	return attrs
}

func (s *spanSink) evtStr(evtType, msg string) string {
	return fmt.Sprintf("[%s | %s] %s", evtType, s.name, msg)
}

func (s *spanSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	s.AddEvent(s.evtStr("INFO", msg), trace.WithTimestamp(time.Now()), trace.WithAttributes(s.kvsToAttrs(keysAndValues...)...))
}

func (s *spanSink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.AddEvent(s.evtStr("ERROR", fmt.Sprintf("%s (%s)", msg, err)), trace.WithTimestamp(time.Now()), trace.WithAttributes(s.kvsToAttrs(keysAndValues...)...))
}

func (s *spanSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	cp := *s
	cp.vals = append(append([]interface{}{}, s.vals...), keysAndValues...)
	return &cp
}

func (s *spanSink) WithName(name string) logr.LogSink {
	cp := *s
	cp.name = name
	return &cp
}

// Config holds optional, arbitrary configuration attached to a span
// started via StartSpanWithLogger.
type Config struct {
	KVPs map[string]string
}

func (c Config) teleKeyValues() []attribute.KeyValue {
	ret := make([]attribute.KeyValue, 0, len(c.KVPs))
	for k, v := range c.KVPs {
		ret = append(ret, attribute.String(k, v))
	}
	return ret
}

// Option configures StartSpanWithLogger. Build one with KVP.
type Option func(*Config)

// KVP attaches a key-value pair to the span started by StartSpanWithLogger.
func KVP(key, value string) Option {
	return func(cfg *Config) {
		cfg.KVPs[key] = value
	}
}

// StartSpanWithLogger starts a span under the package tracer and returns a
// logger that writes to both the ambient controller-runtime logger and the
// new span, plus a func that must be deferred to end the span.
//
//	ctx, log, done := tele.StartSpanWithLogger(ctx, "reconciler.pool.check")
//	defer done()
func StartSpanWithLogger(ctx context.Context, spanName string, opts ...Option) (context.Context, logr.Logger, func()) {
	cfg := &Config{KVPs: make(map[string]string)}
	for _, opt := range opts {
		opt(cfg)
	}
	ctx, corrID := withCorrID(ctx)
	ctx, span := Tracer().Start(ctx, spanName, trace.WithAttributes(append(cfg.teleKeyValues(), attribute.String("corrID", string(corrID)))...))
	ambient := ctrllog.FromContext(ctx).WithName(spanName)
	composite := logr.New(&compositeSink{sinks: []logr.LogSink{
		ambient.WithValues("corrID", string(corrID)).GetSink(),
		&spanSink{Span: span, name: spanName},
	}})
	return ctx, composite, func() { span.End() }
}
