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

// Package tele wires OpenTelemetry tracing into the control plane: the
// reconciler's passes and volume.Service's operations each open a span
// through StartSpanWithLogger. Data-plane requests carry the operation's
// correlation id as a header but open no span of their own, and store
// writes and guard waits are not spanned.
package tele

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/sinhaashish/mayastor-control-plane"

// Tracer returns the package-wide tracer StartSpanWithLogger starts its
// spans under.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
