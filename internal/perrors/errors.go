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

// Package perrors is the wire-visible error taxonomy of the control
// plane: the data-plane client and volume.Service classify their failures
// with these kinds rather than raw status codes. The scheduler, the store
// and the reconciler's Kubernetes calls return their own errors.
package perrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the coarse-grained error classification mapped to a wire status
// at the REST/gRPC boundary.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindAlreadyExists      Kind = "AlreadyExists"
	KindFailedPrecondition Kind = "FailedPrecondition"
	KindResourceExhausted  Kind = "ResourceExhausted"
	KindInvalidArgument    Kind = "InvalidArgument"
	KindUnavailable        Kind = "Unavailable"
	KindDeadlineExceeded   Kind = "DeadlineExceeded"
	KindInternal           Kind = "Internal"

	// Domain specials.
	KindVolumeNoReplicas     Kind = "VolumeNoReplicas"
	KindReplicaChangeCount   Kind = "ReplicaChangeCount"
	KindReplicaIncrease      Kind = "ReplicaIncrease"
	KindReplicaCountAchieved Kind = "ReplicaCountAchieved"
	KindNotPublished         Kind = "NotPublished"
	KindAlreadyPublished     Kind = "AlreadyPublished"
)

// ResourceKind names the entity an error is about, for logging/events.
type ResourceKind string

const (
	ResourceNode     ResourceKind = "Node"
	ResourcePool     ResourceKind = "Pool"
	ResourceReplica  ResourceKind = "Replica"
	ResourceNexus    ResourceKind = "Nexus"
	ResourceSnapshot ResourceKind = "Snapshot"
	ResourceVolume   ResourceKind = "Volume"
)

// Error is the tagged error type returned by the data-plane client and
// volume.Service. It carries enough structure for the reconciler's error policy
// (backoff.go) to decide how to retry, and for the REST facade (out of
// scope) to map it to a status code.
type Error struct {
	Kind     Kind
	Resource ResourceKind
	// Extra carries kind-specific structured detail, e.g. NotEnough's
	// Have/Need counts. Kept as a generic map to avoid one struct field per
	// error kind.
	Extra map[string]interface{}
	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s/%s", e.Kind, e.Resource)
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a tagged Error with no underlying cause.
func New(kind Kind, resource ResourceKind, extra map[string]interface{}) *Error {
	return &Error{Kind: kind, Resource: resource, Extra: extra}
}

// Wrap attaches kind/resource classification to an existing error,
// preserving it as the cause via github.com/pkg/errors.WithStack, which
// records a stack trace at this call. *Error has no Format method, so %+v
// on it prints Error() only; the trace is reached through Unwrap.
func Wrap(cause error, kind Kind, resource ResourceKind) *Error {
	return &Error{Kind: kind, Resource: resource, cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with a formatted message layered on top of cause.
func Wrapf(cause error, kind Kind, resource ResourceKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Resource: resource, cause: errors.Wrapf(cause, format, args...)}
}

// Is reports whether err is a tagged Error of the given kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == kind
}

// NotEnough builds the ResourceExhausted family of errors used by
// volume.Service when a scheduler policy's candidate list comes back empty.
func NotEnough(of string, have, need int) *Error {
	return New(KindResourceExhausted, ResourcePool, map[string]interface{}{
		"of": of, "have": have, "need": need,
	})
}
