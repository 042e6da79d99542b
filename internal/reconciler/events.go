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

package reconciler

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"

	"github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"
)

// Event reasons recognized against a DiskPool CR.
const (
	ReasonCreate      = "Create"
	ReasonOnline      = "Online"
	ReasonDestroy     = "Destroy"
	ReasonCheck       = "Check"
	ReasonMissing     = "Missing"
	ReasonUnreachable = "Unreachable"
	ReasonNotfound    = "Notfound"
)

// emit records a Normal or Warning event against pool, deduplicated per
// ResourceContext so repeated reconcile passes don't flood the CR's event
// list with the same message.
func emit(recorder record.EventRecorder, rctx *ResourceContext, pool *v1alpha1.DiskPool, eventType, reason, msg string) {
	if rctx.seen(reason + ":" + msg) {
		return
	}
	recorder.Event(pool, eventType, reason, msg)
}

func emitNormal(recorder record.EventRecorder, rctx *ResourceContext, pool *v1alpha1.DiskPool, reason, msg string) {
	emit(recorder, rctx, pool, corev1.EventTypeNormal, reason, msg)
}

func emitWarning(recorder record.EventRecorder, rctx *ResourceContext, pool *v1alpha1.DiskPool, reason, msg string) {
	emit(recorder, rctx, pool, corev1.EventTypeWarning, reason, msg)
}
