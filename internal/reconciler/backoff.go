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
	"time"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sinhaashish/mayastor-control-plane/internal/perrors"
)

// fixedBackoff is the requeue delay applied to error kinds with no more
// specific policy.
const fixedBackoff = 20 * time.Second

// notFoundBackoff is the requeue delay used for the external-delete and
// unreachable outcomes of the steady-state pool check.
const notFoundBackoff = 30 * time.Second

// errorResult maps a tagged error onto a controller-runtime Result,
// logging the requeue schedule with an absolute wall-clock ETA so an
// operator reading logs doesn't have to do the arithmetic themselves.
//
// - AlreadyExists / duplicate-create races carry their own embedded
//   timeout (the steady-state interval): the next pool_check will settle it.
// - FailedPrecondition and InvalidArgument are reconcile errors: they won't
//   resolve themselves by retrying, so no auto-retry is scheduled and the
//   context awaits the next watch event.
// - Everything else (Unavailable, DeadlineExceeded, Internal, transport)
//   uses the fixed backoff.
func errorResult(log logr.Logger, err error, interval time.Duration) ctrl.Result {
	switch {
	case perrors.Is(err, perrors.KindAlreadyExists):
		return requeueAfter(log, interval)
	case perrors.Is(err, perrors.KindFailedPrecondition), perrors.Is(err, perrors.KindInvalidArgument):
		log.Info("awaiting next change, no auto-retry scheduled", "error", err.Error())
		return ctrl.Result{}
	default:
		return requeueAfter(log, fixedBackoff)
	}
}

// requeueAfter builds a Result requeueing after d, logging the absolute
// ETA it resolves to.
func requeueAfter(log logr.Logger, d time.Duration) ctrl.Result {
	log.Info("scheduling retry", "after", d.String(), "eta", time.Now().Add(d).Format(time.RFC3339))
	return ctrl.Result{RequeueAfter: d}
}
