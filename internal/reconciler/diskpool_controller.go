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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"

	"github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"
	"github.com/sinhaashish/mayastor-control-plane/internal/dataplane"
	"github.com/sinhaashish/mayastor-control-plane/internal/metrics"
	"github.com/sinhaashish/mayastor-control-plane/internal/perrors"
	"github.com/sinhaashish/mayastor-control-plane/internal/tele"
	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// createdByLabel is stamped onto every pool this operator creates, so a
// pool observed on the data-plane can be attributed back to its CR.
const createdByLabel = "openebs.io/created-by"

// inventoryRetryBackoff is the requeue delay when removing the finalizer
// from a terminated pool fails and has to be retried.
const inventoryRetryBackoff = 10 * time.Second

// DiskPoolReconciler drives a declared DiskPool through creation, steady
// state checking and teardown against the data-plane agent on the pool's
// node.
type DiskPoolReconciler struct {
	client.Client
	Recorder  record.EventRecorder
	DataPlane dataplane.Client
	Pools     *Inventory

	// Interval is the steady-state requeue period once a pool has settled.
	Interval time.Duration
	// ReconcileTimeout bounds a single Reconcile call.
	ReconcileTimeout time.Duration
	// DisableDeviceValidation skips block-device attribution on create
	// failure, for test fixtures with synthetic disk URIs.
	DisableDeviceValidation bool
}

// SetupWithManager registers the reconciler with mgr.
func (r *DiskPoolReconciler) SetupWithManager(mgr ctrl.Manager, options controller.Options) error {
	return ctrl.NewControllerManagedBy(mgr).
		WithOptions(options).
		For(&v1alpha1.DiskPool{}).
		Complete(r)
}

// +kubebuilder:rbac:groups=openebs.io,resources=diskpools,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=openebs.io,resources=diskpools/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile converges one DiskPool towards its declared state.
func (r *DiskPoolReconciler) Reconcile(ctx context.Context, req ctrl.Request) (_ ctrl.Result, reterr error) {
	ctx, cancel := context.WithTimeout(ctx, r.reconcileTimeout())
	defer cancel()

	ctx, log, done := tele.StartSpanWithLogger(ctx, "reconciler.diskpool",
		tele.KVP("namespace", req.Namespace), tele.KVP("name", req.Name))
	defer done()

	started := time.Now()
	outcome := "success"
	defer func() {
		if reterr != nil {
			outcome = "error"
		}
		metrics.ReconcileTotal.WithLabelValues(outcome).Inc()
		metrics.ReconcileDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
	}()

	pool := &v1alpha1.DiskPool{}
	if err := r.Get(ctx, req.NamespacedName, pool); err != nil {
		if apierrors.IsNotFound(err) {
			r.Pools.Drop(req.String())
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}
	if pool.Namespace == "" {
		panic(fmt.Sprintf("DiskPool %q is not namespaced", pool.Name))
	}

	rctx := r.Pools.Get(req.String())
	rctx.Spec = pool.Spec

	if !pool.DeletionTimestamp.IsZero() {
		result, err := r.reconcileDelete(ctx, req, pool, rctx)
		if err != nil {
			rctx.Retries++
			return errorResult(log, err, r.Interval), nil
		}
		rctx.Retries = 0
		return result, nil
	}

	if addFinalizer(pool) {
		if err := r.Update(ctx, pool); err != nil {
			return ctrl.Result{}, err
		}
	}

	switch pool.Status.CrState {
	case "":
		// Newly observed: default the status and wait for the status
		// patch to come back around as a watch event.
		if err := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
			s.CrState = v1alpha1.CrStateCreating
			s.PoolStatus = v1alpha1.PoolStatusUnknown
		}); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	case v1alpha1.CrStateCreating:
		if err := r.createOrImport(ctx, pool, rctx); err != nil {
			rctx.Retries++
			return errorResult(log, err, r.Interval), nil
		}
		rctx.Retries = 0
		return requeueAfter(log, r.Interval), nil
	case v1alpha1.CrStateCreated, v1alpha1.CrStateTerminating:
		return r.poolCheck(ctx, pool, rctx)
	default:
		log.Info("unrecognized cr_state, awaiting next change", "cr_state", pool.Status.CrState)
		return ctrl.Result{}, nil
	}
}

func (r *DiskPoolReconciler) reconcileTimeout() time.Duration {
	if r.ReconcileTimeout > 0 {
		return r.ReconcileTimeout
	}
	return 90 * time.Minute
}

// createOrImport issues the pool creation against the data-plane agent.
// A 422 response means the pool already exists there, which is success
// for our purposes: the steady-state check will reconcile the details.
func (r *DiskPoolReconciler) createOrImport(ctx context.Context, pool *v1alpha1.DiskPool, rctx *ResourceContext) error {
	ctx, log, done := tele.StartSpanWithLogger(ctx, "reconciler.diskpool.create")
	defer done()

	node := types.NodeId(pool.Spec.Node)
	poolID := types.PoolId(pool.Name)

	labels := make(map[string]string, len(pool.Spec.Topology)+1)
	for k, v := range pool.Spec.Topology {
		labels[k] = v
	}
	labels[createdByLabel] = "operator-diskpool"

	created, err := r.DataPlane.PutNodePool(ctx, node, poolID, pool.Spec.Disks, labels)
	if err != nil {
		if perrors.Is(err, perrors.KindAlreadyExists) {
			if perr := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
				s.CrState = v1alpha1.CrStateCreated
				s.PoolStatus = v1alpha1.PoolStatusUnknown
			}); perr != nil {
				return perr
			}
			return err
		}
		r.attributeCreateFailure(ctx, pool, rctx, err)
		return err
	}

	observed, err := r.DataPlane.GetNodePool(ctx, node, poolID)
	if err != nil {
		observed = created
	}
	if err := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
		s.CrState = v1alpha1.CrStateCreated
		setObserved(s, observed)
	}); err != nil {
		return err
	}

	emitNormal(r.Recorder, rctx, pool, ReasonCreate,
		fmt.Sprintf("Created disk pool %q on node %q", pool.Name, pool.Spec.Node))
	log.Info("pool created", "node", pool.Spec.Node, "disks", strings.Join(pool.Spec.Disks, ","))
	return nil
}

// attributeCreateFailure asks the node for its block devices to explain a
// failed creation: a disk the node has never heard of gets a Missing
// event, an unknown node gets its own event, anything else a generic
// failure event. Attribution is best-effort, the original error is what
// drives the retry policy.
func (r *DiskPoolReconciler) attributeCreateFailure(ctx context.Context, pool *v1alpha1.DiskPool, rctx *ResourceContext, cause error) {
	if perrors.Is(cause, perrors.KindNotFound) {
		emitWarning(r.Recorder, rctx, pool, ReasonMissing,
			fmt.Sprintf("Node %q not found while creating pool: %v", pool.Spec.Node, cause))
		return
	}
	if r.DisableDeviceValidation {
		emitWarning(r.Recorder, rctx, pool, ReasonCreate,
			fmt.Sprintf("Failed to create pool: %v", cause))
		return
	}

	devices, err := r.DataPlane.GetNodeBlockDevices(ctx, types.NodeId(pool.Spec.Node), true)
	if err != nil {
		emitWarning(r.Recorder, rctx, pool, ReasonCreate,
			fmt.Sprintf("Failed to create pool: %v", cause))
		return
	}

	for _, disk := range pool.Spec.Disks {
		if !deviceKnown(devices, disk) {
			emitWarning(r.Recorder, rctx, pool, ReasonMissing,
				fmt.Sprintf("Disk %q not reported by node %q", disk, pool.Spec.Node))
			return
		}
	}
	emitWarning(r.Recorder, rctx, pool, ReasonCreate,
		fmt.Sprintf("Failed to create pool: %v", cause))
}

// deviceKnown matches a declared disk URI against the devnames and
// devlinks a node reported.
func deviceKnown(devices []dataplane.BlockDevice, disk string) bool {
	trimmed := strings.TrimPrefix(disk, "aio://")
	trimmed = strings.TrimPrefix(trimmed, "uring://")
	for _, d := range devices {
		if d.DevName == trimmed || d.DevName == disk {
			return true
		}
		for _, link := range d.DevLinks {
			if link == trimmed || link == disk {
				return true
			}
		}
	}
	return false
}

// poolCheck is the steady-state probe of a settled pool: refresh the
// observed status, notice external deletions and coerce the declared
// state when the CR is being torn down.
func (r *DiskPoolReconciler) poolCheck(ctx context.Context, pool *v1alpha1.DiskPool, rctx *ResourceContext) (ctrl.Result, error) {
	ctx, log, done := tele.StartSpanWithLogger(ctx, "reconciler.diskpool.check")
	defer done()

	observed, err := r.DataPlane.GetNodePool(ctx, types.NodeId(pool.Spec.Node), types.PoolId(pool.Name))
	switch {
	case err == nil && observed.Status != "":
		newState := pool.Status.CrState
		if !pool.DeletionTimestamp.IsZero() {
			newState = v1alpha1.CrStateTerminating
		}
		if perr := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
			s.CrState = newState
			setObserved(s, observed)
		}); perr != nil {
			return ctrl.Result{}, perr
		}
		if observed.Status == types.PoolOnline {
			emitNormal(r.Recorder, rctx, pool, ReasonOnline,
				fmt.Sprintf("Pool %q is online", pool.Name))
		}
		return requeueAfter(log, r.Interval), nil

	case err == nil:
		// The agent knows the pool's spec but reports no state yet.
		if !pool.DeletionTimestamp.IsZero() {
			log.Info("pool state unknown while terminating")
			return requeueAfter(log, r.Interval), nil
		}
		if perr := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
			s.PoolStatus = v1alpha1.PoolStatusUnknown
		}); perr != nil {
			return ctrl.Result{}, perr
		}
		return requeueAfter(log, r.Interval), nil

	case perrors.Is(err, perrors.KindNotFound):
		if !pool.DeletionTimestamp.IsZero() {
			// Being deleted anyway; nothing left to watch.
			return ctrl.Result{}, nil
		}
		emitWarning(r.Recorder, rctx, pool, ReasonNotfound,
			fmt.Sprintf("Pool %q was deleted outside the operator", pool.Name))
		if perr := r.markPoolNotFound(ctx, pool); perr != nil {
			return ctrl.Result{}, perr
		}
		return requeueAfter(log, notFoundBackoff), nil

	case perrors.Is(err, perrors.KindUnavailable), perrors.Is(err, perrors.KindDeadlineExceeded):
		emitWarning(r.Recorder, rctx, pool, ReasonUnreachable,
			fmt.Sprintf("Node %q unreachable while checking pool %q", pool.Spec.Node, pool.Name))
		if perr := r.markPoolNotFound(ctx, pool); perr != nil {
			return ctrl.Result{}, perr
		}
		return requeueAfter(log, notFoundBackoff), nil

	default:
		if perr := r.markPoolNotFound(ctx, pool); perr != nil {
			return ctrl.Result{}, perr
		}
		return requeueAfter(log, notFoundBackoff), nil
	}
}

// markPoolNotFound downgrades the observed status to Unknown without
// touching the declared lifecycle phase.
func (r *DiskPoolReconciler) markPoolNotFound(ctx context.Context, pool *v1alpha1.DiskPool) error {
	return r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
		s.PoolStatus = v1alpha1.PoolStatusUnknown
	})
}

// reconcileDelete tears the pool down on the data-plane side, then
// releases the finalizer and the inventory slot. A pool the agent no
// longer knows about deletes cleanly.
func (r *DiskPoolReconciler) reconcileDelete(ctx context.Context, req ctrl.Request, pool *v1alpha1.DiskPool, rctx *ResourceContext) (ctrl.Result, error) {
	ctx, log, done := tele.StartSpanWithLogger(ctx, "reconciler.diskpool.delete")
	defer done()

	if !hasFinalizer(pool) {
		r.Pools.Drop(req.String())
		return ctrl.Result{}, nil
	}

	node := types.NodeId(pool.Spec.Node)
	poolID := types.PoolId(pool.Name)

	if observed, err := r.DataPlane.GetNodePool(ctx, node, poolID); err == nil {
		if perr := r.patchStatus(ctx, pool, func(s *v1alpha1.DiskPoolStatus) {
			s.CrState = v1alpha1.CrStateTerminating
			setObserved(s, observed)
		}); perr != nil {
			return ctrl.Result{}, perr
		}
	}

	// DelNodePool treats 404 as success: either we destroy it now or
	// someone already did.
	if err := r.DataPlane.DelNodePool(ctx, node, poolID); err != nil {
		return ctrl.Result{}, err
	}
	emitNormal(r.Recorder, rctx, pool, ReasonDestroy,
		fmt.Sprintf("Destroyed pool %q on node %q", pool.Name, pool.Spec.Node))

	if removeFinalizer(pool) {
		if err := r.Update(ctx, pool); err != nil {
			log.Info("finalizer removal failed, retrying", "error", err.Error())
			return ctrl.Result{RequeueAfter: inventoryRetryBackoff}, nil
		}
	}
	metrics.PoolStatus.DeletePartialMatch(map[string]string{"name": pool.Name})
	r.Pools.Drop(req.String())
	return ctrl.Result{}, nil
}

// patchStatus applies mutate to pool.Status and patches the status
// subresource, keeping the in-memory object and the inventory's
// last-status mirror in sync.
func (r *DiskPoolReconciler) patchStatus(ctx context.Context, pool *v1alpha1.DiskPool, mutate func(*v1alpha1.DiskPoolStatus)) error {
	before := client.MergeFrom(pool.DeepCopy())
	mutate(&pool.Status)
	if err := r.Status().Patch(ctx, pool, before); err != nil {
		return errors.Wrap(err, "failed to patch DiskPool status")
	}
	r.Pools.Get(client.ObjectKeyFromObject(pool).String()).LastStatus = pool.Status
	recordStatusMetric(pool)
	return nil
}

// setObserved mirrors the data-plane's view of the pool onto the CR status.
func setObserved(s *v1alpha1.DiskPoolStatus, observed types.Pool) {
	s.PoolStatus = v1alpha1.PoolStatusPhase(observed.Status)
	s.Capacity = observed.Capacity
	s.Used = observed.Used
	s.Available = observed.FreeSpace()
}

func recordStatusMetric(pool *v1alpha1.DiskPool) {
	for _, phase := range []v1alpha1.PoolStatusPhase{
		v1alpha1.PoolStatusUnknown, v1alpha1.PoolStatusOnline,
		v1alpha1.PoolStatusDegraded, v1alpha1.PoolStatusFaulted,
	} {
		v := 0.0
		if pool.Status.PoolStatus == phase {
			v = 1.0
		}
		metrics.PoolStatus.WithLabelValues(pool.Name, string(phase)).Set(v)
	}
}
