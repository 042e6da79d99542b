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

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sinhaashish/mayastor-control-plane/api/v1alpha1"
)

// listPageSize bounds a single page of the migration list.
const listPageSize = 100

// MigrateLegacyPools converts every MayastorPool to its equivalent
// DiskPool and deletes the source. It runs exactly once per process
// start, before the manager starts its watches.
//
// There is no same-kind schema upgrade to run alongside it: DiskPool has
// had exactly one schema version since this process's first release, so
// only the legacy-kind migration applies.
func MigrateLegacyPools(ctx context.Context, c client.Client, log logr.Logger) error {
	var cont string
	migrated := 0
	for {
		var page v1alpha1.MayastorPoolList
		opts := []client.ListOption{client.Limit(listPageSize)}
		if cont != "" {
			opts = append(opts, client.Continue(cont))
		}
		if err := c.List(ctx, &page, opts...); err != nil {
			return err
		}

		for i := range page.Items {
			legacy := &page.Items[i]
			target := legacy.AsDiskPool()

			if err := c.Create(ctx, target); err != nil && !apierrors.IsAlreadyExists(err) {
				return err
			}
			if err := c.Delete(ctx, legacy); err != nil && !apierrors.IsNotFound(err) {
				return err
			}
			migrated++
		}

		cont = page.Continue
		if cont == "" {
			break
		}
	}

	if migrated > 0 {
		log.Info("migrated legacy MayastorPool CRs to DiskPool", "count", migrated)
	}
	return nil
}
