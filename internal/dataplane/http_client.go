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

package dataplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/sinhaashish/mayastor-control-plane/internal/metrics"
	"github.com/sinhaashish/mayastor-control-plane/internal/perrors"
	"github.com/sinhaashish/mayastor-control-plane/internal/tele"
	"github.com/sinhaashish/mayastor-control-plane/pkg/types"
)

// leveledLogger adapts a logr.Logger to retryablehttp's LeveledLogger
// interface, so the library's logging flows through the
// controller-runtime logging facade rather than a bespoke sink.
type leveledLogger struct {
	log logr.Logger
}

func (l leveledLogger) Error(msg string, kvs ...interface{}) { l.log.Error(fmt.Errorf(msg), msg, kvs...) }
func (l leveledLogger) Info(msg string, kvs ...interface{})  { l.log.V(1).Info(msg, kvs...) }
func (l leveledLogger) Debug(msg string, kvs ...interface{}) { l.log.V(2).Info(msg, kvs...) }
func (l leveledLogger) Warn(msg string, kvs ...interface{})  { l.log.Info(msg, kvs...) }

// HTTPClient is the go-retryablehttp-backed implementation of Client.
type HTTPClient struct {
	endpoint string
	client   *retryablehttp.Client
}

// NewHTTPClient builds an HTTPClient against endpoint, retrying each
// request up to retries times (at least once) and bounding every single
// attempt to requestTimeout.
func NewHTTPClient(endpoint string, requestTimeout time.Duration, retries int, log logr.Logger) *HTTPClient {
	rc := retryablehttp.NewClient()
	if retries < 1 {
		retries = 1
	}
	rc.RetryMax = retries
	rc.Logger = leveledLogger{log: log}
	rc.HTTPClient.Timeout = requestTimeout
	// Only retry on transport failures and 5xx/408; 4xx other than 408 is
	// a semantic response the caller classifies itself (422 already
	// exists, 404 not found), not a transient condition to retry away.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusServiceUnavailable {
			return true, nil
		}
		return resp.StatusCode >= 500, nil
	}
	return &HTTPClient{endpoint: endpoint, client: rc}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) (reterr error) {
	defer func() {
		outcome := "success"
		if reterr != nil {
			outcome = "error"
		}
		metrics.DataplaneRequestTotal.WithLabelValues(method, outcome).Inc()
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return perrors.Wrap(err, perrors.KindInternal, perrors.ResourceNode)
		}
		reader = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return perrors.Wrap(err, perrors.KindInternal, perrors.ResourceNode)
	}
	req.Header.Set("content-type", "application/json")
	if id := tele.CtxCorrID(ctx); id != "" {
		req.Header.Set(tele.CorrIDHeader, string(id))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return perrors.Wrap(err, perrors.KindUnavailable, perrors.ResourceNode)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return perrors.Wrap(err, perrors.KindUnavailable, perrors.ResourceNode)
	}

	if resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return perrors.Wrap(err, perrors.KindInternal, perrors.ResourceNode)
		}
	}
	return nil
}

// classifyStatus maps a remote status code onto the internal error
// taxonomy, so no HTTP status integer ever escapes this package.
func classifyStatus(code int, payload []byte) error {
	msg := string(payload)
	switch {
	case code == http.StatusNotFound:
		return perrors.New(perrors.KindNotFound, perrors.ResourceNode, map[string]interface{}{"body": msg})
	case code == http.StatusUnprocessableEntity:
		return perrors.New(perrors.KindAlreadyExists, perrors.ResourceNode, map[string]interface{}{"body": msg})
	case code == http.StatusRequestTimeout:
		return perrors.New(perrors.KindDeadlineExceeded, perrors.ResourceNode, map[string]interface{}{"body": msg})
	case code == http.StatusServiceUnavailable:
		return perrors.New(perrors.KindUnavailable, perrors.ResourceNode, map[string]interface{}{"body": msg})
	case code >= 500:
		return perrors.New(perrors.KindUnavailable, perrors.ResourceNode, map[string]interface{}{"body": msg})
	default:
		return perrors.New(perrors.KindInvalidArgument, perrors.ResourceNode, map[string]interface{}{"body": msg})
	}
}

func nodePoolPath(node types.NodeId, pool types.PoolId) string {
	return fmt.Sprintf("/nodes/%s/pools/%s", node, pool)
}

func (c *HTTPClient) PutNodePool(ctx context.Context, node types.NodeId, pool types.PoolId, disks []string, labels map[string]string) (types.Pool, error) {
	var out types.Pool
	err := c.do(ctx, http.MethodPut, nodePoolPath(node, pool), CreatePoolBody{Disks: disks, Labels: labels}, &out)
	return out, err
}

func (c *HTTPClient) DelNodePool(ctx context.Context, node types.NodeId, pool types.PoolId) error {
	err := c.do(ctx, http.MethodDelete, nodePoolPath(node, pool), nil, nil)
	if perrors.Is(err, perrors.KindNotFound) {
		return nil
	}
	return err
}

func (c *HTTPClient) GetNodePool(ctx context.Context, node types.NodeId, pool types.PoolId) (types.Pool, error) {
	var out types.Pool
	err := c.do(ctx, http.MethodGet, nodePoolPath(node, pool), nil, &out)
	return out, err
}

func (c *HTTPClient) GetNodeBlockDevices(ctx context.Context, node types.NodeId, all bool) ([]BlockDevice, error) {
	var out []BlockDevice
	path := fmt.Sprintf("/nodes/%s/block_devices?all=%t", node, all)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func replicaPath(node types.NodeId, pool types.PoolId, replica types.ReplicaId) string {
	return fmt.Sprintf("/nodes/%s/pools/%s/replicas/%s", node, pool, replica)
}

func (c *HTTPClient) PutPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId, size uint64, thin bool) (types.Replica, error) {
	var out types.Replica
	err := c.do(ctx, http.MethodPut, replicaPath(node, pool, replica), CreateReplicaBody{Size: size, Thin: thin}, &out)
	return out, err
}

func (c *HTTPClient) DelPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId) error {
	err := c.do(ctx, http.MethodDelete, replicaPath(node, pool, replica), nil, nil)
	if perrors.Is(err, perrors.KindNotFound) {
		return nil
	}
	return err
}

func (c *HTTPClient) GetPoolReplica(ctx context.Context, node types.NodeId, pool types.PoolId, replica types.ReplicaId) (types.Replica, error) {
	var out types.Replica
	err := c.do(ctx, http.MethodGet, replicaPath(node, pool, replica), nil, &out)
	return out, err
}

func nexusPath(node types.NodeId, nexus types.NexusId) string {
	return fmt.Sprintf("/nodes/%s/nexuses/%s", node, nexus)
}

func (c *HTTPClient) PutNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId, size uint64, children []types.ReplicaId) (types.Nexus, error) {
	var out types.Nexus
	childRefs := make([]string, len(children))
	for i, ch := range children {
		childRefs[i] = string(ch)
	}
	err := c.do(ctx, http.MethodPut, nexusPath(node, nexus), CreateNexusBody{Size: size, Children: childRefs}, &out)
	return out, err
}

func (c *HTTPClient) DelNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId) error {
	err := c.do(ctx, http.MethodDelete, nexusPath(node, nexus), nil, nil)
	if perrors.Is(err, perrors.KindNotFound) {
		return nil
	}
	return err
}

func (c *HTTPClient) GetNodeNexus(ctx context.Context, node types.NodeId, nexus types.NexusId) (types.Nexus, error) {
	var out types.Nexus
	err := c.do(ctx, http.MethodGet, nexusPath(node, nexus), nil, &out)
	return out, err
}

func snapshotPath(node types.NodeId, replica types.ReplicaId, snapshot types.SnapshotId) string {
	return fmt.Sprintf("/nodes/%s/replicas/%s/snapshots/%s", node, replica, snapshot)
}

func (c *HTTPClient) PutReplicaSnapshot(ctx context.Context, node types.NodeId, replica types.ReplicaId, snapshot types.SnapshotId) (types.Snapshot, error) {
	var out types.Snapshot
	err := c.do(ctx, http.MethodPut, snapshotPath(node, replica, snapshot), nil, &out)
	return out, err
}

func (c *HTTPClient) DelReplicaSnapshot(ctx context.Context, node types.NodeId, snapshot types.SnapshotId) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/nodes/%s/snapshots/%s", node, snapshot), nil, nil)
	if perrors.Is(err, perrors.KindNotFound) {
		return nil
	}
	return err
}

var _ Client = (*HTTPClient)(nil)
