// Copyright (C) 2026 Columnstore, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package distributed

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// jsonCodec implements encoding.Codec over plain JSON so this control
// plane can exercise google.golang.org/grpc's server/client/transport
// machinery (service registration, streaming-free unary calls,
// interceptors, connection pooling) without a protoc code-generation
// step, which this environment can't run. The request/response types
// below are ordinary Go structs rather than generated .pb.go stubs;
// google.golang.org/protobuf is consequently not needed anywhere in
// this tree (documented in DESIGN.md).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)     { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ClusterStatusRequest asks a control-plane node to report the health
// of one named cluster.
type ClusterStatusRequest struct {
	ClusterName string
}

// ReplicaStatus is one replica's last-observed health.
type ReplicaStatus struct {
	Addr    string
	Healthy bool
}

// ShardStatus is one shard's replica health set.
type ShardStatus struct {
	Name     string
	Replicas []ReplicaStatus
}

// ClusterStatusResponse reports every shard's health for the requested
// cluster.
type ClusterStatusResponse struct {
	Shards []ShardStatus
}

// ControlPlane is the gRPC service implementation: a thin read-only view
// over an in-memory cluster health table, the "control-plane service"
// SPEC_FULL.md's §4.G addition names for cluster introspection
// (distinct from the data-plane wire protocol connections
// RemoteBlockInputStream opens per query).
type ControlPlane struct {
	Health func(clusterName string) (ClusterStatusResponse, error)
}

func (c *ControlPlane) clusterStatus(ctx context.Context, req *ClusterStatusRequest) (*ClusterStatusResponse, error) {
	resp, err := c.Health(req.ClusterName)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// controlPlaneServiceDesc is the hand-written equivalent of a protoc
// -generated *_grpc.pb.go's ServiceDesc: it wires one unary method,
// ClusterStatus, onto whatever concrete *ControlPlane is registered.
var controlPlaneServiceDesc = grpc.ServiceDesc{
	ServiceName: "columnstore.distributed.ControlPlane",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ClusterStatus",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				req := new(ClusterStatusRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				cp := srv.(*ControlPlane)
				if interceptor == nil {
					return cp.clusterStatus(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/columnstore.distributed.ControlPlane/ClusterStatus"}
				handler := func(ctx context.Context, req any) (any, error) {
					return cp.clusterStatus(ctx, req.(*ClusterStatusRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "distributed/controlplane.go",
}

// RegisterControlPlane registers cp on an existing *grpc.Server, the
// same role a generated RegisterControlPlaneServer function would play.
func RegisterControlPlane(s *grpc.Server, cp *ControlPlane) {
	s.RegisterService(&controlPlaneServiceDesc, cp)
}

// ControlPlaneClient calls the ControlPlane service over an existing
// *grpc.ClientConn, using the json codec negotiated via
// grpc.CallContentSubtype instead of a generated client stub.
type ControlPlaneClient struct {
	cc *grpc.ClientConn
}

// NewControlPlaneClient wraps an established connection.
func NewControlPlaneClient(cc *grpc.ClientConn) *ControlPlaneClient {
	return &ControlPlaneClient{cc: cc}
}

// ClusterStatus calls the remote ClusterStatus RPC.
func (c *ControlPlaneClient) ClusterStatus(ctx context.Context, clusterName string) (*ClusterStatusResponse, error) {
	req := &ClusterStatusRequest{ClusterName: clusterName}
	resp := new(ClusterStatusResponse)
	err := c.cc.Invoke(ctx, "/columnstore.distributed.ControlPlane/ClusterStatus", req, resp, grpc.CallContentSubtype(jsonCodec{}.Name()))
	if err != nil {
		return nil, err
	}
	return resp, nil
}
