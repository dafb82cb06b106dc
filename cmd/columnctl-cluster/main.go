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

// Command columnctl-cluster is the cluster-admin CLI: it talks to a
// node's control-plane gRPC service to report shard/replica health and
// can parse a cluster-topology file on its own, without dialing
// anything. Its command tree follows cmd/warren's cluster subcommand
// group -- a root command with persistent flags and a nested RunE per
// operation -- since this is the multi-node admin surface, distinct
// from columnctl's single-connection wire-protocol client.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/columnstore/columnstore/distributed"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "columnctl-cluster: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "columnctl-cluster",
	Short: "Columnstore cluster admin tool",
}

func init() {
	rootCmd.PersistentFlags().String("addr", "127.0.0.1:9100", "control-plane gRPC address")
	rootCmd.AddCommand(clusterCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Inspect distributed-engine cluster topology and health",
}

func init() {
	clusterCmd.AddCommand(clusterStatusCmd)
	clusterCmd.AddCommand(clusterTopologyCmd)
	clusterStatusCmd.Flags().String("cluster", "", "cluster name, as named in the topology file")
	clusterStatusCmd.MarkFlagRequired("cluster")
}

var clusterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report shard and replica health for a cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		clusterName, _ := cmd.Flags().GetString("cluster")
		return runStatus(addr, clusterName)
	},
}

var clusterTopologyCmd = &cobra.Command{
	Use:   "topology <file>",
	Short: "Print the clusters defined by a topology file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTopology(args[0])
	},
}

func runStatus(addr, clusterName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cc, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer cc.Close()

	resp, err := distributed.NewControlPlaneClient(cc).ClusterStatus(ctx, clusterName)
	if err != nil {
		return fmt.Errorf("cluster status: %w", err)
	}

	for _, shard := range resp.Shards {
		fmt.Printf("shard %s:\n", shard.Name)
		for _, r := range shard.Replicas {
			state := "down"
			if r.Healthy {
				state = "up"
			}
			fmt.Printf("  %-22s %s\n", r.Addr, state)
		}
	}
	return nil
}

func runTopology(path string) error {
	clusters, err := distributed.LoadTopology(path)
	if err != nil {
		return err
	}
	for name, c := range clusters {
		fmt.Printf("cluster %s:\n", name)
		for _, shard := range c.Shards {
			fmt.Printf("  shard %s: %v\n", shard.Name, shard.Replicas)
		}
	}
	return nil
}
