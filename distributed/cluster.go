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

// Package distributed implements the Distributed storage engine (spec
// §4.G): a view over a remote database/table that fans a query out
// across shards, optionally load-balancing each shard's replicas, and
// streams partial or complete results back to the caller over the wire
// protocol.
package distributed

import (
	"fmt"
	"math/rand"
	"os"

	"sigs.k8s.io/yaml"
)

// LoadBalancing picks which replica of a shard serves a given query,
// mirroring the three policies ClickHouse's Distributed engine exposes.
type LoadBalancing int

const (
	// Random picks a uniformly random replica per query.
	Random LoadBalancing = iota
	// InOrder always prefers the first live replica, falling back to the
	// next on failure -- useful when one replica is known-closest.
	InOrder
	// NearestHostname picks the replica whose advertised hostname shares
	// the longest prefix with this node's own hostname, a cheap proxy
	// for "probably in the same rack".
	NearestHostname
)

// Shard is one partition of the distributed table: a set of replica
// addresses, any of which can answer for this shard.
type Shard struct {
	Name     string   `json:"name"`
	Replicas []string `json:"replicas"`
}

// Cluster is the named group of shards a Distributed table fans queries
// out across, the unit named by a `cluster` storage parameter.
type Cluster struct {
	Name   string  `json:"name"`
	Shards []Shard `json:"shards"`
}

// topologyFile is the on-disk shape of a cluster-topology config: a
// list of named clusters, the YAML analogue of ClickHouse's
// <remote_servers> XML config section.
type topologyFile struct {
	Clusters []Cluster `json:"clusters"`
}

// LoadTopology reads a YAML cluster-topology file (same shape whether
// written as YAML or JSON, since sigs.k8s.io/yaml converts through
// JSON tags) and returns its clusters keyed by name.
func LoadTopology(path string) (map[string]Cluster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("distributed: read topology %q: %w", path, err)
	}
	var tf topologyFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("distributed: parse topology %q: %w", path, err)
	}
	byName := make(map[string]Cluster, len(tf.Clusters))
	for _, c := range tf.Clusters {
		byName[c.Name] = c
	}
	return byName, nil
}

// PickReplica selects one replica address from shard according to
// policy. selfHostname is only consulted by NearestHostname.
func PickReplica(shard Shard, policy LoadBalancing, selfHostname string) (string, error) {
	if len(shard.Replicas) == 0 {
		return "", fmt.Errorf("distributed: shard %q has no live replicas", shard.Name)
	}
	switch policy {
	case Random:
		return shard.Replicas[rand.Intn(len(shard.Replicas))], nil
	case NearestHostname:
		best, bestLen := shard.Replicas[0], commonPrefixLen(shard.Replicas[0], selfHostname)
		for _, r := range shard.Replicas[1:] {
			if l := commonPrefixLen(r, selfHostname); l > bestLen {
				best, bestLen = r, l
			}
		}
		return best, nil
	default: // InOrder
		return shard.Replicas[0], nil
	}
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
