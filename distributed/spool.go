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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/columnstore/columnstore/fsutil"
	"github.com/columnstore/columnstore/wire"
)

// Spool buffers an INSERT block to <table_path>/<shard_name>/<n>.bin
// when its target shard is unreachable, instead of failing the insert
// outright (spec §4.G: "an unreachable shard spools its pending blocks
// to disk rather than blocking or dropping the insert").
type Spool struct {
	TablePath string

	mu      sync.Mutex
	counter map[string]int64
}

// NewSpool creates a Spool rooted at tablePath.
func NewSpool(tablePath string) *Spool {
	return &Spool{TablePath: tablePath, counter: make(map[string]int64)}
}

func (s *Spool) shardDir(shardName string) string {
	return filepath.Join(s.TablePath, shardName)
}

// Write persists the already-encoded wire Data payload for shardName,
// returning the spooled file's path.
func (s *Spool) Write(shardName string, encodedBlock []byte) (string, error) {
	dir := s.shardDir(shardName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("distributed: spool mkdir %s: %w", dir, err)
	}
	s.mu.Lock()
	n := s.counter[shardName]
	s.counter[shardName] = n + 1
	s.mu.Unlock()

	path := filepath.Join(dir, fmt.Sprintf("%020d.bin", n))
	if err := os.WriteFile(path, encodedBlock, 0o644); err != nil {
		return "", fmt.Errorf("distributed: spool write %s: %w", path, err)
	}
	logger.Warn().Str("shard", shardName).Str("path", path).Msg("spooled insert block for unreachable shard")
	return path, nil
}

// Pending lists a shard's spooled .bin files in creation order.
func (s *Spool) Pending(shardName string) ([]string, error) {
	dir := s.shardDir(shardName)
	var names []string
	err := fsutil.VisitDir(os.DirFS(dir), ".", "", "*.bin", func(d fsutil.DirEntry) error {
		if !d.IsDir() {
			names = append(names, filepath.Join(dir, d.Name()))
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) || isPathError(err) {
			return nil, nil
		}
		return nil, err
	}
	return names, nil
}

func isPathError(err error) bool {
	_, ok := err.(*fs.PathError)
	return ok
}

// Monitor periodically scans every shard directory under tablePath and
// calls flush with each pending spooled file's bytes; flush is expected
// to retry sending the block to its shard and, on success, delete the
// file -- the directory-monitor thread spec §4.G's spool design
// describes as running "independently of the INSERT path that created
// the spool files".
func (s *Spool) Monitor(interval time.Duration, shardNames []string, flush func(shardName, path string, payload []byte) error) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.sweep(shardNames, flush)
			}
		}
	}()
	return func() { close(done) }
}

func (s *Spool) sweep(shardNames []string, flush func(shardName, path string, payload []byte) error) {
	for _, shard := range shardNames {
		pending, err := s.Pending(shard)
		if err != nil {
			logger.Error().Err(err).Str("shard", shard).Msg("spool monitor failed to list pending files")
			continue
		}
		for _, path := range pending {
			payload, err := os.ReadFile(path)
			if err != nil {
				logger.Error().Err(err).Str("path", path).Msg("spool monitor failed to read pending file")
				continue
			}
			if err := flush(shard, path, payload); err != nil {
				logger.Warn().Err(err).Str("shard", shard).Str("path", path).Msg("spool flush retry failed, will retry next tick")
				continue
			}
			if err := os.Remove(path); err != nil {
				logger.Error().Err(err).Str("path", path).Msg("spool monitor failed to remove flushed file")
			}
		}
	}
}

// FlushToShard is a convenience flush function wiring a Spool.Monitor
// directly to a live shard connection: it validates the spooled payload
// decodes cleanly, then resends it verbatim as a Data packet.
func FlushToShard(addr string) func(shardName, path string, payload []byte) error {
	return func(shardName, path string, payload []byte) error {
		if _, err := wire.ReadData(payload, nil); err != nil {
			return fmt.Errorf("distributed: spooled block %s is corrupt: %w", path, err)
		}
		conn, err := wire.Dial(addr)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.WriteRawData(payload)
	}
}
