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

package mergetree

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// checksumFile records one file's size and content hash inside a part's
// checksums.txt, the per-part manifest spec §6 names as part of the
// on-disk part layout.
type checksumFile struct {
	Name string
	Size int64
	Hash [32]byte
}

// WriteChecksums hashes every regular file directly inside dir (a part
// directory -- .bin/.mrk files, columns.txt, primary.idx) with
// blake2b-256, the same hash function the teacher uses to name
// content-addressed blobs, and writes the result as checksums.txt in
// the same directory. This is what lets a reader detect a part that was
// only partially written before a crash: a part missing or mismatching
// its own checksums.txt entry is corrupt, never half-valid.
func WriteChecksums(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("mergetree: read part dir %q: %w", dir, err)
	}

	var files []checksumFile
	for _, e := range entries {
		if e.IsDir() || e.Name() == "checksums.txt" {
			continue
		}
		sum, size, err := hashFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		files = append(files, checksumFile{Name: e.Name(), Size: size, Hash: sum})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	out, err := os.Create(filepath.Join(dir, "checksums.txt"))
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, f.Size, hex.EncodeToString(f.Hash[:])); err != nil {
			return err
		}
	}
	return w.Flush()
}

// VerifyChecksums re-hashes every file named in dir's checksums.txt and
// reports a mismatch as an error, the read-time counterpart to
// WriteChecksums -- the check a reader runs before trusting a part it
// didn't itself just write.
func VerifyChecksums(dir string) error {
	entries, err := readChecksumsFile(filepath.Join(dir, "checksums.txt"))
	if err != nil {
		return err
	}
	for _, want := range entries {
		got, size, err := hashFile(filepath.Join(dir, want.Name))
		if err != nil {
			return err
		}
		if size != want.Size || got != want.Hash {
			return fmt.Errorf("mergetree: checksum mismatch for %q in %q", want.Name, dir)
		}
	}
	return nil
}

func hashFile(path string) (sum [32]byte, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return sum, 0, err
	}
	defer f.Close()
	h, err := blake2b.New256(nil)
	if err != nil {
		return sum, 0, err
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return sum, 0, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, n, nil
}

func readChecksumsFile(path string) ([]checksumFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mergetree: read checksums %q: %w", path, err)
	}
	defer f.Close()

	var out []checksumFile
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		var name, hexSum string
		var size int64
		if _, err := fmt.Sscanf(line, "%s\t%d\t%s", &name, &size, &hexSum); err != nil {
			return nil, fmt.Errorf("mergetree: bad checksums.txt line %q: %w", line, err)
		}
		raw, err := hex.DecodeString(hexSum)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("mergetree: bad checksum hex in %q", line)
		}
		var sum [32]byte
		copy(sum[:], raw)
		out = append(out, checksumFile{Name: name, Size: size, Hash: sum})
	}
	return out, sc.Err()
}
