package partition_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/exascience/amorphous/foreach/stats"
	"github.com/exascience/amorphous/partition"
	"github.com/exascience/amorphous/partition/transport"
)

// writeMetaFixture writes a META sidecar file for one host, in the
// exact byte layout ReadMetaFile expects: an 8-byte LE entry count
// followed by that many 24-byte LE (global_id, local_id, owner_id)
// records.
func writeMetaFixture(path string, records []partition.MetaRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint64(len(records))); err != nil {
		return err
	}
	for _, r := range records {
		for _, v := range []uint64{r.GlobalID, r.LocalID, r.OwnerID} {
			if err := binary.Write(f, binary.LittleEndian, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeVertexIDMapFixture writes a flat LE int32 vertexID map file
// covering every global vertex.
func writeVertexIDMapFixture(path string, ownerPerGID []int32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, v := range ownerPerGID {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// Example demonstrates partition.New (C8-C13) driving a single-host
// build entirely from on-disk META and vertexID map files, the way a
// real host process would: a MetaReader is the only source of the
// coarse GIDToHost table and the vertexIDMap.
func Example() {
	dir, err := os.MkdirTemp("", "partition-example-*")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	base := filepath.Join(dir, "toy")
	vidPath := base + ".vertexIDMap"

	if err := writeMetaFixture(partition.MetaFileName(base, 0, 1), []partition.MetaRecord{
		{GlobalID: 0, LocalID: 0, OwnerID: 0},
		{GlobalID: 1, LocalID: 1, OwnerID: 0},
		{GlobalID: 2, LocalID: 2, OwnerID: 0},
		{GlobalID: 3, LocalID: 3, OwnerID: 0},
	}); err != nil {
		fmt.Println(err)
		return
	}
	if err := writeVertexIDMapFixture(vidPath, []int32{0, 0, 0, 0}); err != nil {
		fmt.Println(err)
		return
	}

	reader := partition.FileMetaReader{Base: base, VertexIDMapPath: vidPath}
	edges := listGraph{0: {1}, 1: {2}, 2: {3}}
	tr := transport.NewFabric(1).Endpoint(0)

	g, err := partition.New(0, 1, 4, 3, reader, edges, tr, stats.NewReporter())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(g.NumOwned, g.NumEdges)

	// Output:
	// 4 3
}

// TestNew_MissingMetaFile checks the file-missing error policy from
// spec.md §7: partition.New returns a wrapped error identifying which
// host's META file could not be opened, rather than panicking. A real
// host process is expected to report this to stderr and abort — New
// itself only ever returns the error, leaving that policy to the
// caller (e.g. a cmd/ main that does `if err != nil { log.Fatal(err) }`).
func TestNew_MissingMetaFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "missing")
	reader := partition.FileMetaReader{Base: base, VertexIDMapPath: base + ".vertexIDMap"}

	_, err := partition.New(0, 2, 4, 4, reader, listGraph{}, transport.NewFabric(2).Endpoint(0), stats.NewReporter())
	if err == nil {
		t.Fatal("New with a missing META file returned no error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("New's error does not wrap a not-exist error: %v", err)
	}
}

// TestNew_MissingVertexIDMap checks the same policy for a missing
// vertexID map file, once the META files themselves are valid.
func TestNew_MissingVertexIDMap(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "toy")
	if err := writeMetaFixture(partition.MetaFileName(base, 0, 1), []partition.MetaRecord{
		{GlobalID: 0, LocalID: 0, OwnerID: 0},
	}); err != nil {
		t.Fatal(err)
	}
	reader := partition.FileMetaReader{Base: base, VertexIDMapPath: base + ".vertexIDMap"}

	_, err := partition.New(0, 1, 1, 0, reader, listGraph{}, transport.NewFabric(1).Endpoint(0), stats.NewReporter())
	if err == nil {
		t.Fatal("New with a missing vertexID map file returned no error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("New's error does not wrap a not-exist error: %v", err)
	}
}
