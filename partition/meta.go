package partition

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// MetaRecord is one (globalID, localID, ownerID) triple as read from a
// META sidecar file.
type MetaRecord struct {
	GlobalID uint64
	LocalID  uint64
	OwnerID  uint64
}

const metaRecordSize = 24 // three 8-byte little-endian uints

// MetaReader abstracts over where partition metadata comes from: a
// sidecar file (ReadMetaFile/ReadVertexIDMap below) or a database
// (partition/store.PostgresReader). partition.New consumes this
// interface and does not care which backend produced it.
type MetaReader interface {
	ReadMeta(host, numHosts int) ([]MetaRecord, error)
	ReadVertexIDMap(lo, hi uint64) ([]int32, error)
}

// MetaFileName returns the sidecar file name for host among numHosts
// hosts, given base (the graph's base path without extension):
// "<base>.META.<host>.OF.<numHosts>".
func MetaFileName(base string, host, numHosts int) string {
	return fmt.Sprintf("%s.META.%d.OF.%d", base, host, numHosts)
}

// ReadMetaFile reads a META sidecar file: an 8-byte little-endian entry
// count followed by that many 24-byte little-endian (global_id,
// local_id, owner_id) records.
func ReadMetaFile(path string) ([]MetaRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("partition: opening META file %s: %w", path, err)
	}
	defer f.Close()

	var count uint64
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("partition: reading META header of %s: %w", path, err)
	}

	buf := make([]byte, metaRecordSize)
	records := make([]MetaRecord, count)
	for i := range records {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("partition: reading META record %d of %s: %w", i, path, err)
		}
		records[i] = MetaRecord{
			GlobalID: binary.LittleEndian.Uint64(buf[0:8]),
			LocalID:  binary.LittleEndian.Uint64(buf[8:16]),
			OwnerID:  binary.LittleEndian.Uint64(buf[16:24]),
		}
	}
	return records, nil
}

// ReadVertexIDMap reads the flat 32-bit-signed-integer vertexID map file
// at path, returning entries [lo, hi) (byte offsets lo*4 .. hi*4).
func ReadVertexIDMap(path string, lo, hi uint64) ([]int32, error) {
	if hi < lo {
		panic(fmt.Sprintf("partition: invalid vertexIDMap range [%d, %d)", lo, hi))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("partition: opening vertexID map %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(lo)*4, io.SeekStart); err != nil {
		return nil, fmt.Errorf("partition: seeking vertexID map %s: %w", path, err)
	}
	n := hi - lo
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("partition: reading vertexID map %s[%d:%d]: %w", path, lo, hi, err)
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return out, nil
}

// FileMetaReader is the default MetaReader, backed by sidecar files
// under Base.
type FileMetaReader struct {
	Base            string
	VertexIDMapPath string
}

// ReadMeta implements MetaReader.
func (r FileMetaReader) ReadMeta(host, numHosts int) ([]MetaRecord, error) {
	return ReadMetaFile(MetaFileName(r.Base, host, numHosts))
}

// ReadVertexIDMap implements MetaReader.
func (r FileMetaReader) ReadVertexIDMap(lo, hi uint64) ([]int32, error) {
	return ReadVertexIDMap(r.VertexIDMapPath, lo, hi)
}
