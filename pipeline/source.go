package pipeline

import (
	"context"
	"reflect"
)

/*
A Source represents an object that can generate data batches for
pipelines.
*/
type Source interface {
	// Err returns an error value or nil
	Err() error

	// Prepare receives a pipeline context and informs the pipeline what
	// the total expected size of all data batches is. The return value
	// is -1 if the total size is unknown or difficult to determine.
	Prepare(ctx context.Context) (size int)

	// Fetch gets a data batch of the requested size from the source.
	// It returns the size of the data batch that it was actually able
	// to fetch. It returns 0 if there is no more data to be fetched
	// from the source; the pipeline will then make no further attempts
	// to fetch more elements.
	Fetch(size int) (fetched int)

	// Data returns the last fetched data batch.
	Data() interface{}
}

type sliceSource struct {
	value       reflect.Value
	index, size int
	data        interface{}
}

func newSliceSource(value reflect.Value) *sliceSource {
	return &sliceSource{value: value, size: value.Len()}
}

func (src *sliceSource) Err() error {
	return nil
}

func (src *sliceSource) Prepare(_ context.Context) int {
	return src.size
}

func (src *sliceSource) Fetch(n int) (fetched int) {
	switch {
	case src.index >= src.size:
		src.data = nil
	case (src.index + n) > src.size:
		src.data = src.value.Slice(src.index, src.size).Interface()
		fetched = src.size - src.index
		src.index = src.size
	default:
		src.data = src.value.Slice(src.index, src.index+n).Interface()
		src.index += n
		fetched = n
	}
	return
}

func (src *sliceSource) Data() interface{} {
	return src.data
}

// reflectSource only ever sees a []uint64 of coarse-range GIDs here
// (partition.DistributeEdges's Source(gids) call); array/string are kept
// since reflect.Slice's sibling kinds cost nothing extra to support, but
// the teacher's channel and bufio.Scanner sources have no edge-cut-partition
// caller and were dropped.
func reflectSource(source interface{}) Source {
	switch value := reflect.ValueOf(source); value.Kind() {
	case reflect.Array, reflect.Slice, reflect.String:
		return newSliceSource(value)
	default:
		panic("A default pipeline source is not of kind Array, Slice, or String.")
	}
}
