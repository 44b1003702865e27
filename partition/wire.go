package partition

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// encodeWire and decodeWire serialize the small, ad hoc Go values passed
// between hosts over a transport.Transport. None of the corpus's
// examples import a wire-format library for this kind of internal,
// process-to-process control payload (raja-aiml-flowgraph's channel
// package leaves Payload as interface{} and never says how it is
// encoded), so this uses encoding/gob: it is the standard library's
// answer to exactly this problem and needs no schema to keep in sync
// across hosts, unlike the fixed-layout META/vertexID-map files in
// meta.go, which follow spec.md's mandated byte layout instead.
func encodeWire(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("partition: encoding wire payload: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeWire(data []byte, v interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("partition: decoding wire payload: %w", err)
	}
	return nil
}
