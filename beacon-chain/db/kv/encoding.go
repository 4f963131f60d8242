package kv

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
)

// encode and decode use gob rather than a hand-rolled SSZ codec: fastssz is
// still the hash-tree-root implementation every type carries (the
// consensus-critical piece other nodes must agree on byte-for-byte), but
// bolt's on-disk encoding is a local, node-private concern with no wire
// compatibility requirement, so it doesn't need SSZ's variable-length
// encoding rules reimplemented by hand.
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "could not gob-encode value")
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return errors.New("empty value")
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
