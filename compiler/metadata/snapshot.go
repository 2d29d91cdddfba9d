package metadata

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the version of the snapshot encoding.
const SnapshotVersion = 1

// snapshot has the fields of Graph without its methods.
type snapshot Graph

type envelope struct {
	Version int       `msgpack:"version"`
	Graph   *snapshot `msgpack:"graph"`
}

// MarshalMsgpack encodes the graph as a versioned msgpack snapshot.
// Go types of entities, lazy accessors and the lookup maps of entities
// are not encoded.
func (g *Graph) MarshalMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(envelope{Version: SnapshotVersion, Graph: (*snapshot)(g)}); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack decodes a snapshot produced by MarshalMsgpack.
func (g *Graph) UnmarshalMsgpack(data []byte) error {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version != SnapshotVersion {
		return fmt.Errorf("decode snapshot: unsupported version %d", env.Version)
	}
	if env.Graph == nil {
		return fmt.Errorf("decode snapshot: missing graph")
	}
	*g = Graph(*env.Graph)
	for _, e := range g.Entities {
		g.indexEntity(e)
	}
	return nil
}

// UnmarshalSnapshot decodes a graph snapshot.
func UnmarshalSnapshot(data []byte) (*Graph, error) {
	g := &Graph{}
	if err := g.UnmarshalMsgpack(data); err != nil {
		return nil, err
	}
	return g, nil
}
