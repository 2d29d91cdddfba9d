package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Decode decodes a YAML or JSON declaration document. A stream of several
// YAML documents is merged in order.
func Decode(data []byte) (*Storage, error) {
	s := &Storage{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc Storage
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load: decode declarations: %w", err)
		}
		s.Merge(&doc)
	}
	return s, nil
}

// ReadFile reads and decodes a declaration file.
func ReadFile(path string) (*Storage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadFiles reads and decodes the given files concurrently and merges them
// in argument order.
func ReadFiles(ctx context.Context, paths ...string) (*Storage, error) {
	docs := make([]*Storage, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := ReadFile(path)
			if err != nil {
				return err
			}
			docs[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s := &Storage{}
	for _, doc := range docs {
		s.Merge(doc)
	}
	return s, nil
}

// Encode encodes the storage as a YAML document.
func (s *Storage) Encode() ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("load: encode declarations: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
