package model

import (
	"bufio"
	"compress/gzip"
	"encoding/gob"
	"io"
	"os"

	"github.com/skater-ml/brlc/pkg/errors"
)

// SaveModel serializes a model to a file with encoding/gob. When compress
// is true the stream is gzip-compressed. Interface-typed fields inside the
// model must have their concrete types registered with gob.Register.
func SaveModel(model interface{}, path string, compress bool) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create model file")
	}
	defer file.Close()

	return SaveModelToWriter(model, file, compress)
}

// LoadModel deserializes a model from a file written by SaveModel. The
// compression mode is detected from the stream, so callers do not need to
// remember whether the file was saved compressed.
func LoadModel(model interface{}, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter serializes a model to w, optionally gzip-compressed.
func SaveModelToWriter(model interface{}, w io.Writer, compress bool) error {
	if compress {
		zw := gzip.NewWriter(w)
		if err := gob.NewEncoder(zw).Encode(model); err != nil {
			zw.Close()
			return errors.Wrap(err, "failed to encode model")
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "failed to flush compressed model")
		}
		return nil
	}
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader deserializes a model from r, transparently handling
// gzip-compressed streams by sniffing the two-byte gzip magic header.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return errors.Wrap(err, "failed to read model stream")
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return errors.Wrap(err, "failed to open compressed model stream")
		}
		defer zr.Close()
		src = zr
	}
	if err := gob.NewDecoder(src).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
