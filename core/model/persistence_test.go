package model

import (
	"bytes"
	"path/filepath"
	"testing"
)

type samplePayload struct {
	Name  string
	Edges []float64
	Flag  bool
}

func TestSaveLoadFile(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "uncompressed"
		if compress {
			name = "compressed"
		}
		t.Run(name, func(t *testing.T) {
			in := samplePayload{Name: "m", Edges: []float64{1, 2.25, 4.5}, Flag: true}
			path := filepath.Join(t.TempDir(), "payload.gob")

			if err := SaveModel(&in, path, compress); err != nil {
				t.Fatalf("SaveModel failed: %v", err)
			}

			var out samplePayload
			if err := LoadModel(&out, path); err != nil {
				t.Fatalf("LoadModel failed: %v", err)
			}
			if out.Name != in.Name || out.Flag != in.Flag || len(out.Edges) != len(in.Edges) {
				t.Errorf("round trip mismatch: %+v vs %+v", out, in)
			}
			for i := range in.Edges {
				if out.Edges[i] != in.Edges[i] {
					t.Errorf("edge %d = %v, want %v", i, out.Edges[i], in.Edges[i])
				}
			}
		})
	}
}

func TestCompressedStreamIsSmallerAndDetected(t *testing.T) {
	in := samplePayload{Name: "m"}
	in.Edges = make([]float64, 1024) // compressible run of zeros

	var plain, packed bytes.Buffer
	if err := SaveModelToWriter(&in, &plain, false); err != nil {
		t.Fatalf("plain save failed: %v", err)
	}
	if err := SaveModelToWriter(&in, &packed, true); err != nil {
		t.Fatalf("compressed save failed: %v", err)
	}
	if packed.Len() >= plain.Len() {
		t.Errorf("compressed stream (%d) not smaller than plain (%d)", packed.Len(), plain.Len())
	}

	// The loader detects compression from the stream itself.
	var out samplePayload
	if err := LoadModelFromReader(&out, &packed); err != nil {
		t.Fatalf("load of compressed stream failed: %v", err)
	}
	if len(out.Edges) != 1024 {
		t.Errorf("round trip lost data: %d edges", len(out.Edges))
	}
}

func TestLoadTruncatedStream(t *testing.T) {
	var out samplePayload
	if err := LoadModelFromReader(&out, bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty stream")
	}
	if err := LoadModelFromReader(&out, bytes.NewReader([]byte{0x1f})); err == nil {
		t.Error("expected error for truncated stream")
	}
}

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator
	if e.IsFitted() {
		t.Error("new estimator must not be fitted")
	}
	e.SetFitted()
	if !e.IsFitted() {
		t.Error("estimator not fitted after SetFitted")
	}
	e.Reset()
	if e.IsFitted() {
		t.Error("estimator still fitted after Reset")
	}
}
