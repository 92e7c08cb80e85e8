package scenefile

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"testing"

	"sketches/internal/scene"
)

func testScene(t *testing.T, n int) *scene.Scene {
	t.Helper()
	s, err := scene.Generate(scene.Params{
		Count:     n,
		Bounds:    scene.Region(800, 800),
		RadiusMin: 20,
		RadiusMax: 120,
		Alpha:     0.2,
		Stroke:    scene.Color{A: 0.125},
	}, scene.NewRand(11))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRoundTripSaveLoad(t *testing.T) {
	s := testScene(t, 500)
	for name, opts := range map[string]SaveOptions{
		"plain":      {},
		"compressed": {Compression: true},
		"encrypted":  {Compression: true, Password: "circles"},
	} {
		path := filepath.Join(t.TempDir(), name+Ext)
		if err := Save(path, s, opts); err != nil {
			t.Fatalf("%s: save failed: %v", name, err)
		}
		loaded, err := Load(path, LoadOptions{Password: opts.Password})
		if err != nil {
			t.Fatalf("%s: load failed: %v", name, err)
		}
		if loaded.Len() != s.Len() || loaded.Fingerprint() != s.Fingerprint() {
			t.Fatalf("%s: fingerprint mismatch: got %s want %s", name, loaded.Fingerprint(), s.Fingerprint())
		}
		if loaded.At(499).Stroke != s.At(499).Stroke {
			t.Fatalf("%s: stroke mismatch: %+v", name, loaded.At(499).Stroke)
		}
		info, err := Inspect(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Compressed != opts.Compression || info.Encrypted != (opts.Password != "") {
			t.Fatalf("%s: unexpected info %+v", name, info)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("%s: expected temp file to be renamed away", name)
		}
	}
}

func TestEmptyScene(t *testing.T) {
	empty, err := scene.FromCircles(nil)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := Encode(empty, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s, err := Decode(blob, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty scene, got %d", s.Len())
	}
}

func TestCompressionShrinksRepetitiveScenes(t *testing.T) {
	circles := make([]scene.Circle, 1000)
	for i := range circles {
		circles[i] = scene.Circle{X: 1, Y: 1, Radius: 1}
	}
	s, err := scene.FromCircles(circles)
	if err != nil {
		t.Fatal(err)
	}
	plain, _ := Encode(s, SaveOptions{})
	packed, _ := Encode(s, SaveOptions{Compression: true})
	if len(packed) >= len(plain) {
		t.Fatalf("expected compression to help, got %d >= %d", len(packed), len(plain))
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	blob := make([]byte, headerSize)
	copy(blob, "NOTASCENE!!")
	if _, err := Decode(blob, LoadOptions{}); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	blob, _ := Encode(testScene(t, 3), SaveOptions{})
	binary.LittleEndian.PutUint16(blob[len(Magic):], 9)
	if _, err := Decode(blob, LoadOptions{}); !errors.Is(err, ErrUnsupportedVer) {
		t.Fatalf("expected ErrUnsupportedVer, got %v", err)
	}
}

func TestLoadDetectsCorruption(t *testing.T) {
	blob, _ := Encode(testScene(t, 3), SaveOptions{})
	blob[headerSize+10] ^= 0xFF
	if _, err := Decode(blob, LoadOptions{}); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}

	blob, _ = Encode(testScene(t, 3), SaveOptions{})
	if _, err := Decode(blob[:len(blob)-1], LoadOptions{}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on truncation, got %v", err)
	}
}

func TestEncryptedNeedsPassword(t *testing.T) {
	blob, err := Encode(testScene(t, 3), SaveOptions{Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(blob, LoadOptions{}); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if _, err := Decode(blob, LoadOptions{Password: "wrong"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

// rawFile builds a well-formed file around hand-written circle values, so
// the checksum is valid whatever the values are.
func rawFile(t *testing.T, compress bool, circles ...[11]float32) []byte {
	t.Helper()
	body := binary.LittleEndian.AppendUint32(nil, uint32(len(circles)))
	for _, c := range circles {
		for _, v := range c {
			body = binary.LittleEndian.AppendUint32(body, math.Float32bits(v))
		}
	}
	payload := binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(body))
	return wrap(t, payload, compress)
}

func wrap(t *testing.T, payload []byte, compress bool) []byte {
	t.Helper()
	var flags uint16
	if compress {
		var err error
		if payload, err = compressBytes(payload); err != nil {
			t.Fatal(err)
		}
		flags |= flagCompressed
	}
	out := make([]byte, headerSize)
	copy(out, Magic)
	binary.LittleEndian.PutUint16(out[len(Magic):], VersionV1)
	binary.LittleEndian.PutUint16(out[len(Magic)+2:], flags)
	binary.LittleEndian.PutUint64(out[headerSize-8:], uint64(len(payload)))
	return append(out, payload...)
}

func TestDecodeRejectsUndrawableCircles(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	good := [11]float32{10, 10, 5, 0.5, 0.5, 0.5, 0.2, 0, 0, 0, 0.125}
	if _, err := Decode(rawFile(t, false, good), LoadOptions{}); err != nil {
		t.Fatalf("expected hand-built file to decode, got %v", err)
	}
	cases := map[string][11]float32{
		"negative radius": {10, 10, -5, 3, 0, 0, 0.2, 0, 0, 0, 0.125},
		"nan radius":      {10, 10, nan, 0.5, 0.5, 0.5, -1, 0, 0, 0, 0.125},
		"inf center":      {inf, 10, 5, 0.5, 0.5, 0.5, 0.2, 0, 0, 0, 0.125},
		"huge radius":     {10, 10, 1e20, 0.5, 0.5, 0.5, 0.2, 0, 0, 0, 0.125},
		"stroke channel":  {10, 10, 5, 0.5, 0.5, 0.5, 0.2, 0, 0, 0, 2},
	}
	for name, c := range cases {
		for _, compress := range []bool{false, true} {
			if _, err := Decode(rawFile(t, compress, good, c), LoadOptions{}); !errors.Is(err, ErrCorrupt) || !errors.Is(err, scene.ErrInvalidCircle) {
				t.Fatalf("%s (compressed %v): expected ErrCorrupt, got %v", name, compress, err)
			}
		}
	}
}

func TestDecodeLimitsInflatedPayload(t *testing.T) {
	blob := wrap(t, make([]byte, maxPayload+4096), true)
	if _, err := Decode(blob, LoadOptions{}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
