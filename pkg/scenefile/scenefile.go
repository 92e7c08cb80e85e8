// Package scenefile stores a generated scene so it can be replayed later.
//
// A file is a fixed header followed by the payload. The payload is the circle
// table with a CRC32 trailer, optionally zlib-compressed and then sealed with
// AES-GCM under a PBKDF2 key derived from a password.
package scenefile

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"sketches/internal/scene"

	"golang.org/x/crypto/pbkdf2"
)

const (
	Magic     = "SKETCHSCENE"
	VersionV1 = uint16(1)
	Ext       = ".scene"

	flagCompressed = uint16(1 << 0)
	flagEncrypted  = uint16(1 << 1)

	saltSize   = 16
	nonceSize  = 12
	headerSize = len(Magic) + 2 + 2 + saltSize + nonceSize + 8

	// x, y, radius, fill rgba, stroke rgba
	circleSize    = 4 * (3 + 4 + 4)
	maxCircles    = 1 << 20
	maxPayload    = 4 + maxCircles*circleSize + 4
	kdfIterations = 200000
)

var (
	ErrInvalidMagic     = errors.New("scenefile: invalid magic")
	ErrUnsupportedVer   = errors.New("scenefile: unsupported version")
	ErrCorrupt          = errors.New("scenefile: corrupt payload")
	ErrChecksum         = errors.New("scenefile: checksum mismatch")
	ErrPasswordRequired = errors.New("scenefile: password required")
	ErrInvalidPassword  = errors.New("scenefile: invalid password")
)

type SaveOptions struct {
	Compression bool
	// Password enables encryption when non-empty.
	Password string
}

type LoadOptions struct {
	Password string
}

type Info struct {
	Version    uint16
	Compressed bool
	Encrypted  bool
	PayloadLen uint64
}

// Save writes s to path through a temporary file so a failed write never
// leaves a truncated scene behind.
func Save(path string, s *scene.Scene, opts SaveOptions) error {
	blob, err := Encode(s, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Load(path string, opts LoadOptions) (*scene.Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b, opts)
}

func Inspect(path string) (Info, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}
	return inspectBytes(b)
}

func Encode(s *scene.Scene, opts SaveOptions) ([]byte, error) {
	if s.Len() > maxCircles {
		return nil, fmt.Errorf("%w: %d circles", ErrCorrupt, s.Len())
	}
	payload := encodeCircles(s)

	var flags uint16
	var err error
	if opts.Compression {
		flags |= flagCompressed
		payload, err = compressBytes(payload)
		if err != nil {
			return nil, err
		}
	}

	salt := make([]byte, saltSize)
	nonce := make([]byte, nonceSize)
	if strings.TrimSpace(opts.Password) != "" {
		flags |= flagEncrypted
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, err
		}
		gcm, err := newGCM(opts.Password, salt)
		if err != nil {
			return nil, err
		}
		payload = gcm.Seal(nil, nonce, payload, nil)
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	off := copy(out, Magic)
	binary.LittleEndian.PutUint16(out[off:], VersionV1)
	binary.LittleEndian.PutUint16(out[off+2:], flags)
	off += 4
	off += copy(out[off:], salt)
	off += copy(out[off:], nonce)
	binary.LittleEndian.PutUint64(out[off:], uint64(len(payload)))
	return append(out, payload...), nil
}

func Decode(b []byte, opts LoadOptions) (*scene.Scene, error) {
	info, err := inspectBytes(b)
	if err != nil {
		return nil, err
	}
	if uint64(len(b)-headerSize) != info.PayloadLen {
		return nil, fmt.Errorf("%w: payload length", ErrCorrupt)
	}
	off := len(Magic) + 4
	salt := b[off : off+saltSize]
	nonce := b[off+saltSize : off+saltSize+nonceSize]
	payload := append([]byte(nil), b[headerSize:]...)

	if info.Encrypted {
		if strings.TrimSpace(opts.Password) == "" {
			return nil, ErrPasswordRequired
		}
		gcm, err := newGCM(opts.Password, salt)
		if err != nil {
			return nil, err
		}
		payload, err = gcm.Open(nil, nonce, payload, nil)
		if err != nil {
			return nil, ErrInvalidPassword
		}
	}
	if info.Compressed {
		payload, err = decompressBytes(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}
	return decodeCircles(payload)
}

func inspectBytes(b []byte) (Info, error) {
	if len(b) < len(Magic) || string(b[:len(Magic)]) != Magic {
		return Info{}, ErrInvalidMagic
	}
	if len(b) < headerSize {
		return Info{}, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	off := len(Magic)
	version := binary.LittleEndian.Uint16(b[off:])
	if version != VersionV1 {
		return Info{}, fmt.Errorf("%w: %d", ErrUnsupportedVer, version)
	}
	flags := binary.LittleEndian.Uint16(b[off+2:])
	return Info{
		Version:    version,
		Compressed: flags&flagCompressed != 0,
		Encrypted:  flags&flagEncrypted != 0,
		PayloadLen: binary.LittleEndian.Uint64(b[headerSize-8:]),
	}, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encodeCircles(s *scene.Scene) []byte {
	out := make([]byte, 0, 4+s.Len()*circleSize+4)
	out = binary.LittleEndian.AppendUint32(out, uint32(s.Len()))
	for _, c := range s.All() {
		for _, v := range [...]float32{
			c.X, c.Y, c.Radius,
			c.Fill.R, c.Fill.G, c.Fill.B, c.Fill.A,
			c.Stroke.R, c.Stroke.G, c.Stroke.B, c.Stroke.A,
		} {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out))
}

func decodeCircles(b []byte) (*scene.Scene, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: short payload", ErrCorrupt)
	}
	body, sum := b[:len(b)-4], binary.LittleEndian.Uint32(b[len(b)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, ErrChecksum
	}
	n := binary.LittleEndian.Uint32(body)
	if n > maxCircles || len(body)-4 != int(n)*circleSize {
		return nil, fmt.Errorf("%w: %d circles in %d bytes", ErrCorrupt, n, len(body)-4)
	}
	circles := make([]scene.Circle, n)
	next := func(p []byte) (float32, []byte) {
		return math.Float32frombits(binary.LittleEndian.Uint32(p)), p[4:]
	}
	p := body[4:]
	for i := range circles {
		var v [11]float32
		for j := range v {
			v[j], p = next(p)
		}
		circles[i] = scene.Circle{
			X: v[0], Y: v[1], Radius: v[2],
			Fill:   scene.Color{R: v[3], G: v[4], B: v[5], A: v[6]},
			Stroke: scene.Color{R: v[7], G: v[8], B: v[9], A: v[10]},
		}
	}
	s, err := scene.FromCircles(circles)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}

func compressBytes(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressBytes(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxPayload {
		return nil, fmt.Errorf("inflated payload exceeds %d bytes", maxPayload)
	}
	return out, nil
}
