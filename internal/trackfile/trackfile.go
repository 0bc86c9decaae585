// Package trackfile decodes recorded runs from GPX and FIT files into tracks.
package trackfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"runlog/internal/track"
)

// ErrUnsupportedFormat is returned for files that are neither GPX nor FIT
var ErrUnsupportedFormat = errors.New("unsupported track format")

// MaxFileSize bounds the size of a track file, which bounds analysis time
const MaxFileSize = 64 << 20

// Format returns the track format for a file name based on its extension
func Format(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gpx":
		return track.SourceGPX, nil
	case ".fit":
		return track.SourceFIT, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Load reads and decodes a track file, picking the decoder by extension
func Load(path string) (*track.Track, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track file: %w", err)
	}
	defer f.Close()

	t, err := Decode(f, format)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return t, nil
}

// Decode decodes a track in the given format from r
func Decode(r io.Reader, format string) (*track.Track, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading track: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("track exceeds %d bytes", MaxFileSize)
	}

	switch format {
	case track.SourceGPX:
		return DecodeGPX(data)
	case track.SourceFIT:
		return DecodeFIT(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
