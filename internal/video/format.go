// Package video describes the uncompressed video formats the harness sends
// and builds the test-pattern payloads for them.
package video

import (
	"fmt"

	"github.com/zsiec/omt-send-test/internal/errors"
)

// Encoding is an uncompressed pixel layout.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	// EncodingUYVY is packed 4:2:2, two pixels per 4-byte group U Y0 V Y1.
	EncodingUYVY
	// EncodingBGRA is packed 32-bit, one pixel per 4-byte group B G R A.
	EncodingBGRA
	// EncodingNV12 is planar 4:2:0: a full Y plane then interleaved UV at
	// half height.
	EncodingNV12
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingUYVY:
		return "UYVY"
	case EncodingBGRA:
		return "BGRA"
	case EncodingNV12:
		return "NV12"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Format is one video format under test. It is immutable once built.
type Format struct {
	Encoding Encoding
	Width    int
	Height   int
	Rate     Rate
	Name     string
}

// Stride returns the row stride in bytes (the Y plane stride for NV12).
func (f Format) Stride() int {
	switch f.Encoding {
	case EncodingUYVY:
		return f.Width * 2
	case EncodingBGRA:
		return f.Width * 4
	case EncodingNV12:
		return f.Width
	default:
		return f.Width * 4
	}
}

// PayloadSize returns the exact number of bytes of one frame.
func (f Format) PayloadSize() int {
	if f.Encoding == EncodingNV12 {
		luma := f.Width * f.Height
		return luma + luma/2
	}
	return f.Stride() * f.Height
}

// AspectRatio returns width/height.
func (f Format) AspectRatio() float32 {
	if f.Height == 0 {
		return 0
	}
	return float32(f.Width) / float32(f.Height)
}

// IsHD reports whether the format is 720 lines or more, which selects the
// BT.709 colour space over BT.601.
func (f Format) IsHD() bool {
	return f.Height >= 720
}

// CheckLayout verifies that the encoding is known and that the dimensions
// fit its chroma subsampling.
func (f Format) CheckLayout() error {
	switch f.Encoding {
	case EncodingUYVY, EncodingBGRA, EncodingNV12:
	default:
		return errors.NewUnsupportedEncodingError(f.Encoding.String())
	}

	if f.Width <= 0 || f.Height <= 0 {
		return errors.NewInvalidDimensionsError(f.Encoding.String(), f.Width, f.Height, "dimensions must be positive")
	}

	switch f.Encoding {
	case EncodingUYVY:
		if f.Width%2 != 0 {
			return errors.NewInvalidDimensionsError(f.Encoding.String(), f.Width, f.Height, "width must be even")
		}
	case EncodingNV12:
		if f.Width%2 != 0 || f.Height%2 != 0 {
			return errors.NewInvalidDimensionsError(f.Encoding.String(), f.Width, f.Height, "width and height must be even")
		}
	}

	return nil
}

// Validate checks the whole format: layout, rate and name.
func (f Format) Validate() error {
	if err := f.CheckLayout(); err != nil {
		return err
	}

	if f.Rate.Num <= 0 || f.Rate.Den <= 0 {
		return errors.NewInvalidFormatError(fmt.Sprintf("frame rate %d/%d must be positive", f.Rate.Num, f.Rate.Den))
	}

	if f.Name == "" {
		return errors.NewInvalidFormatError("format name cannot be empty")
	}

	return nil
}

// String returns a short description such as "UYVY 1280x720 @30.00".
func (f Format) String() string {
	return fmt.Sprintf("%s %dx%d @%.2f", f.Encoding, f.Width, f.Height, f.Rate.Float64())
}
