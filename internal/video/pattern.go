package video

import (
	"github.com/zsiec/omt-send-test/internal/errors"
)

// colorBar is one SMPTE-style bar as (U, Y, V).
type colorBar struct {
	U, Y, V byte
}

// colorBars holds the eight UYVY bars left to right. Sections past the
// seventh are black.
var colorBars = [8]colorBar{
	{128, 235, 128}, // white
	{16, 210, 146},  // yellow
	{166, 170, 16},  // cyan
	{54, 145, 34},   // green
	{202, 106, 222}, // magenta
	{90, 81, 240},   // red
	{240, 41, 110},  // blue
	{128, 16, 128},  // black
}

const (
	nv12Luma   = 180
	nv12Chroma = 128
)

// Generate builds the test pattern for f: colour bars for UYVY, a gradient
// for BGRA and a flat grey for NV12. The returned buffer is exactly
// f.PayloadSize() bytes and is reused for every frame of a session.
func Generate(f Format) ([]byte, error) {
	if err := f.CheckLayout(); err != nil {
		return nil, err
	}

	buf := make([]byte, f.PayloadSize())
	switch f.Encoding {
	case EncodingUYVY:
		fillColorBars(buf, f)
	case EncodingBGRA:
		fillGradient(buf, f)
	case EncodingNV12:
		fillFlatNV12(buf, f)
	}
	return buf, nil
}

// GenerateLumaRamp builds a UYVY frame whose luma rises from 0 to 255 left to
// right with neutral chroma. Used by the debug sender.
func GenerateLumaRamp(f Format) ([]byte, error) {
	if err := f.CheckLayout(); err != nil {
		return nil, err
	}
	if f.Encoding != EncodingUYVY {
		return nil, errors.NewUnsupportedEncodingError(f.Encoding.String())
	}

	buf := make([]byte, f.PayloadSize())
	stride := f.Stride()
	pairs := f.Width / 2
	for row := 0; row < f.Height; row++ {
		line := buf[row*stride : (row+1)*stride]
		for p := 0; p < pairs; p++ {
			y := byte(255 * p / pairs)
			px := line[p*4 : p*4+4]
			px[0], px[1], px[2], px[3] = 128, y, 128, y
		}
	}
	return buf, nil
}

// ColorBarAt returns the (U, Y, V) triple of the bar covering column x.
func ColorBarAt(x, width int) (u, y, v byte) {
	section := 8 * x / width
	if section > 7 {
		section = 7
	}
	bar := colorBars[section]
	return bar.U, bar.Y, bar.V
}

func fillColorBars(buf []byte, f Format) {
	stride := f.Stride()
	// Every row is identical, so build the first and copy it down.
	first := buf[:stride]
	for p := 0; p < f.Width/2; p++ {
		u, y, v := ColorBarAt(2*p, f.Width)
		px := first[p*4 : p*4+4]
		px[0], px[1], px[2], px[3] = u, y, v, y
	}
	for row := 1; row < f.Height; row++ {
		copy(buf[row*stride:(row+1)*stride], first)
	}
}

func fillGradient(buf []byte, f Format) {
	w, h := f.Width, f.Height
	for y := 0; y < h; y++ {
		g := byte(255 * y / h)
		line := buf[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			px := line[x*4 : x*4+4]
			px[0] = byte(255 * x / w)
			px[1] = g
			px[2] = byte(255 * (x + y) / (w + h))
			px[3] = 255
		}
	}
}

func fillFlatNV12(buf []byte, f Format) {
	luma := f.Width * f.Height
	for i := 0; i < luma; i++ {
		buf[i] = nv12Luma
	}
	for i := luma; i+1 < len(buf); i += 2 {
		buf[i] = nv12Chroma
		buf[i+1] = nv12Chroma
	}
}
