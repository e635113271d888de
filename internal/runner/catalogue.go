package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/zsiec/omt-send-test/internal/video"
)

var catalogue = []video.Format{
	{Encoding: video.EncodingUYVY, Width: 1280, Height: 720, Rate: video.FrameRate30, Name: "UYVY_720p30"},
	{Encoding: video.EncodingUYVY, Width: 1920, Height: 1080, Rate: video.FrameRate30, Name: "UYVY_1080p30"},
	{Encoding: video.EncodingBGRA, Width: 1280, Height: 720, Rate: video.FrameRate30, Name: "BGRA_720p30"},
	{Encoding: video.EncodingBGRA, Width: 1920, Height: 1080, Rate: video.FrameRate30, Name: "BGRA_1080p30"},
	{Encoding: video.EncodingNV12, Width: 1280, Height: 720, Rate: video.FrameRate30, Name: "NV12_720p30"},
}

// Catalogue returns the built-in cases in run order.
func Catalogue() []video.Format {
	out := make([]video.Format, len(catalogue))
	copy(out, catalogue)
	return out
}

// Names returns the catalogue case names in run order.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, f := range catalogue {
		names[i] = f.Name
	}
	return names
}

// Select returns every case when name is empty, otherwise the case with
// that exact name. ok is false for an unknown name.
func Select(name string) (formats []video.Format, ok bool) {
	if name == "" {
		return Catalogue(), true
	}
	for _, f := range catalogue {
		if f.Name == name {
			return []video.Format{f}, true
		}
	}
	return nil, false
}

// WriteUnknown prints the diagnostic for a case name not in the catalogue.
func WriteUnknown(w io.Writer, name string) {
	fmt.Fprintf(w, "Error: Unknown format %q (available: %s)\n", name, availableList())
}

func availableList() string {
	return strings.Join(Names(), ", ")
}
