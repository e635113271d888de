package omt

import (
	"fmt"
	"strings"

	"github.com/zsiec/omt-send-test/internal/video"
)

// FrameType mirrors OMTFrameType.
type FrameType int32

const (
	FrameTypeNone     FrameType = 0
	FrameTypeMetadata FrameType = 1
	FrameTypeVideo    FrameType = 2
	FrameTypeAudio    FrameType = 4
)

// Codec mirrors OMTCodec; uncompressed codecs are FourCC values.
type Codec int32

func fourCC(s string) Codec {
	return Codec(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24)
}

var (
	CodecUYVY = fourCC("UYVY")
	CodecBGRA = fourCC("BGRA")
	CodecNV12 = fourCC("NV12")
)

// String returns the FourCC text of the codec.
func (c Codec) String() string {
	b := []byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)}
	return string(b)
}

// CodecFor maps a pixel encoding to the transport codec.
func CodecFor(e video.Encoding) (Codec, error) {
	switch e {
	case video.EncodingUYVY:
		return CodecUYVY, nil
	case video.EncodingBGRA:
		return CodecBGRA, nil
	case video.EncodingNV12:
		return CodecNV12, nil
	default:
		return 0, fmt.Errorf("no codec for encoding %s", e)
	}
}

// VideoFlags mirrors OMTVideoFlags.
type VideoFlags int32

const (
	VideoFlagsNone          VideoFlags = 0
	VideoFlagsInterlaced    VideoFlags = 1
	VideoFlagsAlpha         VideoFlags = 2
	VideoFlagsPreMultiplied VideoFlags = 4
	VideoFlagsPreview       VideoFlags = 8
	VideoFlagsHighBitDepth  VideoFlags = 16
)

// ColorSpace mirrors OMTColorSpace.
type ColorSpace int32

const (
	ColorSpaceUndefined ColorSpace = 0
	ColorSpaceBT601     ColorSpace = 601
	ColorSpaceBT709     ColorSpace = 709
)

// ColorSpaceFor picks BT.601 below 720 lines and BT.709 otherwise.
func ColorSpaceFor(f video.Format) ColorSpace {
	if f.IsHD() {
		return ColorSpaceBT709
	}
	return ColorSpaceBT601
}

// Quality mirrors OMTQuality.
type Quality int32

const (
	QualityDefault Quality = 0
	QualityLow     Quality = 1
	QualityMedium  Quality = 50
	QualityHigh    Quality = 100
)

// ParseQuality maps a configuration name to a Quality.
func ParseQuality(name string) (Quality, error) {
	switch strings.ToLower(name) {
	case "default", "":
		return QualityDefault, nil
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	default:
		return 0, fmt.Errorf("unknown quality %q", name)
	}
}

// MediaFrame is the frame descriptor handed to Send. The session fills it
// once and only updates Timestamp between submissions.
type MediaFrame struct {
	Type        FrameType
	Codec       Codec
	Width       int32
	Height      int32
	Stride      int32
	Flags       VideoFlags
	FrameRateN  int32
	FrameRateD  int32
	AspectRatio float32
	ColorSpace  ColorSpace
	Data        []byte
	DataLength  int32
	Timestamp   int64
}

// NewVideoFrame builds the descriptor for f over data. The alpha flag only
// applies to BGRA.
func NewVideoFrame(f video.Format, data []byte, alpha bool) (*MediaFrame, error) {
	codec, err := CodecFor(f.Encoding)
	if err != nil {
		return nil, err
	}
	if len(data) != f.PayloadSize() {
		return nil, fmt.Errorf("payload is %d bytes, %s needs %d", len(data), f, f.PayloadSize())
	}

	flags := VideoFlagsNone
	if alpha && f.Encoding == video.EncodingBGRA {
		flags = VideoFlagsAlpha
	}

	return &MediaFrame{
		Type:        FrameTypeVideo,
		Codec:       codec,
		Width:       int32(f.Width),
		Height:      int32(f.Height),
		Stride:      int32(f.Stride()),
		Flags:       flags,
		FrameRateN:  int32(f.Rate.Num),
		FrameRateD:  int32(f.Rate.Den),
		AspectRatio: f.AspectRatio(),
		ColorSpace:  ColorSpaceFor(f),
		Data:        data,
		DataLength:  int32(f.PayloadSize()),
	}, nil
}
