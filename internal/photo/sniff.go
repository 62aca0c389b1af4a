package photo

import "bytes"

// Raster formats the transcoder accepts as input. Everything is
// re-encoded to JPEG on the way out.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
)

// sniff identifies the source format from the first bytes of the payload.
// Unknown magic returns "", which the transcoder reports as a decode
// failure before touching the full payload.
func sniff(head []byte) Format {
	switch {
	case isJPEG(head):
		return FormatJPEG
	case isPNG(head):
		return FormatPNG
	case isGIF(head):
		return FormatGIF
	case isWEBP(head):
		return FormatWEBP
	default:
		return ""
	}
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}
