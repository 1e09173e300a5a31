package data

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type ContentType string

const (
	ContentTypeTextPlain         = "text/plain"
	ContentTypeTextHTML          = "text/html"
	ContentTypeTextCSS           = "text/css"
	ContentTypeTextJavaScript    = "text/javascript"
	ContentTypeTextCSV           = "text/csv"
	ContentTypeTextMarkdown      = "text/markdown"
	ContentTypeImageJPEG         = "image/jpeg"
	ContentTypeImagePNG          = "image/png"
	ContentTypeImageGIF          = "image/gif"
	ContentTypeImageWebP         = "image/webp"
	ContentTypeImageSVGXML       = "image/svg+xml"
	ContentTypeAudioMpeg         = "audio/mpeg"
	ContentTypeAudioWAV          = "audio/wav"
	ContentTypeAudioOGG          = "audio/ogg"
	ContentTypeVideoMP4          = "video/mp4"
	ContentTypeVideoWebM         = "video/webm"
	ContentTypeApplicationPDF    = "application/pdf"
	ContentTypeApplicationZip    = "application/zip"
	ContentTypeApplicationGZip   = "application/gzip"
	ContentTypeApplicationXTar   = "application/x-tar"
	ContentTypeApplicationJson   = "application/json"
	ContentTypeApplicationXML    = "application/xml"
	ContentTypeApplicationYAML   = "application/yaml"
	ContentTypeApplicationStream = "application/octet-stream"
)

// ExtensionToMIME maps file extensions to MIME types
var ExtensionToMIME = map[string]ContentType{
	".txt":  ContentTypeTextPlain,
	".html": ContentTypeTextHTML,
	".htm":  ContentTypeTextHTML,
	".css":  ContentTypeTextCSS,
	".js":   ContentTypeTextJavaScript,
	".csv":  ContentTypeTextCSV,
	".md":   ContentTypeTextMarkdown,
	".jpg":  ContentTypeImageJPEG,
	".jpeg": ContentTypeImageJPEG,
	".png":  ContentTypeImagePNG,
	".gif":  ContentTypeImageGIF,
	".webp": ContentTypeImageWebP,
	".svg":  ContentTypeImageSVGXML,
	".mp3":  ContentTypeAudioMpeg,
	".wav":  ContentTypeAudioWAV,
	".ogg":  ContentTypeAudioOGG,
	".mp4":  ContentTypeVideoMP4,
	".webm": ContentTypeVideoWebM,
	".pdf":  ContentTypeApplicationPDF,
	".zip":  ContentTypeApplicationZip,
	".gz":   ContentTypeApplicationGZip,
	".tar":  ContentTypeApplicationXTar,
	".json": ContentTypeApplicationJson,
	".xml":  ContentTypeApplicationXML,
	".yaml": ContentTypeApplicationYAML,
	".yml":  ContentTypeApplicationYAML,
}

// MimeSniffer guesses the MIME type of an object from its key and payload.
// An empty result means nothing could be determined.
type MimeSniffer func(key string, data []byte) string

// SniffMimeType looks up the key extension first and falls back to the
// content signature. Returns an empty string if neither yields a type.
func SniffMimeType(key string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(key))
	if mimeType, exists := ExtensionToMIME[ext]; exists {
		return string(mimeType)
	}

	if len(data) == 0 {
		return ""
	}

	detected := mimetype.Detect(data)
	if detected.Is(ContentTypeApplicationStream) {
		return ""
	}

	return detected.String()
}

// ResolveMimeType returns the sniffed MIME type or text/plain when sniffing yields nothing.
func ResolveMimeType(key string, data []byte) string {
	return resolveWith(SniffMimeType, key, data)
}

// ResolverFor wraps sniffer with the text/plain fallback.
func ResolverFor(sniffer MimeSniffer) func(key string, data []byte) string {
	return func(key string, data []byte) string {
		return resolveWith(sniffer, key, data)
	}
}

func resolveWith(sniffer MimeSniffer, key string, data []byte) string {
	if sniffer != nil {
		if mimeType := sniffer(key, data); mimeType != "" {
			return mimeType
		}
	}

	return ContentTypeTextPlain
}
