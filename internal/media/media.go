// Package media classifies files as videos or photos by extension.
package media

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the kind of a tracked media file.
type Type int

const (
	Video Type = iota
	Photo
)

func (t Type) String() string {
	switch t {
	case Video:
		return "Video"
	case Photo:
		return "Photo"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is Video or Photo.
func (t Type) Valid() bool {
	return t == Video || t == Photo
}

// MarshalJSON encodes the type by name so the library document stays readable.
func (t Type) MarshalJSON() ([]byte, error) {
	switch t {
	case Video, Photo:
		return json.Marshal(t.String())
	}
	return nil, fmt.Errorf("unknown media type %d", int(t))
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "video":
		*t = Video
	case "photo":
		*t = Photo
	default:
		return fmt.Errorf("unknown media type %q", s)
	}
	return nil
}

// VideoExtensions lists extensions (lowercase, with dot) treated as videos.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
	".mts":  true,
	".m2ts": true,
}

// PhotoExtensions lists extensions (lowercase, with dot) treated as photos.
var PhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// Classify returns the media type for path based on its extension.
// The second result is false for unsupported extensions.
func Classify(path string) (Type, bool) {
	ext := strings.ToLower(path)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx:]
	} else {
		return 0, false
	}
	if strings.ContainsAny(ext, `/\`) {
		return 0, false
	}
	if VideoExtensions[ext] {
		return Video, true
	}
	if PhotoExtensions[ext] {
		return Photo, true
	}
	return 0, false
}

// IsMediaFile reports whether path has a video or photo extension.
func IsMediaFile(path string) bool {
	_, ok := Classify(path)
	return ok
}
