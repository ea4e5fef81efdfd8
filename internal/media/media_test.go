package media

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path   string
		want   Type
		wantOK bool
	}{
		{"clip.mp4", Video, true},
		{"clip.MKV", Video, true},
		{"/videos/holiday.mov", Video, true},
		{"photo.jpg", Photo, true},
		{"photo.JPEG", Photo, true},
		{`C:\pics\scan.tif`, Photo, true},
		{"notes.txt", 0, false},
		{"song.mp3", 0, false},
		{"noextension", 0, false},
		{"dir.mp4/file", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Classify(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtensionSetsDisjoint(t *testing.T) {
	for ext := range VideoExtensions {
		if PhotoExtensions[ext] {
			t.Errorf("extension %q is both video and photo", ext)
		}
	}
}

func TestType_Valid(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{Video, true},
		{Photo, true},
		{Type(-1), false},
		{Type(7), false},
	}
	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestType_JSON(t *testing.T) {
	data, err := json.Marshal([]Type{Video, Photo})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["Video","Photo"]` {
		t.Errorf("Marshal = %s", data)
	}

	var got []Type
	if err := json.Unmarshal([]byte(`["video","Photo"]`), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(got) != 2 || got[0] != Video || got[1] != Photo {
		t.Errorf("Unmarshal = %v", got)
	}

	var bad Type
	if err := json.Unmarshal([]byte(`"Audio"`), &bad); err == nil {
		t.Error("expected error for unknown media type")
	}
}
