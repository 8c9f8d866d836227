// Package metadata reads the embedded tags of an audio file.
package metadata

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// A 1x1 transparent PNG, used when a file carries no artwork.
var emptyImage = [68]byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x04, 0x00, 0x00, 0x00, 0xb5, 0x1c, 0x0c,
	0x02, 0x00, 0x00, 0x00, 0x0b, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x64, 0x60, 0x00, 0x00,
	0x00, 0x06, 0x00, 0x02, 0x30, 0x81, 0xd0, 0x2f, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44,
	0xae, 0x42, 0x60, 0x82,
}

// EmptyImage returns a fresh copy of the fallback artwork.
func EmptyImage() []byte {
	img := emptyImage
	return img[:]
}

type Metadata struct {
	Title  string
	Artist string
	Album  string

	// Art is the first embedded picture, or EmptyImage.
	Art      []byte
	HasArt   bool
	Duration time.Duration
}

// Read extracts the tags of the file at path. A file without any
// readable tag is not an error; it just yields empty fields.
func Read(path string) (Metadata, error) {
	md := Metadata{}
	if path == "" {
		md.Art = EmptyImage()
		return md, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Println("failed to read tags from", path, ":", err)
		readTaglibTags(path, &md)
	} else {
		md.Title = strings.TrimSpace(m.Title())
		md.Artist = strings.TrimSpace(m.Artist())
		md.Album = strings.TrimSpace(m.Album())

		if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
			md.Art = pic.Data
			md.HasArt = true
		} else {
			log.Println("no artwork found in", path)
		}
	}

	if props, err := taglib.ReadProperties(path); err == nil {
		md.Duration = props.Length
	}

	if !md.HasArt {
		md.Art = EmptyImage()
	}
	return md, nil
}

// readTaglibTags covers the containers the primary reader does not
// understand (wav, opus, aiff, ...).
func readTaglibTags(path string, md *Metadata) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		log.Println("taglib could not read", path, ":", err)
		return
	}
	md.Title = firstTagValue(tags, taglib.Title)
	md.Artist = firstTagValue(tags, taglib.Artist)
	md.Album = firstTagValue(tags, taglib.Album)
}

func firstTagValue(tags map[string][]string, key string) string {
	for _, value := range tags[key] {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
