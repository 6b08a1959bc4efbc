package exifmeta

import (
	"bytes"

	"github.com/bep/imagemeta"
)

// wantedTags maps (source, tag-name) -> true for every tag we keep.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Artist":    true,
		"Copyright": true,
	},
	imagemeta.XMP: {
		"Creator": true,
		"Rights":  true,
	},
}

type Extractor struct {
}

func New() *Extractor {
	return &Extractor{}
}

// Extract pulls creator/copyright attribution from EXIF/XMP. Graceful
// degradation: unparsable metadata yields empty strings, never an error.
func (e *Extractor) Extract(data []byte) (string, string) {
	if len(data) == 0 {
		return "", ""
	}

	var creator, copyright string

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s, ok := ti.Value.(string)
			if !ok || s == "" {
				return nil
			}

			switch ti.Tag {
			case "Artist", "Creator":
				if creator == "" {
					creator = s
				}
			case "Copyright", "Rights":
				if copyright == "" {
					copyright = s
				}
			}
			return nil
		},
	})
	if err != nil {
		return "", ""
	}

	return creator, copyright
}
