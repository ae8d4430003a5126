package badge

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Sprites resolves the image reference used for a single digit of the 3d-num theme.
type Sprites interface {
	Href(origin string, digit int) string
}

// URLSprites references sprites served from {origin}/theme/{ThemeDir}/{digit}.gif.
type URLSprites struct {
	ThemeDir string
}

func (s URLSprites) Href(origin string, digit int) string {
	return fmt.Sprintf("%s/theme/%s/%d.gif", strings.TrimSuffix(origin, "/"), s.ThemeDir, digit)
}

// EmbeddedSprites inlines every digit as a data URI, so proxies that refuse
// external images inside SVG still show the counter.
type EmbeddedSprites struct {
	uris [10]string
}

func (s *EmbeddedSprites) Href(_ string, digit int) string {
	return s.uris[digit]
}

var spriteExtensions = []string{".gif", ".png", ".svg"}

// LoadSprites reads 0..9 sprites from the root of fsys. Each digit may be a gif, png or svg.
func LoadSprites(fsys fs.FS) (*EmbeddedSprites, error) {
	sprites := &EmbeddedSprites{}

	for digit := 0; digit <= 9; digit++ {
		uri, err := loadSprite(fsys, digit)
		if err != nil {
			return nil, err
		}
		sprites.uris[digit] = uri
	}

	return sprites, nil
}

func loadSprite(fsys fs.FS, digit int) (string, error) {
	for _, ext := range spriteExtensions {
		name := fmt.Sprintf("%d%s", digit, ext)
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", errors.Wrapf(err, "failed to read sprite %s", name)
		}

		media := mime.TypeByExtension(path.Ext(name))
		if i := strings.IndexByte(media, ';'); i >= 0 {
			media = media[:i]
		}

		return "data:" + media + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	return "", errors.Errorf("no sprite found for digit %d", digit)
}
