package badge

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormed(t *testing.T, document []byte) {
	decoder := xml.NewDecoder(bytes.NewReader(document))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return
		}
		if !assert.Nil(t, err, "svg is not well formed:\n%s", document) {
			return
		}
	}
}

type svgImage struct {
	Href string `xml:"href,attr"`
	X    int    `xml:"x,attr"`
}

type svgDocument struct {
	Width  int        `xml:"width,attr"`
	Height int        `xml:"height,attr"`
	Title  string     `xml:"title"`
	Images []svgImage `xml:"image"`
	Texts  []string   `xml:"text"`
}

func parse(t *testing.T, document []byte) svgDocument {
	var svg svgDocument
	require.Nil(t, xml.Unmarshal(document, &svg))
	return svg
}

func rendersIdentically(t *testing.T) {
	renderer := NewRenderer()

	for _, theme := range []Theme{Simple, Dark, Digits} {
		request := Request{Name: "demo", Count: 12345, Theme: theme, Origin: "https://badges.example"}

		first, err := renderer.Render(request)
		require.Nil(t, err)
		second, err := renderer.Render(request)
		require.Nil(t, err)

		assert.Equal(t, first, second, "theme %s", theme)
	}
}

func escapesLabels(t *testing.T) {
	renderer := NewRenderer()

	for _, theme := range []Theme{Simple, Digits} {
		document, err := renderer.Render(Request{Name: `<script>&"'`, Count: 7, Theme: theme})
		require.Nil(t, err)

		text := string(document)
		assert.Contains(t, text, "&lt;script&gt;&amp;&quot;&apos;")
		assert.NotContains(t, text, "<script>")
		wellFormed(t, document)

		svg := parse(t, document)
		assert.Equal(t, `<script>&"' counter`, svg.Title)
	}
}

func dropsInvalidXMLCharacters(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "bad\x00\x1bname", Count: 1, Theme: Simple})
	require.Nil(t, err)

	wellFormed(t, document)
	assert.Equal(t, "badname counter", parse(t, document).Title)
}

func rendersSimpleBadge(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: 42, Theme: Simple})
	require.Nil(t, err)

	wellFormed(t, document)
	svg := parse(t, document)

	assert.Equal(t, 180, svg.Width)
	assert.Equal(t, 32, svg.Height)
	assert.Equal(t, []string{"42", "demo"}, svg.Texts)
	assert.Contains(t, string(document), palettes[Simple].Accent)
	assert.NotContains(t, string(document), "textLength")
}

func rendersDarkPalette(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: 42, Theme: Dark})
	require.Nil(t, err)

	assert.Contains(t, string(document), palettes[Dark].Accent)
	assert.NotContains(t, string(document), palettes[Simple].Accent)
}

func squeezesLongLabels(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: strings.Repeat("n", 64), Count: 1, Theme: Simple})
	require.Nil(t, err)

	wellFormed(t, document)
	assert.Contains(t, string(document), `textLength="60"`)
	assert.Equal(t, 180, parse(t, document).Width)
}

func fallsBackForUnknownThemes(t *testing.T) {
	renderer := NewRenderer()

	expected, err := renderer.Render(Request{Name: "demo", Count: 3, Theme: Simple})
	require.Nil(t, err)

	actual, err := renderer.Render(Request{Name: "demo", Count: 3, Theme: ParseTheme("neon")})
	require.Nil(t, err)

	assert.Equal(t, expected, actual)
}

func rendersSingleZeroSlot(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: 0, Theme: Digits, Origin: "https://badges.example"})
	require.Nil(t, err)

	wellFormed(t, document)
	svg := parse(t, document)

	assert.Equal(t, DigitWidth, svg.Width)
	assert.Equal(t, DigitHeight, svg.Height)
	if assert.Len(t, svg.Images, 1) {
		assert.Equal(t, "https://badges.example/theme/3d-num/0.gif", svg.Images[0].Href)
		assert.Equal(t, 0, svg.Images[0].X)
	}
}

func laysOutDigitSlots(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: 105, Theme: Digits, Origin: "https://badges.example/"})
	require.Nil(t, err)

	svg := parse(t, document)

	assert.Equal(t, 3*DigitWidth+2*DigitGap, svg.Width)
	if assert.Len(t, svg.Images, 3) {
		assert.Equal(t, "https://badges.example/theme/3d-num/1.gif", svg.Images[0].Href)
		assert.Equal(t, "https://badges.example/theme/3d-num/0.gif", svg.Images[1].Href)
		assert.Equal(t, "https://badges.example/theme/3d-num/5.gif", svg.Images[2].Href)
		assert.Equal(t, []int{0, 36, 72}, []int{svg.Images[0].X, svg.Images[1].X, svg.Images[2].X})
	}
}

func leavesNonDigitSlotsEmpty(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: -12, Theme: Digits})
	require.Nil(t, err)

	svg := parse(t, document)

	assert.Equal(t, DigitsWidth(3), svg.Width)
	if assert.Len(t, svg.Images, 2) {
		assert.Equal(t, "/theme/3d-num/1.gif", svg.Images[0].Href)
		assert.Equal(t, DigitWidth+DigitGap, svg.Images[0].X)
		assert.Equal(t, 2*(DigitWidth+DigitGap), svg.Images[1].X)
	}
}

func escapesSpriteOrigins(t *testing.T) {
	document, err := NewRenderer().Render(Request{Name: "demo", Count: 1, Theme: Digits, Origin: `https://evil"><script>`})
	require.Nil(t, err)

	wellFormed(t, document)
	assert.NotContains(t, string(document), "<script>")
}

func embedsSprites(t *testing.T) {
	files := fstest.MapFS{}
	for _, digit := range "0123456789" {
		files[string(digit)+".gif"] = &fstest.MapFile{Data: []byte("GIF89a" + string(digit))}
	}

	sprites, err := LoadSprites(files)
	require.Nil(t, err)

	document, err := NewRenderer(WithSprites(sprites)).Render(Request{Name: "demo", Count: 7, Theme: Digits, Origin: "https://ignored.example"})
	require.Nil(t, err)

	svg := parse(t, document)
	if assert.Len(t, svg.Images, 1) {
		assert.Equal(t, "data:image/gif;base64,R0lGODlhNw==", svg.Images[0].Href)
	}
}

func rendersUnavailableBadge(t *testing.T) {
	document, err := NewRenderer().Unavailable("demo")
	require.Nil(t, err)

	wellFormed(t, document)
	assert.Equal(t, []string{"n/a", "demo"}, parse(t, document).Texts)
}

func TestRenderer(t *testing.T) {
	t.Run("renders identical output for identical requests", rendersIdentically)
	t.Run("escapes labels", escapesLabels)
	t.Run("drops characters xml does not allow", dropsInvalidXMLCharacters)
	t.Run("renders the simple badge", rendersSimpleBadge)
	t.Run("renders the dark palette", rendersDarkPalette)
	t.Run("squeezes long labels", squeezesLongLabels)
	t.Run("falls back to simple for unknown themes", fallsBackForUnknownThemes)
	t.Run("renders a single slot for zero", rendersSingleZeroSlot)
	t.Run("lays out digit slots", laysOutDigitSlots)
	t.Run("leaves non digit slots empty", leavesNonDigitSlotsEmpty)
	t.Run("escapes sprite origins", escapesSpriteOrigins)
	t.Run("embeds sprites as data uris", embedsSprites)
	t.Run("renders the unavailable badge", rendersUnavailableBadge)
}

func TestParseTheme(t *testing.T) {
	assert.Equal(t, Simple, ParseTheme(""))
	assert.Equal(t, Simple, ParseTheme("simple"))
	assert.Equal(t, Dark, ParseTheme(" Dark "))
	assert.Equal(t, Digits, ParseTheme("3D-NUM"))
	assert.Equal(t, Simple, ParseTheme("unknown"))
}

func TestLoadSprites(t *testing.T) {
	t.Run("reports missing digits", func(t *testing.T) {
		_, err := LoadSprites(fstest.MapFS{"0.gif": &fstest.MapFile{Data: []byte("GIF89a")}})
		assert.NotNil(t, err)
	})

	t.Run("accepts png and svg sprites", func(t *testing.T) {
		files := fstest.MapFS{}
		for digit := 0; digit <= 9; digit++ {
			name := string(rune('0'+digit)) + ".png"
			if digit == 9 {
				name = "9.svg"
			}
			files[name] = &fstest.MapFile{Data: []byte("x")}
		}

		sprites, err := LoadSprites(files)
		require.Nil(t, err)

		assert.True(t, strings.HasPrefix(sprites.Href("", 0), "data:image/png;base64,"))
		assert.True(t, strings.HasPrefix(sprites.Href("", 9), "data:image/svg+xml;base64,"))
	})
}
