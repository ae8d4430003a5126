package badge

import (
	"bytes"
	"embed"
	"strconv"
	"text/template"
	"unicode/utf8"
)

const (
	simpleWidth  = 180
	simpleHeight = 32
	valueZone    = 100
	labelPadding = 10
	labelCharPx  = 7

	DigitWidth  = 32
	DigitHeight = 32
	DigitGap    = 4
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templates = template.Must(
	template.New("badges").Funcs(template.FuncMap{"xml": EscapeXML}).ParseFS(templateFiles, "templates/*.tmpl"),
)

// Request is everything a badge depends on. Origin is only consulted by
// URL-referenced digit sprites.
type Request struct {
	Name   string
	Count  int64
	Theme  Theme
	Origin string
}

type RendererOption func(renderer *Renderer)

func WithSprites(sprites Sprites) RendererOption {
	return func(renderer *Renderer) {
		renderer.sprites = sprites
	}
}

// Renderer turns counter values into SVG documents. It holds no mutable state,
// so identical requests always render identical bytes.
type Renderer struct {
	sprites Sprites
}

func NewRenderer(options ...RendererOption) *Renderer {
	renderer := &Renderer{}
	for _, option := range options {
		option(renderer)
	}

	if renderer.sprites == nil {
		renderer.sprites = URLSprites{ThemeDir: string(Digits)}
	}

	return renderer
}

func (r *Renderer) Render(request Request) ([]byte, error) {
	value := strconv.FormatInt(request.Count, 10)

	if request.Theme == Digits {
		return execute("digits", r.digits(request, value))
	}

	return execute("simple", simple(request.Name, value, request.Theme))
}

// Unavailable renders the badge shown when the counter could not be read.
func (r *Renderer) Unavailable(name string) ([]byte, error) {
	return execute("simple", simple(name, "n/a", Simple))
}

type simpleBadge struct {
	Name        string
	Value       string
	Width       int
	Height      int
	ValueZone   int
	LabelZone   int
	ValueX      int
	LabelX      int
	LabelLength int
	Palette     palette
}

func simple(name string, value string, theme Theme) simpleBadge {
	labelZone := simpleWidth - valueZone
	available := labelZone - 2*labelPadding

	// squeeze long labels into the label zone instead of growing the badge
	var length int
	if utf8.RuneCountInString(name)*labelCharPx > available {
		length = available
	}

	return simpleBadge{
		Name:        name,
		Value:       value,
		Width:       simpleWidth,
		Height:      simpleHeight,
		ValueZone:   valueZone,
		LabelZone:   labelZone,
		ValueX:      valueZone - labelPadding,
		LabelX:      simpleWidth - labelPadding,
		LabelLength: length,
		Palette:     paletteFor(theme),
	}
}

type digitSlot struct {
	Href string
	X    int
}

type digitsBadge struct {
	Name       string
	Value      string
	Width      int
	Height     int
	DigitWidth int
	Slots      []digitSlot
}

func (r *Renderer) digits(request Request, value string) digitsBadge {
	slots := make([]digitSlot, 0, len(value))
	for index, c := range []byte(value) {
		// anything other than 0-9 keeps its slot but draws nothing
		if c < '0' || c > '9' {
			continue
		}

		slots = append(slots, digitSlot{
			Href: r.sprites.Href(request.Origin, int(c-'0')),
			X:    index * (DigitWidth + DigitGap),
		})
	}

	return digitsBadge{
		Name:       request.Name,
		Value:      value,
		Width:      DigitsWidth(len(value)),
		Height:     DigitHeight,
		DigitWidth: DigitWidth,
		Slots:      slots,
	}
}

// DigitsWidth is the canvas width of a 3d-num badge with the given number of slots.
func DigitsWidth(slots int) int {
	if slots <= 0 {
		return 0
	}

	return slots*DigitWidth + (slots-1)*DigitGap
}

func execute(name string, data interface{}) ([]byte, error) {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return nil, err
	}

	return bytes.TrimSpace(buffer.Bytes()), nil
}
