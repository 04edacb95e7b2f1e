package sharecard

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// 卡片逻辑尺寸，实际输出按 Scale 倍绘制
const (
	Width    = 720
	Height   = 960
	Scale    = 2
	MaxLines = 8

	DefaultAccent = "#b68d40"

	margin   = 56
	qrSize   = 140
	minDivY  = 480
	lineStep = 40
)

// Card 卡片内容，Snippet 应已截断
type Card struct {
	Title    string
	Snippet  string
	Author   string
	Accent   string
	ShareURL string
	Brand    string
}

type fonts struct {
	italic, bold, regular, medium *truetype.Font
}

var (
	loadOnce sync.Once
	loaded   fonts
	loadErr  error
)

func loadFonts() (fonts, error) {
	loadOnce.Do(func() {
		parse := func(b []byte) *truetype.Font {
			if loadErr != nil {
				return nil
			}
			f, err := truetype.Parse(b)
			if err != nil {
				loadErr = err
			}
			return f
		}
		loaded = fonts{
			italic:  parse(goitalic.TTF),
			bold:    parse(gobold.TTF),
			regular: parse(goregular.TTF),
			medium:  parse(gomedium.TTF),
		}
	})
	return loaded, loadErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size * Scale, Hinting: font.HintingFull})
}

// 逻辑坐标换算为像素
func px(v float64) float64 { return v * Scale }

// EncodePNG 绘制并写出 PNG
func EncodePNG(w io.Writer, card Card) error {
	dc, err := render(card)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func render(card Card) (*gg.Context, error) {
	ff, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	accent, err := ParseHex(card.Accent)
	if err != nil {
		accent, _ = ParseHex(DefaultAccent)
	}

	dc := gg.NewContext(Width*Scale, Height*Scale)

	grad := gg.NewLinearGradient(0, 0, px(Width), px(Height))
	grad.AddColorStop(0, color.RGBA{0x1a, 0x1a, 0x1a, 0xff})
	grad.AddColorStop(0.5, color.RGBA{0x22, 0x22, 0x22, 0xff})
	grad.AddColorStop(1, color.RGBA{0x1a, 0x1a, 0x1a, 0xff})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, px(Width), px(Height))
	dc.Fill()

	dc.SetColor(accent)
	dc.DrawRectangle(0, 0, px(6), px(Height))
	dc.Fill()

	dc.SetColor(withAlpha(color.White, 0.06))
	for y := 0.0; y < Height; y += 24 {
		for x := 0.0; x < Width; x += 24 {
			dc.DrawCircle(px(x), px(y), px(1))
		}
	}
	dc.Fill()

	// 引号
	snippetX, snippetY := float64(margin), 80.0
	contentW := float64(Width - 2*margin)
	dc.SetFontFace(face(ff.italic, 120))
	dc.SetColor(withAlpha(accent, 0.35))
	dc.DrawString("“", px(snippetX-12), px(snippetY+80))

	// 摘要
	dc.SetFontFace(face(ff.italic, 26))
	dc.SetColor(color.RGBA{0xe8, 0xe0, 0xd4, 0xff})
	ly := snippetY + 130
	for _, line := range Wrap(card.Snippet, px(contentW), measurer(dc)) {
		dc.DrawString(line, px(snippetX), px(ly))
		ly += lineStep
	}

	divY := ly + 40
	if divY < minDivY {
		divY = minDivY
	}
	dc.SetColor(withAlpha(accent, 0.4))
	dc.SetLineWidth(px(1))
	dc.DrawLine(px(snippetX), px(divY), px(Width-snippetX), px(divY))
	dc.Stroke()

	// 标题
	dc.SetFontFace(face(ff.bold, 34))
	dc.SetColor(color.White)
	ty := divY + 50
	for _, line := range Wrap(card.Title, px(contentW), measurer(dc)) {
		dc.DrawString(line, px(snippetX), px(ty))
		ty += 46
	}

	dc.SetFontFace(face(ff.regular, 16))
	dc.SetColor(accent)
	dc.DrawString(card.Author, px(snippetX), px(ty+8))

	qrX := float64(Width - margin - qrSize)
	qrY := float64(Height - 60 - qrSize)
	if card.ShareURL != "" {
		qr, err := qrImage(card.ShareURL, int(px(qrSize)))
		if err != nil {
			return nil, err
		}
		dc.SetColor(withAlpha(color.White, 0.08))
		dc.DrawRoundedRectangle(px(qrX-12), px(qrY-12), px(qrSize+24), px(qrSize+24), px(16))
		dc.Fill()
		dc.DrawImage(qr, int(px(qrX)), int(px(qrY)))

		dc.SetFontFace(face(ff.regular, 11))
		dc.SetColor(withAlpha(color.White, 0.4))
		dc.DrawStringAnchored("SCAN TO READ", px(qrX+qrSize/2), px(qrY+qrSize+22), 0.5, 0)
	}

	dc.SetFontFace(face(ff.medium, 12))
	dc.SetColor(withAlpha(color.White, 0.25))
	dc.DrawString(strings.ToUpper(card.Brand), px(snippetX), px(Height-36))

	return dc, nil
}

func qrImage(content string, size int) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	q.BackgroundColor = color.Transparent
	q.ForegroundColor = color.NRGBA{0xff, 0xff, 0xff, 0xdd}
	return q.Image(size), nil
}

func measurer(dc *gg.Context) func(string) float64 {
	return func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}
}

// Wrap 按单词折行，最多 MaxLines 行，超出时最后一行追加 "..."
func Wrap(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if measure(test) > maxWidth && current != "" {
			lines = append(lines, current)
			current = word
		} else {
			current = test
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) > MaxLines {
		out := append([]string(nil), lines[:MaxLines-1]...)
		return append(out, lines[MaxLines-1]+"...")
	}
	return lines
}

// ParseHex 解析 #rgb 或 #rrggbb
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func withAlpha(c color.Color, alpha float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(alpha * 255)
	return n
}
