// Package render draws a schedule onto a month calendar image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/kilianp07/pca-scheduler/core/model"
)

var weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Options controls the image size and text.
type Options struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	TitleSize  float64 `json:"title_size"`
	DaySize    float64 `json:"day_size"`
	NameSize   float64 `json:"name_size"`
	HeaderSize float64 `json:"header_size"`
	// ShowUnassigned writes model.UnassignedLabel in cells nobody holds
	// instead of leaving them blank.
	ShowUnassigned bool `json:"show_unassigned"`
}

// SetDefaults fills unset fields with an 800x600 layout.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = 800
	}
	if o.Height == 0 {
		o.Height = 600
	}
	if o.TitleSize == 0 {
		o.TitleSize = 36
	}
	if o.DaySize == 0 {
		o.DaySize = 20
	}
	if o.NameSize == 0 {
		o.NameSize = 16
	}
	if o.HeaderSize == 0 {
		o.HeaderSize = 14
	}
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	if o.Width < 7*20 || o.Height < 200 {
		return fmt.Errorf("calendar image %dx%d is too small", o.Width, o.Height)
	}
	if o.TitleSize <= 0 || o.DaySize <= 0 || o.NameSize <= 0 || o.HeaderSize <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	return nil
}

const (
	titleHeight  = 80
	headerHeight = 24
	cellPadding  = 6
)

var parseFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

type faces struct {
	title, header, day, name font.Face
}

func newFaces(o Options) (*faces, error) {
	f, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	mk := func(size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	var fs faces
	for _, p := range []struct {
		dst  *font.Face
		size float64
	}{
		{&fs.title, o.TitleSize},
		{&fs.header, o.HeaderSize},
		{&fs.day, o.DaySize},
		{&fs.name, o.NameSize},
	} {
		face, err := mk(p.size)
		if err != nil {
			fs.close()
			return nil, fmt.Errorf("font face: %w", err)
		}
		*p.dst = face
	}
	return &fs, nil
}

func (fs *faces) close() {
	for _, f := range []font.Face{fs.title, fs.header, fs.day, fs.name} {
		if f != nil {
			_ = f.Close()
		}
	}
}

// layout places the days of a month on a Monday-first grid.
type layout struct {
	offset int
	days   int
	rows   int
	cellW  int
	cellH  int
	top    int
}

func newLayout(p model.Period, o Options) layout {
	offset := (int(p.First().Weekday()) + 6) % 7
	days := p.Days()
	rows := (offset + days + 6) / 7
	top := titleHeight + headerHeight
	return layout{
		offset: offset,
		days:   days,
		rows:   rows,
		cellW:  o.Width / 7,
		cellH:  (o.Height - top) / rows,
		top:    top,
	}
}

// cell returns the rectangle of grid slot i, counting from the top-left.
func (l layout) cell(i int) image.Rectangle {
	x := (i % 7) * l.cellW
	y := l.top + (i/7)*l.cellH
	return image.Rect(x, y, x+l.cellW, y+l.cellH)
}

// dayCell returns the rectangle of a day of the month.
func (l layout) dayCell(day int) image.Rectangle {
	return l.cell(l.offset + day - 1)
}

// Calendar draws s for period p. Only the days that exist in the month are
// drawn; schedule entries beyond the month length are ignored.
func Calendar(s model.Schedule, p model.Period, o Options) (*image.RGBA, error) {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	fs, err := newFaces(o)
	if err != nil {
		return nil, err
	}
	defer fs.close()

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawCentered(img, fs.title, p.Label(), o.Width/2, titleHeight/2)

	l := newLayout(p, o)
	for i, name := range weekdays {
		drawCentered(img, fs.header, name, i*l.cellW+l.cellW/2, titleHeight+headerHeight/2)
	}
	for day := 1; day <= l.days && day <= model.LastDay; day++ {
		r := l.dayCell(day)
		outline(img, r, color.Black)
		drawText(img, fs.day, fmt.Sprint(day), r.Min.X+cellPadding, r.Min.Y+cellPadding)

		a, _ := s.Day(day)
		label := a.Worker
		if !a.IsAssigned() && o.ShowUnassigned {
			label = model.UnassignedLabel
		}
		if label == "" {
			continue
		}
		label = fit(fs.name, label, r.Dx()-2*cellPadding)
		y := r.Min.Y + cellPadding + fs.day.Metrics().Height.Ceil() + cellPadding
		drawText(img, fs.name, label, r.Min.X+cellPadding, y)
	}
	return img, nil
}

// WritePNG renders the calendar and encodes it as PNG.
func WritePNG(w io.Writer, s model.Schedule, p model.Period, o Options) error {
	img, err := Calendar(s, p, o)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// drawText writes s with its top-left corner at (x, y).
func drawText(dst draw.Image, face font.Face, s string, x, y int) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: face}
	d.Dot = fixed.P(x, y+face.Metrics().Ascent.Ceil())
	d.DrawString(s)
}

// drawCentered writes s centred on (cx, cy).
func drawCentered(dst draw.Image, face font.Face, s string, cx, cy int) {
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: face}
	d.Dot = fixed.P(cx-w/2, cy+(m.Ascent.Ceil()-m.Descent.Ceil())/2)
	d.DrawString(s)
}

// fit shortens s with an ellipsis until it is at most maxW pixels wide.
func fit(face font.Face, s string, maxW int) string {
	if font.MeasureString(face, s).Ceil() <= maxW {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		t := string(runes) + "…"
		if font.MeasureString(face, t).Ceil() <= maxW {
			return t
		}
	}
	return ""
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
