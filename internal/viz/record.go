package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	cellW, cellH = 8, 16
	gifDelay     = 2
)

var errNoFrames = errors.New("no frames recorded")

// canvasImage rasterises the braille canvas, one 4x4 block per dot, in the
// cell colors. The palette is built per frame.
func canvasImage(c *Canvas) *image.Paletted {
	palette := color.Palette{color.Black, color.White}
	index := map[string]uint8{}

	colorIndex := func(hex string) uint8 {
		if hex == "" {
			return 1
		}
		if i, ok := index[hex]; ok {
			return i
		}
		col, err := colorful.Hex(hex)
		if err != nil || len(palette) >= 256 {
			return 1
		}
		palette = append(palette, col.Clamped())
		i := uint8(len(palette) - 1)
		index[hex] = i
		return i
	}

	dotW, dotH := cellW/2, cellH/4
	type dot struct {
		x, y int
		ci   uint8
	}
	var lit []dot
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if c.Grid[row][col] <= brailleBlank {
				continue
			}
			ci := colorIndex(c.Colors[row][col])
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if c.IsSet(col*2+dx, row*4+dy) {
						lit = append(lit, dot{col*cellW + dx*dotW, row*cellH + dy*dotH, ci})
					}
				}
			}
		}
	}

	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), palette)
	for _, d := range lit {
		for py := 0; py < dotH; py++ {
			for px := 0; px < dotW; px++ {
				img.SetColorIndex(d.x+px, d.y+py, d.ci)
			}
		}
	}
	return img
}

// SaveGIF writes frames as a looping animation.
func SaveGIF(path string, frames []*image.Paletted) error {
	if len(frames) == 0 {
		return errNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, gifDelay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
