// Package render draws birthday cards in the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/princebabou/wishCraft/internal/models"
	"github.com/princebabou/wishCraft/internal/reveal"
)

const (
	litGlyph   = "*"
	blownGlyph = "~"
	wickGlyph  = "|"
	cakeGlyph  = "="
	candleGap  = "   "
)

// Renderer writes a card frame for each reveal state. Colours are dropped
// when color.NoColor is set.
type Renderer struct {
	w io.Writer

	title  *color.Color
	accent *color.Color
	flame  *color.Color
	smoke  *color.Color
	wick   *color.Color
	cake   *color.Color
	hint   *color.Color
	failed *color.Color
}

func New(w io.Writer) *Renderer {
	return &Renderer{
		w:      w,
		title:  color.New(color.FgHiMagenta, color.Bold),
		accent: color.New(color.FgMagenta),
		flame:  color.New(color.FgHiYellow),
		smoke:  color.New(color.FgHiBlack),
		wick:   color.New(color.FgWhite),
		cake:   color.New(color.FgHiRed),
		hint:   color.New(color.FgCyan),
		failed: color.New(color.FgRed, color.Bold),
	}
}

// Card writes the frame for state. card may be nil in Loading and Error.
func (r *Renderer) Card(card *models.Card, state reveal.State) error {
	var lines []string
	switch state {
	case reveal.StateLoading:
		lines = []string{r.hint.Sprint("Baking your card...")}
	case reveal.StateError:
		lines = []string{r.failed.Sprint("404 | Not Found")}
	default:
		if card == nil {
			return fmt.Errorf("render %s: no card", state)
		}
		lines = r.cardLines(card, state)
	}

	_, err := io.WriteString(r.w, strings.Join(lines, "\n")+"\n")
	return err
}

func (r *Renderer) cardLines(card *models.Card, state reveal.State) []string {
	lines := []string{
		r.title.Sprintf("Happy Birthday, %s!", card.Name),
		r.accent.Sprintf("You're %d years old today!", card.Age),
		"",
	}
	lines = append(lines, r.candles(state.CandlesLit())...)
	lines = append(lines, "")

	switch state {
	case reveal.StateIdle:
		lines = append(lines, r.hint.Sprint("Blow out the candles to reveal your message!"))
	case reveal.StateListening:
		lines = append(lines, r.hint.Sprint("Listening... blow out the candles to reveal your message!"))
	case reveal.StateBlown:
		lines = append(lines, strings.Split(card.Message, "\n")...)
	}
	return lines
}

func (r *Renderer) candles(lit bool) []string {
	flames := make([]string, reveal.Candles)
	wicks := make([]string, reveal.Candles)
	for i := range flames {
		if lit {
			flames[i] = r.flame.Sprint(litGlyph)
		} else {
			flames[i] = r.smoke.Sprint(blownGlyph)
		}
		wicks[i] = r.wick.Sprint(wickGlyph)
	}
	width := reveal.Candles*(len(candleGap)+1) + 1
	return []string{
		"  " + strings.Join(flames, candleGap),
		"  " + strings.Join(wicks, candleGap),
		r.cake.Sprint(strings.Repeat(cakeGlyph, width)),
	}
}
