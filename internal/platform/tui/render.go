package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/ctor/internal/core"
	"github.com/vovakirdan/ctor/internal/engine"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:     lipgloss.NewStyle(),
	core.ColorRed:         lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorBlue:        lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorYellow:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorGreen:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorMagenta:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorGray:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorBrightRed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	core.ColorBrightBlue:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	core.ColorBrightWhite: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells of the same color share one escape sequence.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// helpHeight is the number of rows reserved below a board screen for the
// help line.
const helpHeight = 1

// Board cells are drawn cellWidth characters wide: a marker on each side
// of the piece.
const cellWidth = 3

// boardView is what a board drawing shows on top of the pieces.
type boardView struct {
	board      engine.Board
	cursor     engine.Position
	showCursor bool
	// candidates are opponent cells the player to move could take.
	candidates map[engine.Position]bool
	// flipped are the cells captured by the last move.
	flipped map[engine.Position]bool
}

// boardRect is the screen area a board of the given size needs, border
// included.
func boardRect(size engine.Size) core.Rect {
	return core.NewRect(0, 0, size.Width*cellWidth+2, size.Height+2)
}

// drawBoard draws v with its top-left corner at (x, y).
func drawBoard(s *core.Screen, x, y int, v boardView) {
	size := v.board.Size
	frame := boardRect(size)
	frame.X, frame.Y = x, y
	s.DrawBox(frame, core.ColorGray)

	for row := 0; row < size.Height; row++ {
		for col := 0; col < size.Width; col++ {
			p := engine.Pos(col, row)
			cx := x + 1 + col*cellWidth
			cy := y + 1 + row

			s.SetCell(cx+1, cy, pieceCell(v, p))
			if v.showCursor && v.cursor == p {
				s.SetCell(cx, cy, core.Cell{Rune: '[', Color: core.ColorBrightWhite})
				s.SetCell(cx+2, cy, core.Cell{Rune: ']', Color: core.ColorBrightWhite})
			}
		}
	}
}

func pieceCell(v boardView, p engine.Position) core.Cell {
	owner := v.board.Cell(p)
	switch {
	case owner == engine.None:
		return core.Cell{Rune: '·', Color: core.ColorGray}
	case v.candidates[p]:
		return core.Cell{Rune: '◆', Color: core.ColorYellow}
	case v.flipped[p]:
		return core.Cell{Rune: '●', Color: brightColorOf(owner)}
	}
	return core.Cell{Rune: '●', Color: colorOf(owner)}
}

func colorOf(p engine.Player) core.Color {
	switch p {
	case engine.Player1:
		return core.ColorRed
	case engine.Player2:
		return core.ColorBlue
	}
	return core.ColorDefault
}

func brightColorOf(p engine.Player) core.Color {
	switch p {
	case engine.Player1:
		return core.ColorBrightRed
	case engine.Player2:
		return core.ColorBrightBlue
	}
	return core.ColorDefault
}

// flipSet indexes flips by position.
func flipSet(flips []engine.Flip) map[engine.Position]bool {
	if len(flips) == 0 {
		return nil
	}
	out := make(map[engine.Position]bool, len(flips))
	for _, f := range flips {
		out[f.Position] = true
	}
	return out
}

// candidateSet indexes the capture candidates that meet the threshold.
func candidateSet(cands []engine.ReplaceCandidate) map[engine.Position]bool {
	out := make(map[engine.Position]bool)
	for _, c := range cands {
		if c.IsValid {
			out[c.Position] = true
		}
	}
	return out
}

// scoreLine renders both scores, marking the player to move.
func scoreLine(state engine.GameState) string {
	mark := func(p engine.Player) string {
		if !state.GameOver && state.CurrentPlayer == p {
			return "▶"
		}
		return " "
	}
	return fmt.Sprintf("%s Red %d   %s Blue %d",
		mark(engine.Player1), state.Scores.Player1,
		mark(engine.Player2), state.Scores.Player2)
}

// resultLine describes a finished game.
func resultLine(state engine.GameState) string {
	switch state.Winner {
	case engine.Player1:
		return "Red wins!"
	case engine.Player2:
		return "Blue wins!"
	}
	return "Draw."
}

// sideName is the color a player plays.
func sideName(p engine.Player) string {
	switch p {
	case engine.Player1:
		return "Red"
	case engine.Player2:
		return "Blue"
	}
	return "-"
}

// reasonText turns a rejected move into a status line.
func reasonText(err error) string {
	switch engine.ReasonOf(err) {
	case engine.ReasonCellOccupied:
		return "That cell is taken."
	case engine.ReasonNoOperationsLeft:
		return "No placements left: press e to end the turn."
	case engine.ReasonNotYourTurn:
		return "Not your turn."
	case engine.ReasonNotCapturable:
		return "That cell cannot be captured."
	case engine.ReasonGameOver:
		return "The game is over."
	}
	return err.Error()
}

// BoardText draws a board without color, for printing outside a TUI.
func BoardText(state engine.GameState, last *engine.Position) string {
	frame := boardRect(state.Board.Size)
	s := core.NewScreen(frame.W, frame.H)
	v := boardView{board: state.Board}
	if last != nil {
		v.cursor = *last
		v.showCursor = true
	}
	drawBoard(s, 0, 0, v)
	return s.String()
}
