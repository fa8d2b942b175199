package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("size = %dx%d, expected 80x24", s.Width(), s.Height())
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != (Cell{Rune: ' '}) {
				t.Fatalf("new screen cell (%d, %d) = %+v, expected blank", x, y, c)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	s.SetCell(6, 5, Cell{Rune: '●', Color: ColorRed})
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}
	if c := s.GetCell(6, 5); c.Rune != '●' || c.Color != ColorRed {
		t.Errorf("GetCell(6, 5) = %+v", c)
	}

	// Out of bounds writes are ignored.
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawText(0, 1, "abcd", ColorBlue)
	s.Clear()

	for y := 0; y < 3; y++ {
		if got := s.Row(y); got != "    " {
			t.Errorf("row %d after Clear = %q", y, got)
		}
	}
	if c := s.GetCell(1, 1); c.Color != ColorDefault {
		t.Errorf("color after Clear = %v, expected default", c.Color)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 5)
	s.SetCell(1, 1, Cell{Rune: 'A', Color: ColorBlue})
	s.Set(4, 4, 'Z')

	s.Resize(3, 3)
	if s.Width() != 3 || s.Height() != 3 {
		t.Fatalf("size after shrink = %dx%d", s.Width(), s.Height())
	}
	if c := s.GetCell(1, 1); c.Rune != 'A' || c.Color != ColorBlue {
		t.Errorf("content not preserved: %+v", c)
	}

	s.Resize(6, 4)
	if s.Get(1, 1) != 'A' {
		t.Error("content lost on grow")
	}
	if s.Get(5, 3) != ' ' {
		t.Error("new area should be blank")
	}
}

func TestScreenDrawText(t *testing.T) {
	tests := []struct {
		name     string
		x        int
		text     string
		expected string
	}{
		{"start", 0, "Hello", "Hello     "},
		{"offset", 3, "Hi", "   Hi     "},
		{"clipped right", 7, "World", "       Wor"},
		{"clipped left", -2, "abcd", "cd        "},
		{"multibyte", 1, "●○", " ●○       "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(10, 1)
			s.DrawText(tt.x, 0, tt.text, ColorDefault)
			if got := s.Row(0); got != tt.expected {
				t.Errorf("Row(0) = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(9, 1)
	s.DrawTextCentered(0, "●●●", ColorYellow)

	if got := s.Row(0); got != "   ●●●   " {
		t.Errorf("Row(0) = %q", got)
	}
	if s.GetCell(4, 0).Color != ColorYellow {
		t.Error("centered text lost its color")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(5, 4)
	s.DrawBox(NewRect(0, 0, 5, 4), ColorGray)

	expected := strings.Join([]string{
		"┌───┐",
		"│   │",
		"│   │",
		"└───┘",
	}, "\n")
	if got := s.String(); got != expected {
		t.Errorf("box:\n%s\nexpected:\n%s", got, expected)
	}
	if s.GetCell(0, 0).Color != ColorGray {
		t.Error("box should use the given color")
	}

	// Degenerate boxes draw nothing.
	s.Clear()
	s.DrawBox(NewRect(0, 0, 1, 4), ColorGray)
	if strings.TrimSpace(s.String()) != "" {
		t.Error("1-wide box should not draw")
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawText(0, 0, "ABC", ColorDefault)
	s.DrawText(0, 1, "DEF", ColorDefault)

	if got := s.String(); got != "ABC\nDEF" {
		t.Errorf("String() = %q", got)
	}
	if got := s.Row(5); got != "   " {
		t.Errorf("Row out of range = %q", got)
	}
}
