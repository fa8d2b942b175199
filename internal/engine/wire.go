package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// JSON forms used on the wire. Older clients send positions as [x, y] and
// scores as tuples or player-keyed maps; these are accepted here and nowhere
// else.

var jsonNull = []byte("null")

// MarshalJSON encodes None as null and seated players as 1 or 2.
func (p Player) MarshalJSON() ([]byte, error) {
	if p == None {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(int(p))), nil
}

// UnmarshalJSON accepts null, 0, 1 or 2.
func (p *Player) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*p = None
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("engine: player: %w", err)
	}
	v := Player(n)
	if v != None && !v.Valid() {
		return fmt.Errorf("engine: player %d out of range", n)
	}
	*p = v
	return nil
}

// UnmarshalJSON accepts {"x":..,"y":..} or [x, y]. Coordinates must be
// integral.
func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("engine: empty position")
	}

	var x, y float64
	switch data[0] {
	case '[':
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("engine: position: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("engine: position needs 2 coordinates, got %d", len(pair))
		}
		x, y = pair[0], pair[1]
	case '{':
		var obj struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("engine: position: %w", err)
		}
		if obj.X == nil || obj.Y == nil {
			return fmt.Errorf("engine: position missing x or y")
		}
		x, y = *obj.X, *obj.Y
	default:
		return fmt.Errorf("engine: position must be an object or array")
	}

	xi, err := integral(x)
	if err != nil {
		return err
	}
	yi, err := integral(y)
	if err != nil {
		return err
	}
	*p = Position{X: xi, Y: yi}
	return nil
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("engine: coordinate %v is not an integer", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("engine: coordinate %v out of range", f)
	}
	return int(f), nil
}

// UnmarshalJSON accepts {"player1":..,"player2":..}, {"1":..,"2":..} or a
// [p1, p2] tuple.
func (s *Scores) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []int
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("engine: scores: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("engine: scores tuple needs 2 values, got %d", len(pair))
		}
		*s = Scores{Player1: pair[0], Player2: pair[1]}
		return nil
	}

	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("engine: scores: %w", err)
	}
	var out Scores
	for k, v := range m {
		switch k {
		case "player1", "1":
			out.Player1 = v
		case "player2", "2":
			out.Player2 = v
		}
	}
	*s = out
	return nil
}
