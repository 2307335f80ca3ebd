package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// chain is a run of legs of one checker in a sequence.
type chain struct {
	slots []int  // Origin followed by every arrival
	hits  []bool // hits[i] is set when the arrival slots[i+1] hit a blot
}

func (c *chain) end() int { return c.slots[len(c.slots)-1] }

// FormatMove renders seq in standard notation from the mover's
// perspective, for example "13/6", "bar/22*" or "6/off(2)".
func FormatMove(seq MoveSequence) string {
	return FormatLegs(seq.Side, seq.Legs)
}

// FormatLegs renders legs played by side.
//
// A leg extends an earlier chain only when it starts on the arrival
// point of that chain and the arrival was not continued yet. Hit arrivals
// stay visible inside a chain. Chains are listed by starting point,
// highest first, and identical chains are collapsed with a count.
func FormatLegs(side Side, legs []Leg) string {
	if len(legs) == 0 {
		return ""
	}

	var chains []*chain
	for _, l := range legs {
		from, to := int(l.From), int(l.To)
		var ext *chain
		for _, c := range chains {
			if c.end() == from && from != Off {
				ext = c
				break
			}
		}
		if ext == nil {
			ext = &chain{slots: []int{from}}
			chains = append(chains, ext)
		}
		ext.slots = append(ext.slots, to)
		ext.hits = append(ext.hits, l.Hit)
	}

	type rendered struct {
		text          string
		start, finish int
	}
	out := make([]rendered, len(chains))
	for i, c := range chains {
		out[i] = rendered{
			text:   formatChain(side, c),
			start:  pointNumber(side, c.slots[0]),
			finish: pointNumber(side, c.end()),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start > out[j].start
		}
		if out[i].finish != out[j].finish {
			return out[i].finish > out[j].finish
		}
		return out[i].text < out[j].text
	})

	parts := make([]string, 0, len(out))
	counts := make([]int, 0, len(out))
	for _, r := range out {
		if n := len(parts); n > 0 && parts[n-1] == r.text {
			counts[n-1]++
			continue
		}
		parts = append(parts, r.text)
		counts = append(counts, 1)
	}

	var sb strings.Builder
	for i, s := range parts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
		if counts[i] > 1 {
			fmt.Fprintf(&sb, "(%d)", counts[i])
		}
	}
	return sb.String()
}

// formatChain writes the origin, every arrival that hit, and the final
// arrival of c.
func formatChain(side Side, c *chain) string {
	var sb strings.Builder
	sb.WriteString(pointName(side, c.slots[0]))
	last := len(c.slots) - 1
	for i := 1; i <= last; i++ {
		hit := c.hits[i-1]
		if i < last && !hit {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(pointName(side, c.slots[i]))
		if hit {
			sb.WriteByte('*')
		}
	}
	return sb.String()
}

// pointNumber returns the mover-relative number of a slot, with the bar
// as 25 and off as 0.
func pointNumber(side Side, slot int) int {
	if slot == Off {
		return 0
	}
	return side.PointNumber(slot)
}

func pointName(side Side, slot int) string {
	switch n := pointNumber(side, slot); n {
	case 0:
		return "off"
	case 25:
		return "bar"
	default:
		return strconv.Itoa(n)
	}
}
