package chart

import (
	"bytes"
	"strconv"

	"github.com/dnldd/pricealerts/shared"
)

// formatCoord formats a coordinate with at most two decimals.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		return "0"
	}

	return s
}

// writePoint writes an svg path command for the provided point.
func writePoint(buf *bytes.Buffer, cmd byte, pt shared.NormalizedPoint) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}
	buf.WriteByte(cmd)
	buf.WriteByte(' ')
	buf.WriteString(formatCoord(pt.X))
	buf.WriteByte(' ')
	buf.WriteString(formatCoord(pt.Y))
}

// StrokeData encodes the stroke as svg path data.
func (p *Path) StrokeData() string {
	var buf bytes.Buffer
	for idx, pt := range p.Stroke {
		cmd := byte('L')
		if idx == 0 {
			cmd = 'M'
		}
		writePoint(&buf, cmd, pt)
	}

	return buf.String()
}

// FillData encodes the fill as closed svg path data starting at the viewport floor.
//
// The floor is taken from the closing point of the fill, so a translated path
// stays closed over its own floor.
func (p *Path) FillData() string {
	if len(p.Fill) == 0 {
		return ""
	}

	closing := p.Fill[len(p.Fill)-1]
	left := closing.X
	if len(p.Stroke) > 0 {
		left = p.Stroke[0].X
	}

	var buf bytes.Buffer
	writePoint(&buf, 'M', shared.NormalizedPoint{X: left, Y: closing.Y})
	for _, pt := range p.Fill {
		writePoint(&buf, 'L', pt)
	}
	buf.WriteString(" Z")

	return buf.String()
}
