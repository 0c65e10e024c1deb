package widget

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// svgWriter accumulates an svg document.
type svgWriter struct {
	buf bytes.Buffer
}

// num formats a length in its shortest form.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escape returns the provided text escaped for xml content.
func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// open writes the svg root element.
func (w *svgWriter) open(width float64, height float64) {
	fmt.Fprintf(&w.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(width), num(height), num(width), num(height))
}

// close writes the closing svg root element and returns the document.
func (w *svgWriter) close() []byte {
	w.buf.WriteString(`</svg>`)
	return w.buf.Bytes()
}

// filterAttr returns the filter attribute referencing the provided filter, if any.
func filterAttr(filterID string) string {
	if filterID == "" {
		return ""
	}

	return fmt.Sprintf(` filter="url(#%s)"`, filterID)
}

// rect writes a filled rectangle.
func (w *svgWriter) rect(x, y, width, height, radius float64, fill string) {
	w.filteredRect(x, y, width, height, radius, fill, "")
}

// filteredRect writes a filled rectangle with the provided filter applied.
func (w *svgWriter) filteredRect(x, y, width, height, radius float64, fill string, filterID string) {
	fmt.Fprintf(&w.buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"%s/>`,
		num(x), num(y), num(width), num(height), num(radius), escape(fill), filterAttr(filterID))
}

// dropShadow writes a drop shadow filter offset vertically by dy.
func (w *svgWriter) dropShadow(id string, color string, opacity float64, dy float64, blur float64) {
	fmt.Fprintf(&w.buf, `<defs><filter id="%s" x="-20%%" y="-20%%" width="140%%" height="160%%">`+
		`<feDropShadow dx="0" dy="%s" stdDeviation="%s" flood-color="%s" flood-opacity="%s"/>`+
		`</filter></defs>`,
		id, num(dy), num(blur), escape(color), num(opacity))
}

// text writes a text element anchored at the provided baseline position.
func (w *svgWriter) text(x, y float64, anchor string, size float64, bold bool, fill string, content string) {
	weight := "normal"
	if bold {
		weight = "bold"
	}
	fmt.Fprintf(&w.buf, `<text x="%s" y="%s" text-anchor="%s" font-family="-apple-system, Helvetica, sans-serif" font-size="%s" font-weight="%s" fill="%s">%s</text>`,
		num(x), num(y), anchor, num(size), weight, escape(fill), escape(content))
}

// gradient writes a vertical linear gradient fading from the provided colour to transparent.
func (w *svgWriter) gradient(id string, color string, opacity float64) {
	fmt.Fprintf(&w.buf, `<defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`+
		`<stop offset="0" stop-color="%s" stop-opacity="%s"/>`+
		`<stop offset="1" stop-color="%s" stop-opacity="0"/>`+
		`</linearGradient></defs>`,
		id, escape(color), num(opacity), escape(color))
}

// area writes a path filled with the provided gradient.
func (w *svgWriter) area(data string, gradientID string) {
	fmt.Fprintf(&w.buf, `<path d="%s" fill="url(#%s)"/>`, data, gradientID)
}

// line writes a stroked path with round caps and joins.
func (w *svgWriter) line(data string, color string, width float64, filterID string) {
	fmt.Fprintf(&w.buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"%s/>`,
		data, escape(color), num(width), filterAttr(filterID))
}

// group writes a translated group around the provided body.
func (w *svgWriter) group(dx float64, dy float64, body []byte) {
	fmt.Fprintf(&w.buf, `<g transform="translate(%s %s)">`, num(dx), num(dy))
	w.buf.Write(body)
	w.buf.WriteString(`</g>`)
}
