package template

import "strings"

// matchBlockHeader returns the block name if line is a "= NAME =" marker.
func matchBlockHeader(line string) (string, bool) {
	trimmed := strings.Trim(line, " ")
	if trimmed == "" || trimmed[0] != '=' || trimmed[len(trimmed)-1] != '=' {
		return "", false
	}
	name := strings.Trim(strings.Trim(trimmed, "="), " ")
	if name == "" || strings.Contains(name, " ") {
		return "", false
	}
	return name, true
}

// scanWires finds every "name:...000" token on a body line. The name runs
// from the last space to the colon; the placeholder is the first run of
// zeros after the colon.
func scanWires(line string, lineNo, width int) []Wire {
	var wires []Wire
	base := (lineNo - 1) * width
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			start = i + 1
		case ':':
			name := line[start:i]
			first := i + 1
			for first < len(line) && line[first] != '0' {
				first++
			}
			end := first
			for end < len(line) && line[end] == '0' {
				end++
			}
			if end == first {
				// no zero left on the line
				return wires
			}
			wires = append(wires, Wire{
				Name:   name,
				LenHex: end - first,
				Line:   lineNo,
				Column: first,
				Start:  base + first,
				End:    base + end - 1,
			})
			start = end
			i = end - 1
		}
	}
	return wires
}
