package canvas

// merger resolves what to show when two runes land on the same cell.
type merger struct {
	rules map[[2]rune]rune
}

func newMerger() *merger {
	m := &merger{rules: make(map[[2]rune]rune)}

	m.add('─', '│', '┼')

	// Corner + line = T-junction
	m.add('┌', '─', '┬')
	m.add('┌', '│', '├')
	m.add('┐', '─', '┬')
	m.add('┐', '│', '┤')
	m.add('└', '─', '┴')
	m.add('└', '│', '├')
	m.add('┘', '─', '┴')
	m.add('┘', '│', '┤')

	// Rounded path corners behave like square ones.
	m.add('╭', '─', '┬')
	m.add('╭', '│', '├')
	m.add('╮', '─', '┬')
	m.add('╮', '│', '┤')
	m.add('╰', '─', '┴')
	m.add('╰', '│', '├')
	m.add('╯', '─', '┴')
	m.add('╯', '│', '┤')

	m.add('┬', '│', '┼')
	m.add('┴', '│', '┼')
	m.add('├', '─', '┼')
	m.add('┤', '─', '┼')
	return m
}

// add registers a rule in both orders.
func (m *merger) add(a, b, result rune) {
	m.rules[[2]rune{a, b}] = result
	m.rules[[2]rune{b, a}] = result
}

// merge combines an existing rune with an incoming one. Markers always win
// and unknown pairs keep what was there.
func (m *merger) merge(existing, incoming rune) rune {
	switch {
	case existing == ' ' || existing == 0:
		return incoming
	case existing == incoming:
		return existing
	case isMarker(existing):
		return existing
	case isMarker(incoming):
		return incoming
	}
	if merged, ok := m.rules[[2]rune{existing, incoming}]; ok {
		return merged
	}
	return existing
}

func isMarker(r rune) bool {
	switch r {
	case '▶', '◀', '▲', '▼', '●':
		return true
	}
	return false
}
