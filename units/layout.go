package units

import "sort"

// Layout is a named slide size preset.
type Layout struct {
	Name   string // preset key, e.g. LAYOUT_16x9
	Type   string // value of sldSz/@type
	Width  int64
	Height int64
}

const (
	Layout4x3   = "LAYOUT_4x3"
	Layout16x9  = "LAYOUT_16x9"
	Layout16x10 = "LAYOUT_16x10"
	LayoutWide  = "LAYOUT_WIDE"
)

var layouts = map[string]Layout{
	Layout4x3:   {Name: Layout4x3, Type: "screen4x3", Width: 9144000, Height: 6858000},
	Layout16x9:  {Name: Layout16x9, Type: "screen16x9", Width: 9144000, Height: 5143500},
	Layout16x10: {Name: Layout16x10, Type: "screen16x10", Width: 9144000, Height: 5715000},
	LayoutWide:  {Name: LayoutWide, Type: "custom", Width: 12191996, Height: 6858000},
}

// DefaultLayout is the 16:9 preset.
func DefaultLayout() Layout { return layouts[Layout16x9] }

// LayoutByName looks up a preset by its key.
func LayoutByName(name string) (Layout, bool) {
	l, ok := layouts[name]
	return l, ok
}

// LayoutNames lists the preset keys in sorted order.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for k := range layouts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
