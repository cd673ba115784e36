package builder

import "strings"

// Preset geometries by prst name and display name.
var presets = []struct {
	prst    string
	display string
}{
	{"rect", "Rectangle"},
	{"roundRect", "Rounded Rectangle"},
	{"snip1Rect", "Snip Single Corner Rectangle"},
	{"snip2SameRect", "Snip Same Side Corner Rectangle"},
	{"round1Rect", "Round Single Corner Rectangle"},
	{"ellipse", "Oval"},
	{"triangle", "Isosceles Triangle"},
	{"rtTriangle", "Right Triangle"},
	{"parallelogram", "Parallelogram"},
	{"trapezoid", "Trapezoid"},
	{"diamond", "Diamond"},
	{"pentagon", "Regular Pentagon"},
	{"hexagon", "Hexagon"},
	{"heptagon", "Heptagon"},
	{"octagon", "Octagon"},
	{"decagon", "Decagon"},
	{"dodecagon", "Dodecagon"},
	{"pie", "Pie"},
	{"chord", "Chord"},
	{"teardrop", "Teardrop"},
	{"frame", "Frame"},
	{"halfFrame", "Half Frame"},
	{"corner", "L-Shape"},
	{"diagStripe", "Diagonal Stripe"},
	{"plus", "Cross"},
	{"plaque", "Plaque"},
	{"can", "Can"},
	{"cube", "Cube"},
	{"bevel", "Bevel"},
	{"donut", "Donut"},
	{"noSmoking", "No Symbol"},
	{"blockArc", "Block Arc"},
	{"foldedCorner", "Folded Corner"},
	{"smileyFace", "Smiley Face"},
	{"heart", "Heart"},
	{"lightningBolt", "Lightning Bolt"},
	{"sun", "Sun"},
	{"moon", "Moon"},
	{"cloud", "Cloud"},
	{"arc", "Arc"},
	{"bracketPair", "Double Bracket"},
	{"bracePair", "Double Brace"},
	{"line", "Line"},
	{"rightArrow", "Right Arrow"},
	{"leftArrow", "Left Arrow"},
	{"upArrow", "Up Arrow"},
	{"downArrow", "Down Arrow"},
	{"leftRightArrow", "Left-Right Arrow"},
	{"upDownArrow", "Up-Down Arrow"},
	{"chevron", "Chevron"},
	{"homePlate", "Pentagon"},
	{"star4", "4-Point Star"},
	{"star5", "5-Point Star"},
	{"star6", "6-Point Star"},
	{"star8", "8-Point Star"},
	{"star12", "12-Point Star"},
	{"ribbon", "Down Ribbon"},
	{"ribbon2", "Up Ribbon"},
	{"wedgeRectCallout", "Rectangular Callout"},
	{"wedgeRoundRectCallout", "Rounded Rectangular Callout"},
	{"wedgeEllipseCallout", "Oval Callout"},
	{"cloudCallout", "Cloud Callout"},
	{"flowChartProcess", "Flowchart: Process"},
	{"flowChartDecision", "Flowchart: Decision"},
	{"flowChartTerminator", "Flowchart: Terminator"},
	{"flowChartDocument", "Flowchart: Document"},
	{"flowChartConnector", "Flowchart: Connector"},
	{"mathPlus", "Plus"},
	{"mathMinus", "Minus"},
	{"mathMultiply", "Multiply"},
	{"mathDivide", "Division"},
	{"mathEqual", "Equal"},
}

// presetGeometry resolves a shape name to its prst value. Names match the
// prst value or the display name, ignoring case. Unknown names are rect.
func presetGeometry(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "rect"
	}
	for _, p := range presets {
		if strings.EqualFold(p.prst, name) || strings.EqualFold(p.display, name) {
			return p.prst
		}
	}
	return "rect"
}

// PresetNames lists the supported prst values.
func PresetNames() []string {
	out := make([]string, len(presets))
	for i, p := range presets {
		out[i] = p.prst
	}
	return out
}

// PresetDisplayNames maps each display name to its prst value.
func PresetDisplayNames() map[string]string {
	out := make(map[string]string, len(presets))
	for _, p := range presets {
		out[p.display] = p.prst
	}
	return out
}
