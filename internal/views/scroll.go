package views

// ScrollThreshold is the vertical offset, in pixels, past which the
// scroll-to-top control is shown. The layout script reads it from
// TemplateData.
const ScrollThreshold = 20

// scrollToTopVisible is the comparison the layout script makes on every
// scroll event. The threshold itself is exclusive.
func scrollToTopVisible(offset float64) bool {
	return offset > ScrollThreshold
}
