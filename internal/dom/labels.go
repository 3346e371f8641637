package dom

const (
	labelHide = "Hide ink"
	labelShow = "Show ink"
)

// toggleLabel is the visibility button text while the ink is shown or not.
func toggleLabel(visible bool) string {
	if visible {
		return labelHide
	}
	return labelShow
}
