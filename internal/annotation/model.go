// Package annotation owns the annotation and layer sets and the derived,
// segment-bucketed views the timeline renders from.
package annotation

// DefaultLayerID is the id of the layer every new project starts with
const DefaultLayerID = "default"

// DefaultText is the text of a freshly added annotation
const DefaultText = "New annotation"

// Annotation is a timestamped note on one layer
type Annotation struct {
	ID      string  `json:"id"`
	Time    float64 `json:"time"`
	Text    string  `json:"text"`
	LayerID string  `json:"layer"`
}

// Layer groups annotations under a name and colour.
// AnnotationCount is derived and recomputed by the Store on every mutation.
type Layer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Color           Color  `json:"color"`
	IsVisible       bool   `json:"isVisible"`
	IsActive        bool   `json:"isActive"`
	AnnotationCount int    `json:"annotationCount"`
}

// DefaultLayer returns the layer a new project starts with
func DefaultLayer() Layer {
	return Layer{
		ID:        DefaultLayerID,
		Name:      "Default",
		Color:     Palette[0],
		IsVisible: true,
		IsActive:  true,
	}
}
