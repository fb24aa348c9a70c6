// Package megadetector models the batch-output JSON produced by the
// camera-trap detector (MDv3/MDv4 format).
package megadetector

import "sort"

// Detection is a single bounding box with a confidence score. Category is
// the numeric category id as a string, resolved through the results file's
// category map.
type Detection struct {
	Category string    `json:"category"`
	Conf     float64   `json:"conf"`
	BBox     []float64 `json:"bbox,omitempty"`
}

// ImageEntry is the per-image record: a relative file path and the
// detections found in it. Failure is set instead of detections when the
// detector could not process the image.
type ImageEntry struct {
	File       string      `json:"file"`
	Detections []Detection `json:"detections"`
	Failure    string      `json:"failure,omitempty"`
	MaxConf    float64     `json:"max_detection_conf,omitempty"`
}

// Results is a parsed batch-output file.
type Results struct {
	Images              []ImageEntry      `json:"images"`
	DetectionCategories map[string]string `json:"detection_categories"`
	Info                map[string]any    `json:"info,omitempty"`
}

// CategoryName resolves a category id to its name.
func (r *Results) CategoryName(id string) (string, bool) {
	name, ok := r.DetectionCategories[id]
	return name, ok
}

// CategoryNames returns the sorted set of category names in the file.
func (r *Results) CategoryNames() []string {
	names := make([]string, 0, len(r.DetectionCategories))
	for _, name := range r.DetectionCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
