package separator

import (
	"fmt"
	"sort"

	"github.com/wildtrack-systems/camsort/internal/megadetector"
)

// Entry is one planned copy: a relative image path and the category folder
// it routes to.
type Entry struct {
	RelPath string
	Folder  string
}

// Plan is the routing decision for every image in a results file, computed
// before any file is touched.
type Plan struct {
	Entries  []Entry
	Folders  []string
	Counts   map[string]int
	Warnings []string
}

// BuildPlan routes every image in the results file.
//
// Routing: take each category's maximum confidence across the image's
// detections; a category hits when that maximum is strictly above its
// threshold. No hits routes to empty, one hit to that category's folder,
// several hits to multiple. Images the detector failed on are skipped with
// a warning — there is nothing to route them by.
func BuildPlan(results *megadetector.Results, opts Options) *Plan {
	plan := &Plan{Counts: make(map[string]int)}

	folders := map[string]bool{FolderEmpty: true, FolderMultiple: true}
	for _, name := range results.CategoryNames() {
		folders[folderName(name)] = true
	}
	for folder := range folders {
		plan.Folders = append(plan.Folders, folder)
	}
	sort.Strings(plan.Folders)

	for _, img := range results.Images {
		if img.Failure != "" {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("skipping %s: detector failure (%s)", img.File, img.Failure))
			continue
		}

		folder, warnings := routeImage(img, results, opts)
		plan.Warnings = append(plan.Warnings, warnings...)
		plan.Entries = append(plan.Entries, Entry{RelPath: img.File, Folder: folder})
		plan.Counts[folder]++
	}

	return plan
}

// routeImage picks the category folder for a single image.
func routeImage(img megadetector.ImageEntry, results *megadetector.Results, opts Options) (string, []string) {
	maxConf := make(map[string]float64, len(results.DetectionCategories))
	for _, name := range results.DetectionCategories {
		maxConf[name] = 0
	}

	var warnings []string
	for _, det := range img.Detections {
		name, ok := results.CategoryName(det.Category)
		if !ok {
			// Leftover near-zero COCO classes show up in some result
			// files; they carry no routing information.
			warnings = append(warnings,
				fmt.Sprintf("unrecognized category %s in file %s", det.Category, img.File))
			continue
		}
		if det.Conf > maxConf[name] {
			maxConf[name] = det.Conf
		}
	}

	var hits []string
	for _, name := range results.CategoryNames() {
		if maxConf[name] > opts.thresholdFor(name) {
			hits = append(hits, name)
		}
	}

	switch len(hits) {
	case 0:
		return FolderEmpty, warnings
	case 1:
		return folderName(hits[0]), warnings
	default:
		return FolderMultiple, warnings
	}
}

func folderName(category string) string {
	if friendly, ok := friendlyFolderNames[category]; ok {
		return friendly
	}
	return category
}
