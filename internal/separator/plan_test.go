package separator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wildtrack-systems/camsort/internal/megadetector"
)

func testResults(images ...megadetector.ImageEntry) *megadetector.Results {
	return &megadetector.Results{
		Images: images,
		DetectionCategories: map[string]string{
			"1": "animal",
			"2": "person",
			"3": "vehicle",
		},
	}
}

func TestRouteImage(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name       string
		detections []megadetector.Detection
		opts       Options
		want       string
	}{
		{
			name:       "no detections goes to empty",
			detections: nil,
			opts:       opts,
			want:       FolderEmpty,
		},
		{
			name: "below threshold goes to empty",
			detections: []megadetector.Detection{
				{Category: "1", Conf: 0.5},
			},
			opts: opts,
			want: FolderEmpty,
		},
		{
			name: "exactly at threshold does not hit",
			detections: []megadetector.Detection{
				{Category: "1", Conf: DefaultThreshold},
			},
			opts: opts,
			want: FolderEmpty,
		},
		{
			name: "single category above threshold",
			detections: []megadetector.Detection{
				{Category: "1", Conf: 0.9},
				{Category: "1", Conf: 0.3},
			},
			opts: opts,
			want: "animals",
		},
		{
			name: "person maps to friendly folder",
			detections: []megadetector.Detection{
				{Category: "2", Conf: 0.95},
			},
			opts: opts,
			want: "people",
		},
		{
			name: "two categories above threshold go to multiple",
			detections: []megadetector.Detection{
				{Category: "1", Conf: 0.9},
				{Category: "2", Conf: 0.8},
			},
			opts: opts,
			want: FolderMultiple,
		},
		{
			name: "category override lowers the bar",
			detections: []megadetector.Detection{
				{Category: "3", Conf: 0.5},
			},
			opts: Options{
				DefaultThreshold:   DefaultThreshold,
				CategoryThresholds: map[string]float64{"vehicle": 0.4},
			},
			want: "vehicles",
		},
		{
			name: "category override raises the bar",
			detections: []megadetector.Detection{
				{Category: "1", Conf: 0.8},
			},
			opts: Options{
				DefaultThreshold:   DefaultThreshold,
				CategoryThresholds: map[string]float64{"animal": 0.9},
			},
			want: FolderEmpty,
		},
		{
			name: "unknown category id is ignored",
			detections: []megadetector.Detection{
				{Category: "42", Conf: 0.99},
				{Category: "1", Conf: 0.9},
			},
			opts: opts,
			want: "animals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := testResults(megadetector.ImageEntry{
				File:       "cam/img.jpg",
				Detections: tt.detections,
			})
			got, _ := routeImage(results.Images[0], results, tt.opts)
			if got != tt.want {
				t.Errorf("routeImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteImage_UnknownCategoryWarns(t *testing.T) {
	results := testResults(megadetector.ImageEntry{
		File: "cam/img.jpg",
		Detections: []megadetector.Detection{
			{Category: "42", Conf: 0.00001},
		},
	})

	folder, warnings := routeImage(results.Images[0], results, DefaultOptions())
	if folder != FolderEmpty {
		t.Errorf("routeImage() = %q, want empty", folder)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "unrecognized category 42") {
		t.Errorf("warnings = %v, want one unrecognized-category warning", warnings)
	}
}

func TestBuildPlan(t *testing.T) {
	results := testResults(
		megadetector.ImageEntry{
			File:       "a/b/1.jpg",
			Detections: []megadetector.Detection{{Category: "1", Conf: 0.9}},
		},
		megadetector.ImageEntry{
			File:       "a/b/2.jpg",
			Detections: nil,
		},
		megadetector.ImageEntry{
			File: "a/b/3.jpg",
			Detections: []megadetector.Detection{
				{Category: "1", Conf: 0.9},
				{Category: "3", Conf: 0.8},
			},
		},
		megadetector.ImageEntry{
			File:    "a/b/4.jpg",
			Failure: "Failure image access",
		},
	)

	plan := BuildPlan(results, DefaultOptions())

	wantFolders := []string{"animals", "empty", "multiple", "people", "vehicles"}
	if !reflect.DeepEqual(plan.Folders, wantFolders) {
		t.Errorf("Folders = %v, want %v", plan.Folders, wantFolders)
	}

	if len(plan.Entries) != 3 {
		t.Fatalf("got %d entries, want 3 (failure image skipped)", len(plan.Entries))
	}
	wantEntries := []Entry{
		{RelPath: "a/b/1.jpg", Folder: "animals"},
		{RelPath: "a/b/2.jpg", Folder: FolderEmpty},
		{RelPath: "a/b/3.jpg", Folder: FolderMultiple},
	}
	if !reflect.DeepEqual(plan.Entries, wantEntries) {
		t.Errorf("Entries = %v, want %v", plan.Entries, wantEntries)
	}

	wantCounts := map[string]int{"animals": 1, "empty": 1, "multiple": 1}
	if !reflect.DeepEqual(plan.Counts, wantCounts) {
		t.Errorf("Counts = %v, want %v", plan.Counts, wantCounts)
	}

	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "a/b/4.jpg") {
		t.Errorf("Warnings = %v, want one skip warning for the failed image", plan.Warnings)
	}
}

func TestFolderName(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"animal", "animals"},
		{"person", "people"},
		{"vehicle", "vehicles"},
		{"deer", "deer"},
	}
	for _, tt := range tests {
		if got := folderName(tt.category); got != tt.want {
			t.Errorf("folderName(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}
