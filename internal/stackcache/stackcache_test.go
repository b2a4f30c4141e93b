package stackcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ParsesCachePersist(t *testing.T) {
	dir := t.TempDir()
	data := `{"branches":[
		["main", {"parentBranchName": null, "children": ["feature"], "validationResult": "TRUNK"}],
		["feature", {"parentBranchName": "main", "children": [], "validationResult": "VALID"}]
	]}`
	if err := os.WriteFile(filepath.Join(dir, ".graphite_cache_persist"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewReal()
	cache, err := r.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	main, ok := cache.Branches["main"]
	if !ok || !main.IsTrunk || len(main.Children) != 1 || main.Children[0] != "feature" {
		t.Errorf("main = %+v", main)
	}
	feature, ok := cache.Branches["feature"]
	if !ok || feature.IsTrunk || feature.Parent != "main" {
		t.Errorf("feature = %+v", feature)
	}
}

func TestLoad_MissingFilesYieldEmptyCache(t *testing.T) {
	dir := t.TempDir()
	r := NewReal()
	cache, err := r.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.Branches) != 0 || len(cache.PRs) != 0 {
		t.Errorf("expected empty cache, got %+v", cache)
	}
}

func TestLoad_ParsesPRInfo(t *testing.T) {
	dir := t.TempDir()
	data := `{"prInfos":[{"headRefName":"feature","url":"https://example.com/1","prNumber":1,"state":"OPEN","isDraft":false}]}`
	if err := os.WriteFile(filepath.Join(dir, ".graphite_pr_info"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewReal()
	cache, err := r.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr, ok := cache.PRs["feature"]
	if !ok || pr.Number != 1 {
		t.Errorf("pr = %+v", pr)
	}
}
