package workspace

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"image-tagger/internal/database"
	"image-tagger/internal/metrics"
	"image-tagger/internal/tagstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func openWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	if opts.Throttle == 0 {
		opts.Throttle = -1
	}
	ws, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readSidecar(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestOpenMissingDirectory(t *testing.T) {
	_, err := Open(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("Open() of a missing directory should fail")
	}
}

func TestAddTagPersists(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"img1.png": "",
		"img1.txt": "cat",
	})
	ws := openWorkspace(t, Options{Dir: dir})

	if err := ws.AddTag("img1.png", "  dog "); err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := readSidecar(t, dir, "img1.txt"); got != "cat, dog" {
		t.Errorf("sidecar = %q, want %q", got, "cat, dog")
	}
	if err := ws.AddTag("img1.png", "bird"); !errors.Is(err, ErrClosed) {
		t.Errorf("AddTag after Close error = %v, want ErrClosed", err)
	}
}

func TestAddTagErrors(t *testing.T) {
	dir := setupDir(t, map[string]string{"img1.png": "", "img1.txt": "cat"})
	ws := openWorkspace(t, Options{Dir: dir})

	tests := []struct {
		name  string
		image string
		tag   string
		want  error
	}{
		{"empty tag", "img1.png", "   ", tagstore.ErrEmptyTag},
		{"duplicate tag", "img1.png", "cat", tagstore.ErrTagExists},
		{"unknown image", "nope.png", "cat", tagstore.ErrUnknownImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ws.AddTag(tt.image, tt.tag); !errors.Is(err, tt.want) {
				t.Errorf("AddTag(%q, %q) error = %v, want %v", tt.image, tt.tag, err, tt.want)
			}
		})
	}

	if tags, _ := ws.Tags("img1.png"); !slices.Equal(tags, []string{"cat"}) {
		t.Errorf("Tags() = %v, want unchanged", tags)
	}
}

func TestRemoveTag(t *testing.T) {
	dir := setupDir(t, map[string]string{"img1.png": "", "img1.txt": "cat, dog"})
	ws := openWorkspace(t, Options{Dir: dir})

	removed, err := ws.RemoveTag("img1.png", "cat")
	if err != nil || !removed {
		t.Fatalf("RemoveTag() = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = ws.RemoveTag("img1.png", "cat")
	if err != nil || removed {
		t.Errorf("second RemoveTag() = (%v, %v), want (false, nil)", removed, err)
	}
	if _, err := ws.RemoveTag("nope.png", "cat"); !errors.Is(err, tagstore.ErrUnknownImage) {
		t.Errorf("RemoveTag(unknown) error = %v", err)
	}

	// Removed tags stay in the vocabulary.
	if vocab := ws.Vocabulary(); !slices.Contains(vocab, "cat") {
		t.Errorf("Vocabulary() = %v, want cat kept", vocab)
	}

	if err := ws.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readSidecar(t, dir, "img1.txt"); got != "dog" {
		t.Errorf("sidecar = %q, want %q", got, "dog")
	}
}

func TestRenameAndDeleteTag(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"img1.png": "", "img1.txt": "cat, dog",
		"img2.png": "", "img2.txt": "dog",
		"img3.png": "", "img3.txt": "bird",
	})
	ws := openWorkspace(t, Options{Dir: dir})

	affected, err := ws.RenameTag("dog", "puppy")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(affected, []string{"img1.png", "img2.png"}) {
		t.Errorf("RenameTag affected = %v", affected)
	}

	affected, err = ws.RenameTag("unused", "other")
	if err != nil || len(affected) != 0 {
		t.Errorf("RenameTag(unused) = (%v, %v)", affected, err)
	}
	if _, err := ws.RenameTag("cat", " "); !errors.Is(err, tagstore.ErrEmptyTag) {
		t.Errorf("RenameTag to blank error = %v", err)
	}

	affected, err = ws.DeleteTag("bird")
	if err != nil || !slices.Equal(affected, []string{"img3.png"}) {
		t.Errorf("DeleteTag(bird) = (%v, %v)", affected, err)
	}
	if affected, _ := ws.DeleteTag("bird"); len(affected) != 0 {
		t.Errorf("second DeleteTag(bird) = %v, want none", affected)
	}

	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"img1.txt": "cat, puppy",
		"img2.txt": "puppy",
		"img3.txt": "",
	}
	for name, content := range want {
		if got := readSidecar(t, dir, name); got != content {
			t.Errorf("%s = %q, want %q", name, got, content)
		}
	}
}

func TestRenameTagIntoExistingTagMerges(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"img1.png": "", "img1.txt": "cat, dog",
		"img2.png": "", "img2.txt": "cat",
	})
	ws := openWorkspace(t, Options{Dir: dir})

	merged := metrics.StoreOperationsTotal.WithLabelValues("rename_tag", "merged")
	before := testutil.ToFloat64(merged)

	affected, err := ws.RenameTag("cat", " dog ")
	if err != nil || !slices.Equal(affected, []string{"img1.png", "img2.png"}) {
		t.Fatalf("RenameTag(cat, dog) = (%v, %v)", affected, err)
	}
	if got := testutil.ToFloat64(merged) - before; got != 1 {
		t.Errorf("merged renames = %v, want 1", got)
	}
	if got := ws.Vocabulary(); !slices.Equal(got, []string{"dog"}) {
		t.Errorf("Vocabulary() = %v", got)
	}

	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}
	if got := readSidecar(t, dir, "img1.txt"); got != "dog" {
		t.Errorf("img1.txt = %q, want %q", got, "dog")
	}
	if got := readSidecar(t, dir, "img2.txt"); got != "dog" {
		t.Errorf("img2.txt = %q, want %q", got, "dog")
	}
}

func TestFilterAndImage(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"img10.png": "", "img10.txt": "cat",
		"img2.png": "", "img2.txt": "cat, dog",
		"img1.png": "",
	})
	ws := openWorkspace(t, Options{Dir: dir})

	if got := ws.Images(); !slices.Equal(got, []string{"img1.png", "img2.png", "img10.png"}) {
		t.Errorf("Images() = %v", got)
	}
	if got := ws.Filter("cat, !(dog)"); !slices.Equal(got, []string{"img10.png"}) {
		t.Errorf("Filter() = %v", got)
	}
	if got := ws.Filter("  "); len(got) != 3 {
		t.Errorf("blank Filter() = %v, want all images", got)
	}

	detail, err := ws.Image("img2.png")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Index != 1 || !slices.Equal(detail.Tags, []string{"cat", "dog"}) {
		t.Errorf("Image() = %+v", detail)
	}
	if detail.Info.MimeType != "image/png" {
		t.Errorf("Info.MimeType = %q", detail.Info.MimeType)
	}
	if _, err := ws.Image("nope.png"); !errors.Is(err, tagstore.ErrUnknownImage) {
		t.Errorf("Image(unknown) error = %v", err)
	}
}

func TestVocabularyQueries(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"a.png": "", "a.txt": "Outdoor, indoor, dog",
		"b.png": "", "b.txt": "doghouse",
	})
	ws := openWorkspace(t, Options{Dir: dir})

	if got := ws.MatchVocabulary("DOOR"); !slices.Equal(got, []string{"indoor", "Outdoor"}) {
		t.Errorf("MatchVocabulary() = %v", got)
	}

	suggestions := ws.Suggest("dg", 10)
	if len(suggestions) != 2 || !slices.Contains(suggestions, "dog") || !slices.Contains(suggestions, "doghouse") {
		t.Errorf("Suggest(dg) = %v", suggestions)
	}
	if got := ws.Suggest("", 2); len(got) != 2 {
		t.Errorf("Suggest(\"\", 2) = %v", got)
	}
	if got := ws.Suggest("zzz", 10); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v", got)
	}

	states, err := ws.TagStates("b.png")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range states {
		if s.OnImage != (s.Name == "doghouse") {
			t.Errorf("TagState %+v", s)
		}
	}
	states, err = ws.TagStates("a.png")
	if err != nil {
		t.Fatal(err)
	}
	positions := map[string]int{}
	for _, s := range states {
		positions[s.Name] = s.Position
	}
	want := map[string]int{"Outdoor": 0, "indoor": 1, "dog": 2, "doghouse": -1}
	if !maps.Equal(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}
	if _, err := ws.TagStates("nope.png"); !errors.Is(err, tagstore.ErrUnknownImage) {
		t.Errorf("TagStates(unknown) error = %v", err)
	}
}

func TestReloadPicksUpNewImages(t *testing.T) {
	dir := setupDir(t, map[string]string{"a.png": ""})
	ws := openWorkspace(t, Options{Dir: dir})

	if err := ws.AddTag("a.png", "cat"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("dog"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := ws.Images(); !slices.Equal(got, []string{"a.png", "b.png"}) {
		t.Errorf("Images() = %v", got)
	}
	// The pending save for a.png was flushed before rescanning.
	if tags, _ := ws.Tags("a.png"); !slices.Equal(tags, []string{"cat"}) {
		t.Errorf("Tags(a.png) = %v", tags)
	}

	stats := ws.Stats()
	if stats.TotalImages != 2 || stats.TaggedImages != 2 || stats.VocabularySize != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
	if ms := ws.GetStats(); ms.TotalImages != 2 {
		t.Errorf("GetStats() = %+v", ms)
	}
}

func TestCatalogMirror(t *testing.T) {
	dir := setupDir(t, map[string]string{
		"a.png": "", "a.txt": "cat",
		"b.png": "", "b.txt": "cat, dog",
	})
	ws := openWorkspace(t, Options{Dir: dir, CatalogPath: filepath.Join(t.TempDir(), "catalog.db")})
	ctx := context.Background()

	counts, err := ws.TagCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(counts, []database.TagCount{{Name: "cat", Count: 2}, {Name: "dog", Count: 1}}) {
		t.Errorf("TagCounts() = %v", counts)
	}

	if err := ws.AddTag("a.png", "dog"); err != nil {
		t.Fatal(err)
	}
	if err := ws.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	images, err := ws.ImagesWithTag(ctx, "dog")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(images, []string{"a.png", "b.png"}) {
		t.Errorf("ImagesWithTag(dog) = %v", images)
	}

	tags, err := ws.CatalogTags(ctx, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tags, []string{"cat", "dog"}) {
		t.Errorf("CatalogTags(a.png) = %v", tags)
	}
}

func TestCatalogDisabled(t *testing.T) {
	ws := openWorkspace(t, Options{Dir: setupDir(t, map[string]string{"a.png": ""})})

	if _, err := ws.TagCounts(context.Background()); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("TagCounts() error = %v, want ErrNoCatalog", err)
	}
	if _, err := ws.ImagesWithTag(context.Background(), "cat"); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("ImagesWithTag() error = %v, want ErrNoCatalog", err)
	}
	if _, err := ws.CatalogTags(context.Background(), "a.png"); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("CatalogTags() error = %v, want ErrNoCatalog", err)
	}
}
