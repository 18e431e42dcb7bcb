package pathcodec

import "testing"

func TestSplitExt(t *testing.T) {
	cases := []struct {
		filename string
		base     string
		ext      string
	}{
		{"photo.jpg", "photo", "jpg"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"noext", "noext", ""},
		{".bashrc", ".bashrc", ""},
	}
	for _, c := range cases {
		base, ext := SplitExt(c.filename)
		if base != c.base || ext != c.ext {
			t.Errorf("SplitExt(%q) = (%q, %q), want (%q, %q)", c.filename, base, ext, c.base, c.ext)
		}
	}
}

func TestCompareWithExtOrderOrdersByDirectoryThenBaseThenExtOrder(t *testing.T) {
	if c := CompareWithExtOrder("/a/photo.jpg", "/b/photo.jpg", 0, 0, false); c >= 0 {
		t.Errorf("expected /a to sort before /b, got %d", c)
	}
	if c := CompareWithExtOrder("/dir/a.jpg", "/dir/b.jpg", 0, 0, false); c >= 0 {
		t.Errorf("expected a.jpg to sort before b.jpg, got %d", c)
	}
	// Same directory, same basename: primary (extOrder -1) sorts before a
	// sidecar (extOrder 0).
	if c := CompareWithExtOrder("/dir/photo.jpg", "/dir/photo.xmp", -1, 0, false); c >= 0 {
		t.Errorf("expected lower ext_order to sort first, got %d", c)
	}
}

func TestCompareWithExtOrderReverseNegatesExtOrderAndTiebreak(t *testing.T) {
	forward := CompareWithExtOrder("/dir/photo.jpg", "/dir/photo.xmp", -1, 0, false)
	reverse := CompareWithExtOrder("/dir/photo.jpg", "/dir/photo.xmp", -1, 0, true)
	if (forward < 0) == (reverse < 0) {
		t.Errorf("expected reverse to negate the forward comparison: forward=%d reverse=%d", forward, reverse)
	}
}

func TestChangeFilenamePreservesDirectory(t *testing.T) {
	newPath, oldBase, err := ChangeFilename("/library/2020/IMG_0001.jpg", "IMG_0001_edited.jpg")
	if err != nil {
		t.Fatalf("ChangeFilename failed: %v", err)
	}
	if oldBase != "IMG_0001.jpg" {
		t.Errorf("expected old basename %q, got %q", "IMG_0001.jpg", oldBase)
	}
	if got, want := newPath, "/library/2020/IMG_0001_edited.jpg"; got != want {
		t.Errorf("ChangeFilename path = %q, want %q", got, want)
	}
}
