package chart

import "testing"

func TestStepAfterPath(t *testing.T) {
	verts := []vertex{{10, 170}, {200, 100}, {390, 16.153846}}
	got := stepAfterPath(verts)
	want := "M10,170L200,170L200,100L390,100L390,16.15"
	if got != want {
		t.Fatalf("path %q, want %q", got, want)
	}
}

func TestStepAfterPathSinglePoint(t *testing.T) {
	if got := stepAfterPath([]vertex{{10, 170}}); got != "M10,170" {
		t.Fatalf("path %q, want bare move", got)
	}
}

func TestStepAfterPathEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty vertex list")
		}
	}()
	stepAfterPath(nil)
}

func TestParsePathRoundTrip(t *testing.T) {
	verts := []vertex{{10, 170}, {390, 170}, {390, 16.15}}
	path := stepAfterPath(verts[:1])
	if got := parsePath(path); len(got) != 1 || got[0] != verts[0] {
		t.Fatalf("round trip of %q gave %+v", path, got)
	}

	path = "M10,170L390,170L390,16.15"
	got := parsePath(path)
	if len(got) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(got))
	}
	for i, v := range verts {
		if got[i] != v {
			t.Fatalf("vertex %d: %+v != %+v", i, got[i], v)
		}
	}
}

func TestParsePathMalformedPanics(t *testing.T) {
	for _, path := range []string{"L1,2", "M1;2", "M1,2Lx,y"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for %q", path)
				}
			}()
			parsePath(path)
		}()
	}
}

func TestFormatCoord(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{16.153846, "16.15"},
		{16.156, "16.16"},
		{170.50, "170.5"},
	}
	for _, tc := range cases {
		if got := formatCoord(tc.in); got != tc.want {
			t.Fatalf("formatCoord(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
