package grid

import "testing"

func TestLayout_KeyForIndex_RowMajor(t *testing.T) {
	l := DefaultLayout()
	cases := []struct {
		index int
		want  Key
	}{
		{0, Key{0, 0}},
		{99, Key{99, 0}},
		{100, Key{0, 1}},
		{249, Key{49, 2}},
		{9999, Key{99, 99}},
	}
	for _, tc := range cases {
		got, ok := l.KeyForIndex(tc.index)
		if !ok {
			t.Fatalf("KeyForIndex(%d) reported out of range", tc.index)
		}
		if got != tc.want {
			t.Fatalf("KeyForIndex(%d) = %v, want %v", tc.index, got, tc.want)
		}
	}
	if _, ok := l.KeyForIndex(10000); ok {
		t.Fatal("expected index beyond capacity to be rejected")
	}
	if _, ok := l.KeyForIndex(-1); ok {
		t.Fatal("expected negative index to be rejected")
	}
}

func TestLayout_ClampZoom(t *testing.T) {
	l := DefaultLayout()
	if got := l.ClampZoom(0.01); got != MinZoom {
		t.Fatalf("ClampZoom(0.01) = %v, want %v", got, MinZoom)
	}
	if got := l.ClampZoom(1e9); got != MaxZoom {
		t.Fatalf("ClampZoom(1e9) = %v, want %v", got, MaxZoom)
	}
	if got := l.ClampZoom(4); got != 4 {
		t.Fatalf("ClampZoom(4) = %v, want 4", got)
	}
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey(" 12 , 7 ")
	if !ok || k != (Key{12, 7}) {
		t.Fatalf("ParseKey returned %v, %v", k, ok)
	}
	for _, bad := range []string{"", "12", "1,2,3", "a,b", "1,", ",2", "1.5,2"} {
		if _, ok := ParseKey(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if got := (Key{3, 4}).String(); got != "3,4" {
		t.Fatalf("Key.String() = %q", got)
	}
}

func TestKeySet_KeysSortedRowMajor(t *testing.T) {
	s := NewKeySet(Key{2, 1}, Key{0, 1}, Key{5, 0})
	got := s.Keys()
	want := []Key{{5, 0}, {0, 1}, {2, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
	if !s.Equal(NewKeySet(Key{0, 1}, Key{2, 1}, Key{5, 0})) {
		t.Fatal("expected equal sets")
	}
	if s.Equal(NewKeySet(Key{0, 1})) {
		t.Fatal("expected unequal sets")
	}
}
