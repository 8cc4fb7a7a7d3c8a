package indesign

import "testing"

func TestPathStyleJoin(t *testing.T) {
	tests := []struct {
		name  string
		style PathStyle
		elem  []string
		want  string
	}{
		{"posix", PathStylePosix, []string{"/srv/ids/work", "ids-42", "a.indd"}, "/srv/ids/work/ids-42/a.indd"},
		{"posix trailing slash", PathStylePosix, []string{"/srv/ids/work/", "a.indd"}, "/srv/ids/work/a.indd"},
		{"windows", PathStyleWindows, []string{`C:\InDesign\work`, "ids-42", "a.indd"}, `C:\InDesign\work\ids-42\a.indd`},
		{"windows drive root", PathStyleWindows, []string{`C:\`, "a.indd"}, `C:\a.indd`},
		{"windows forward slashes", PathStyleWindows, []string{"D:/shared/", "/ids-1/", "out.pdf"}, `D:\shared\ids-1\out.pdf`},
		{"nfc", PathStylePosix, []string{"/w", "Cafe\u0301.indd"}, "/w/Caf\u00e9.indd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.Join(tt.elem...); got != tt.want {
				t.Errorf("Join(%q) = %q, want %q", tt.elem, got, tt.want)
			}
		})
	}
}

func TestParsePathStyle(t *testing.T) {
	for in, want := range map[string]PathStyle{"": PathStylePosix, "posix": PathStylePosix, "Windows": PathStyleWindows} {
		got, err := ParsePathStyle(in)
		if err != nil || got != want {
			t.Errorf("ParsePathStyle(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePathStyle("mac"); err == nil {
		t.Error("ParsePathStyle(mac) expected error")
	}
}
