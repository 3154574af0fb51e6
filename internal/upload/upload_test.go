package upload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testPolicy() Policy {
	return Policy{MaxBytes: 1 << 20, AllowedExtensions: []string{"pdf"}}
}

func TestPolicyCheck_Accepts(t *testing.T) {
	for _, name := range []string{"report.pdf", "REPORT.PDF", "a.b.Pdf"} {
		if err := testPolicy().Check(name, 10); err != nil {
			t.Errorf("expected %q to pass, got %v", name, err)
		}
	}
}

func TestPolicyCheck_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		reason   error
	}{
		{"no filename", "", 10, ErrNoFilename},
		{"blank filename", "   ", 10, ErrNoFilename},
		{"wrong extension", "report.docx", 10, ErrBadExtension},
		{"no extension", "report", 10, ErrBadExtension},
		{"empty", "report.pdf", 0, ErrEmpty},
		{"too large", "report.pdf", 1<<20 + 1, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testPolicy().Check(tt.filename, tt.size)
			var ie *InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InputError, got %v", err)
			}
			if !errors.Is(err, tt.reason) {
				t.Errorf("expected reason %v, got %v", tt.reason, ie.Reason)
			}
		})
	}
}

func TestPolicyCheck_UnknownSize(t *testing.T) {
	if err := testPolicy().Check("report.pdf", -1); err != nil {
		t.Fatalf("expected unknown size to pass, got %v", err)
	}
}

func TestPolicyCheck_ExtensionMessage(t *testing.T) {
	p := Policy{AllowedExtensions: []string{".PDF", " pdfa "}}
	err := p.Check("x.txt", 1)
	want := "file type is not allowed: only .pdf, .pdfa files are accepted"
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		512:      "512 B",
		1536:     "1.5 KB",
		50 << 20: "50 MB",
		3 << 30:  "3 GB",
	}
	for n, want := range tests {
		if got := HumanBytes(n); got != want {
			t.Errorf("HumanBytes(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"My cool report.pdf", "My_cool_report.pdf"},
		{"../../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\plan.pdf`, "C_Users_me_plan.pdf"},
		{"Übersicht März.pdf", "Ubersicht_Marz.pdf"},
		{"CON.pdf", "_CON.pdf"},
		{"   ", ""},
		{"...", ""},
		{"a<b>c?.pdf", "abc.pdf"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDownloadName(t *testing.T) {
	tests := map[string]string{
		"report.PDF":      "report.xlsx",
		"Q3 summary.pdf":  "Q3_summary.xlsx",
		"../secret.pdf":   "secret.xlsx",
		"":                "outline.xlsx",
		"archive.tar.pdf": "archive.tar.xlsx",
	}
	for in, want := range tests {
		if got := DownloadName(in); got != want {
			t.Errorf("DownloadName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestWorkspace_Lifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "storage")
	ws, err := NewWorkspace(root)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	info, err := os.Stat(ws.Dir)
	if err != nil {
		t.Fatalf("stat workspace: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("expected mode 0700, got %o", perm)
	}

	if err := ws.SaveInput([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("SaveInput: %v", err)
	}
	if err := os.WriteFile(ws.OutputPath(), []byte("xlsx"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ws.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("expected workspace to be gone, stat returned %v", err)
	}
	if err := ws.Remove(); err != nil {
		t.Errorf("expected second Remove to succeed, got %v", err)
	}
}

func TestWorkspace_Unique(t *testing.T) {
	root := t.TempDir()
	a, err := NewWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	if a.Dir == b.Dir || a.InputPath() == b.InputPath() || a.OutputPath() == b.OutputPath() {
		t.Fatalf("expected distinct workspaces, got %s and %s", a.Dir, b.Dir)
	}
}

func TestPurgeWorkspaces(t *testing.T) {
	root := t.TempDir()
	stale, err := NewWorkspace(root)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if err := stale.SaveInput([]byte("%PDF")); err != nil {
		t.Fatalf("SaveInput: %v", err)
	}
	keep := filepath.Join(root, "notes")
	if err := os.Mkdir(keep, 0o700); err != nil {
		t.Fatal(err)
	}

	n, err := PurgeWorkspaces(root)
	if err != nil {
		t.Fatalf("PurgeWorkspaces: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 workspace purged, got %d", n)
	}
	if _, err := os.Stat(stale.Dir); !os.IsNotExist(err) {
		t.Errorf("expected stale workspace removed, stat returned %v", err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("expected unrelated directory kept, got %v", err)
	}

	if n, err := PurgeWorkspaces(filepath.Join(root, "missing")); err != nil || n != 0 {
		t.Errorf("expected missing root to be a no-op, got %d, %v", n, err)
	}
}
