package files

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateName_NoExtensionGetsSentinel(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := GenerateName("report", now)
	if got != "1700000000_report.bin" {
		t.Fatalf("want 1700000000_report.bin, got %q", got)
	}
}

func TestGenerateName_EmptyExtensionGetsSentinel(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := GenerateName("report.", now)
	if got != "1700000000_report.bin" {
		t.Fatalf("want 1700000000_report.bin, got %q", got)
	}
}

func TestGenerateName_PreservesBaseAndExtensionCase(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := GenerateName("photo.JPG", now)
	if got != "1700000000_photo.JPG" {
		t.Fatalf("want 1700000000_photo.JPG, got %q", got)
	}
}

func TestGenerateName_OnlyLastDotSplits(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := GenerateName("archive.tar.gz", now)
	if got != "1700000000_archive.tar.gz" {
		t.Fatalf("want 1700000000_archive.tar.gz, got %q", got)
	}
}

func TestGenerateName_StripsDirectories(t *testing.T) {
	now := time.Unix(1700000000, 0)

	for _, original := range []string{
		"../../etc/passwd.txt",
		"/tmp/passwd.txt",
		`C:\Users\evil\passwd.txt`,
	} {
		got := GenerateName(original, now)
		if got != "1700000000_passwd.txt" {
			t.Fatalf("original %q: want 1700000000_passwd.txt, got %q", original, got)
		}
		if strings.ContainsAny(got, `/\`) {
			t.Fatalf("generated name contains a separator: %q", got)
		}
	}
}

func TestGenerateName_DifferentSecondsNeverCollide(t *testing.T) {
	a := GenerateName("x.txt", time.Unix(1700000000, 0))
	b := GenerateName("x.txt", time.Unix(1700000001, 0))
	if a == b {
		t.Fatalf("names for different seconds collided: %q", a)
	}
}

func TestGenerateNameWithSuffix(t *testing.T) {
	now := time.Unix(1700000000, 0)

	got := GenerateNameWithSuffix("report", "a1b2", now)
	if got != "1700000000_report_a1b2.bin" {
		t.Fatalf("want 1700000000_report_a1b2.bin, got %q", got)
	}
}
