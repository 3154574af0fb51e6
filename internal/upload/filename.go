package upload

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// SanitizeFilename reduces name to a portable ASCII file name with no path
// components. It may return "" when nothing usable is left.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	stem := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
	if windowsDeviceNames[stem] {
		name = "_" + name
	}
	return name
}

// DownloadName is the attachment name for a converted upload: the
// sanitized base name with an .xlsx extension.
func DownloadName(uploaded string) string {
	base := SanitizeFilename(uploaded)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "outline"
	}
	return base + ".xlsx"
}
