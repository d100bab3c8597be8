package serial

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// headerProbeLimit bounds how much of an image is read while searching for
// the boot-configuration serial. Serials live in the first sectors; reading
// further is wasted I/O on multi-hundred-megabyte files.
const headerProbeLimit = 512 * 1024

// headerPattern is the raw byte layout discs store in their boot
// configuration: four-letter prefix, underscore, three digits, dot, two
// digits.
var headerPattern = regexp.MustCompile(`([A-Z]{4})_(\d{3})\.(\d{2})`)

var probeExtensions = map[string]struct{}{
	".bin": {},
	".iso": {},
}

// FromDiscHeader probes the first 512 KiB of a .bin or .iso image for the
// on-disc serial encoding and returns it in the canonical dashed form.
// Returns false for non-image extensions, files too short to carry a header
// match, or unreadable files; I/O failures are non-fatal by contract.
func FromDiscHeader(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := probeExtensions[ext]; !ok {
		return "", false
	}

	file, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer file.Close()

	buf := make([]byte, headerProbeLimit)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false
	}

	m := headerPattern.FindSubmatch(buf[:n])
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s%s", m[1], m[2], m[3]), true
}
