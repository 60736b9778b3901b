package storage

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// folderPrefix normalises a folder name into a listing prefix ending in "/".
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}

func joinURL(base, path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// cacheControlHeader turns a bare seconds value ("3600") into a header value.
func cacheControlHeader(v string) string {
	for _, r := range v {
		if !unicode.IsDigit(r) {
			return v
		}
	}
	return "max-age=" + v
}

// ResumeObjectPath builds "<user>/<unix_millis>_<name>" for a new upload.
// The name is reduced to a safe ASCII form; the extension is kept lowercase.
func ResumeObjectPath(userID, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	safe := strings.Trim(b.String(), "._")
	if safe == "" {
		safe = "resume"
	}
	if len(safe) > 60 {
		safe = safe[:60]
	}
	return fmt.Sprintf("%s/%d_%s%s", strings.Trim(userID, "/"), now.UnixMilli(), safe, ext)
}
