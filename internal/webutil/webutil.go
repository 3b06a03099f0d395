// Package webutil holds the small string helpers the front end shares
// with the server: theme image URLs, file-name incrementing, query
// strings and tag stripping.
package webutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Site describes the theme settings image URLs depend on.
type Site struct {
	WWWRoot        string
	Theme          string
	ThemeRev       int
	SlashArguments bool
	SVGIcons       bool
}

// ImageURL returns the theme URL for imagename. An empty component, or
// "moodle", means the core component.
func ImageURL(site Site, imagename, component string) string {
	if component == "" || component == "moodle" || component == "core" {
		component = "core"
	}

	url := site.WWWRoot + "/theme/image.php"
	if site.ThemeRev > 0 && site.SlashArguments {
		if !site.SVGIcons {
			url += "/_s"
		}
		return url + "/" + site.Theme + "/" + component + "/" + strconv.Itoa(site.ThemeRev) + "/" + imagename
	}

	url += "?theme=" + site.Theme + "&component=" + component + "&rev=" + strconv.Itoa(site.ThemeRev) + "&image=" + imagename
	if !site.SVGIcons {
		url += "&svg=0"
	}
	return url
}

var numberedName = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// IncrementFilename appends " (1)" to name, or bumps an existing " (N)"
// suffix. The extension (from the last dot) is kept at the end unless
// ignoreExtension is set, which suits folder names.
func IncrementFilename(name string, ignoreExtension bool) string {
	base, ext := name, ""
	if !ignoreExtension {
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			base, ext = name[:dot], name[dot:]
		}
	}

	n := 0
	if m := numberedName.FindStringSubmatch(base); m != nil {
		if v, err := strconv.Atoi(m[2]); err == nil {
			n = v
			base = m[1]
		}
	}
	return fmt.Sprintf("%s (%d)%s", base, n+1, ext)
}

// Param is one entry of an ordered parameter list. Value is a string, a
// number, or a list ([]string or decoded JSON []any) which is expanded as
// name[]=v for each element.
type Param struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// BuildQueryString joins params as a URL query string.
func BuildQueryString(params []Param) string {
	return joinParams(params, "&")
}

// BuildWindowOptions joins params as a window.open feature string.
func BuildWindowOptions(params []Param) string {
	return joinParams(params, ",")
}

func joinParams(params []Param, sep string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		name := EncodeURIComponent(p.Name)
		switch v := p.Value.(type) {
		case []string:
			for _, item := range v {
				parts = append(parts, name+"[]="+EncodeURIComponent(item))
			}
		case []any:
			for _, item := range v {
				parts = append(parts, name+"[]="+EncodeURIComponent(fmt.Sprint(item)))
			}
		default:
			parts = append(parts, name+"="+EncodeURIComponent(fmt.Sprint(v)))
		}
	}
	return strings.Join(parts, sep)
}

// EncodeURIComponent escapes s like the browser function of the same
// name: everything except letters, digits and -_.!~*'() is
// percent-encoded as UTF-8.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

var tagPattern = regexp.MustCompile(`<\S[^><]*>`)

// StripHTML removes anything that looks like a tag.
func StripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
