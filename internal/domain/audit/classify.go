package audit

import (
	"net/http"
	"regexp"
	"strings"

	"colisflow/internal/core/id"
)

// skipPrefixes never produce an audit entry, whatever the method or outcome.
var skipPrefixes = []string{
	"/health",
	"/metrics",
	"/api/docs",
	"/favicon.ico",
}

var (
	versionSegment = regexp.MustCompile(`^v[0-9]+$`)
	numericSegment = regexp.MustCompile(`^[0-9]+$`)
)

// ShouldSkip reports whether path is on the denylist. A version segment after
// /api/ is ignored, so /api/v1/docs is skipped like /api/docs.
func ShouldSkip(path string) bool {
	p := strings.ToLower(stripVersion(path))
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// ClassifyAction maps an HTTP method to an audit action.
func ClassifyAction(method string) Action {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionUnknown
	}
}

// ClassifyEntity returns the first path segment after /api/ (skipping a
// version segment) and the first later segment that looks like an identifier.
//
//	/api/colis/5                                -> colis, 5
//	/api/v1/registers/<uuid>/disbursements      -> registers, <uuid>
//	/api/v1/reports/cash                        -> reports, ""
func ClassifyEntity(path string) (entity, entityID string) {
	rest, ok := afterAPI(path)
	if !ok {
		return UnknownEntity, ""
	}

	segments := splitPath(rest)
	if len(segments) > 0 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return UnknownEntity, ""
	}

	entity = segments[0]
	for _, s := range segments[1:] {
		if numericSegment.MatchString(s) || id.Looks(s) {
			return entity, s
		}
	}
	return entity, ""
}

func afterAPI(path string) (string, bool) {
	const marker = "/api/"
	i := strings.Index(path, marker)
	if i < 0 {
		return "", false
	}
	return path[i+len(marker):], true
}

func stripVersion(path string) string {
	rest, ok := afterAPI(path)
	if !ok {
		return path
	}
	segments := splitPath(rest)
	if len(segments) > 0 && versionSegment.MatchString(segments[0]) {
		return "/api/" + strings.Join(segments[1:], "/")
	}
	return path
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
