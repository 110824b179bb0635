package cache

import "strings"

// GlobalKeyPrefix namespaces every cache key this application writes.
const GlobalKeyPrefix = "selfanalysis"

// GenerateCacheKey builds a colon-separated key: prefix:service:object:id.
// Optional params are joined with "_" and appended as one extra segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	segments := []string{GlobalKeyPrefix, serviceName, objectType, identifier}
	if len(paramsKey) > 0 {
		segments = append(segments, strings.Join(paramsKey, "_"))
	}
	return strings.Join(segments, ":")
}
