package cache

// Scope prefixes every key of k with "scope:", so that several projects
// can share one Redis database without reading each other's posters. A nil
// k means the default keyer; an empty scope returns k unchanged.
func Scope(k Keyer, scope string) Keyer {
	if k == nil {
		k = NewDefaultKeyer()
	}
	if scope == "" {
		return k
	}
	return scoped{inner: k, prefix: scope + ":"}
}

type scoped struct {
	inner  Keyer
	prefix string
}

func (s scoped) GraphKey(graphHash, eventsHash string) string {
	return s.prefix + s.inner.GraphKey(graphHash, eventsHash)
}

func (s scoped) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return s.prefix + s.inner.ArtifactKey(graphKey, opts)
}
