package directory

// ResolveEndpoint picks the single endpoint to attempt to contact.
// A valid override always wins, even over an empty directory. Without
// one, a random endpoint is drawn from the directory. The second return
// is false when there is nothing to contact; callers must not attempt a
// connection in that case.
func ResolveEndpoint(override string, d *Directory) (Endpoint, bool) {
	if override != "" {
		if ep, err := ParseEndpoint(override); err == nil {
			return ep, true
		}
	}
	if d == nil {
		return Endpoint{}, false
	}
	return d.PickRandom()
}
