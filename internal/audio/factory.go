package audio

import "strings"

// NewResolver picks a backend: files under dataDir when configured,
// otherwise in-memory.
func NewResolver(dataDir string) (Resolver, error) {
	if strings.TrimSpace(dataDir) != "" {
		return NewFileResolver(dataDir)
	}
	return NewInMemoryResolver(), nil
}
