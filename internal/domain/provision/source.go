package provision

import "fmt"

// Artifact describes an installable package and where to find it.
type Artifact struct {
	// Name is the package name as reported by the OS package store.
	Name string
	// FileName is the exact file name expected in the offline directory.
	FileName string
	// URL is the primary remote endpoint.
	URL string
	// FallbackURL is an optional secondary endpoint tried once after URL fails.
	FallbackURL string
}

// SourceKind tags where an artifact ends up being installed from.
type SourceKind int

// Source kinds.
const (
	SourceAlreadyInstalled SourceKind = iota
	SourceOfflineFile
	SourceRemoteURL
)

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	switch k {
	case SourceAlreadyInstalled:
		return "already-installed"
	case SourceOfflineFile:
		return "offline-file"
	case SourceRemoteURL:
		return "remote-url"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}

// Source is the resolved origin of one artifact.
// Location holds the file path for SourceOfflineFile and the URL for SourceRemoteURL.
type Source struct {
	Kind     SourceKind
	Location string
}

// AlreadyInstalled reports that nothing has to be installed.
func AlreadyInstalled() Source {
	return Source{Kind: SourceAlreadyInstalled}
}

// OfflineFile points at a pre-staged local file.
func OfflineFile(path string) Source {
	return Source{Kind: SourceOfflineFile, Location: path}
}

// RemoteURL points at a remote endpoint.
func RemoteURL(url string) Source {
	return Source{Kind: SourceRemoteURL, Location: url}
}

// String implements fmt.Stringer.
func (s Source) String() string {
	if s.Location == "" {
		return s.Kind.String()
	}

	return s.Kind.String() + "(" + s.Location + ")"
}
