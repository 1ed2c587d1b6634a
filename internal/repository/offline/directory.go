package offline

import (
	"bytes"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename lists checksums of the staged artifacts.
	ManifestFilename = "manifest.yaml"

	// DefaultFileMode is used for staged artifacts and the manifest.
	DefaultFileMode os.FileMode = 0o644

	// DefaultDirMode is used when the offline directory has to be created.
	DefaultDirMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	// ErrNoManifest is returned by LoadManifest when the directory carries no manifest.
	ErrNoManifest = errors.New("offline manifest not found")
	// ErrChecksumMismatch is returned when a staged file differs from the manifest.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	errHashUnavailable = errors.New("hash function unavailable")
)

// Manifest records what a stage run placed in the directory.
type Manifest struct {
	// CreatedBy identifies the tool build that staged the files.
	CreatedBy string `yaml:"created_by"`
	// Files maps file names to base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// NewManifest returns an empty manifest.
func NewManifest(createdBy string) *Manifest {
	return &Manifest{
		CreatedBy: createdBy,
		Files:     make(map[string]string),
	}
}

// Directory is an offline artifact directory.
type Directory struct {
	// path is the directory location.
	path string
}

// NewDirectory wraps the directory at path. The directory need not exist.
func NewDirectory(path string) *Directory {
	return &Directory{
		path: filepath.Clean(path),
	}
}

// Path returns the directory location.
func (d *Directory) Path() string {
	return d.path
}

// Lookup returns the path of fileName if it is a regular file in the directory.
func (d *Directory) Lookup(fileName string) (string, bool) {
	path := filepath.Join(d.path, fileName)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	return path, true
}

// LoadManifest reads manifest.yaml from the directory.
func (d *Directory) LoadManifest() (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Join(d.path, ManifestFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoManifest
		}

		return nil, fmt.Errorf("read offline manifest: %w", err)
	}

	manifest := NewManifest("")
	if err = yaml.Unmarshal(contents, manifest); err != nil {
		return nil, fmt.Errorf("decode offline manifest: %w", err)
	}

	return manifest, nil
}

// SaveManifest writes manifest.yaml into the directory.
func (d *Directory) SaveManifest(manifest *Manifest) error {
	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode offline manifest: %w", err)
	}

	if err = os.MkdirAll(d.path, DefaultDirMode); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(d.path, ManifestFilename), contents, DefaultFileMode)
}

// Verify checks fileName against the manifest. Without a manifest, or when the
// manifest does not list the file, presence alone is enough.
func (d *Directory) Verify(fileName string) error {
	manifest, err := d.LoadManifest()
	if errors.Is(err, ErrNoManifest) {
		return nil
	}

	if err != nil {
		return err
	}

	encoded, ok := manifest.Files[fileName]
	if !ok {
		return nil
	}

	expected, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("checksum for %s: %w", fileName, err)
	}

	actual, err := FileChecksum(filepath.Join(d.path, fileName))
	if err != nil {
		return err
	}

	if !bytes.Equal(expected, actual) {
		return fmt.Errorf("%s: %w", fileName, ErrChecksumMismatch)
	}

	return nil
}

// Stage atomically places the contents of source at fileName inside the directory,
// replacing an older copy. checksum must be the DefaultChecksumFunction digest of source.
func (d *Directory) Stage(fileName, source string, checksum []byte) error {
	data, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return err
	}

	if err = os.MkdirAll(d.path, DefaultDirMode); err != nil {
		return err
	}

	target := filepath.Join(d.path, fileName)

	// The target has to exist before go-update can swap it out.
	var createdPlaceholder bool

	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var placeholder *os.File

		if placeholder, err = os.Create(target); err != nil {
			return err
		}

		createdPlaceholder = true

		if err = placeholder.Close(); err != nil {
			_ = os.Remove(target)
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		// An empty placeholder would pass Lookup and break a later offline install.
		if createdPlaceholder {
			_ = os.Remove(target)
		}

		return fmt.Errorf("stage %s: %w", fileName, err)
	}

	oldFileName := filepath.Join(d.path, "."+fileName+".old")
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// FileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
