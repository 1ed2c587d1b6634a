package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/winget-bootstrap/internal/domain/provision"
)

// Endpoints lists the remote locations artifacts are fetched from.
type Endpoints struct {
	// VCLibs is the VC runtime framework package URL.
	VCLibs string `yaml:"vclibs"`
	// UIXaml is the UI framework package URL.
	UIXaml string `yaml:"ui_xaml"`
	// Runtime is the primary runtime bundle URL.
	Runtime string `yaml:"runtime"`
	// RuntimeFallback is tried once when the primary runtime install fails.
	RuntimeFallback string `yaml:"runtime_fallback"`
}

// Config holds the settings of a bootstrap run.
type Config struct {
	// Endpoints are the remote artifact URLs.
	Endpoints Endpoints `yaml:"endpoints"`
	// OfflineDir holds pre-staged artifacts; relative paths resolve beside the executable.
	OfflineDir string `yaml:"offline_dir"`
	// PackageList is the optional list of packages to install once the runtime works.
	PackageList string `yaml:"package_list"`
	// Timeout bounds a single artifact download.
	Timeout time.Duration `yaml:"timeout"`
	// MinTLSVersion is the lowest TLS version accepted by the HTTP client ("1.2" or "1.3").
	MinTLSVersion string `yaml:"min_tls_version"`
}

const (
	// DefaultConfigFilename is the default filename for bootstrap settings.
	DefaultConfigFilename = "winget-bootstrap.yaml"

	// DefaultOfflineDir is the directory beside the executable holding staged artifacts.
	DefaultOfflineDir = "offline"

	// DefaultPackageList is the package list beside the executable.
	DefaultPackageList = "packages.txt"

	// DefaultTimeout bounds a single download; bundles weigh a few hundred megabytes.
	DefaultTimeout = 10 * time.Minute

	// DefaultMinTLSVersion is the TLS floor for all downloads.
	DefaultMinTLSVersion = "1.2"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// Package names as reported by the OS package store, and offline file names.
const (
	VCLibsPackage  = "Microsoft.VCLibs.140.00.UWPDesktop"
	UIXamlPackage  = "Microsoft.UI.Xaml.2.8"
	RuntimePackage = "Microsoft.DesktopAppInstaller"

	VCLibsFile  = "Microsoft.VCLibs.x64.14.00.Desktop.appx"
	UIXamlFile  = "Microsoft.UI.Xaml.2.8.x64.appx"
	RuntimeFile = "Microsoft.DesktopAppInstaller_8wekyb3d8bbwe.msixbundle"
)

// Well-known default endpoints.
const (
	DefaultVCLibsURL          = "https://aka.ms/Microsoft.VCLibs.x64.14.00.Desktop.appx"
	DefaultUIXamlURL          = "https://github.com/microsoft/microsoft-ui-xaml/releases/download/v2.8.6/Microsoft.UI.Xaml.2.8.x64.appx"
	DefaultRuntimeURL         = "https://aka.ms/getwinget"
	DefaultRuntimeFallbackURL = "https://github.com/microsoft/winget-cli/releases/latest/download/Microsoft.DesktopAppInstaller_8wekyb3d8bbwe.msixbundle"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEndpointRequired is returned when an endpoint is blank after defaults are applied.
	errEndpointRequired = errors.New("endpoint must be provided")
	// errUnsupportedTLSVersion is returned for TLS floors other than 1.2 and 1.3.
	errUnsupportedTLSVersion = errors.New("unsupported minimum TLS version")
)

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Endpoints: Endpoints{
			VCLibs:          DefaultVCLibsURL,
			UIXaml:          DefaultUIXamlURL,
			Runtime:         DefaultRuntimeURL,
			RuntimeFallback: DefaultRuntimeFallbackURL,
		},
		OfflineDir:    DefaultOfflineDir,
		PackageList:   DefaultPackageList,
		Timeout:       DefaultTimeout,
		MinTLSVersion: DefaultMinTLSVersion,
	}
}

// Load reads configuration from path. A missing file yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for blank fields and checks endpoint URLs and the TLS floor.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.OfflineDir == "" {
		cfg.OfflineDir = DefaultOfflineDir
	}

	if cfg.PackageList == "" {
		cfg.PackageList = DefaultPackageList
	}

	if cfg.MinTLSVersion == "" {
		cfg.MinTLSVersion = DefaultMinTLSVersion
	}

	if _, err := cfg.TLSVersion(); err != nil {
		return err
	}

	endpoints := []struct {
		name, value string
	}{
		{"vclibs", cfg.Endpoints.VCLibs},
		{"ui_xaml", cfg.Endpoints.UIXaml},
		{"runtime", cfg.Endpoints.Runtime},
		{"runtime_fallback", cfg.Endpoints.RuntimeFallback},
	}

	for _, e := range endpoints {
		name, endpoint := e.name, e.value
		if endpoint == "" {
			return fmt.Errorf("%s: %w", name, errEndpointRequired)
		}

		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("invalid %s endpoint: %w", name, err)
		}
	}

	return nil
}

// TLSVersion maps MinTLSVersion to its crypto/tls constant.
func (c *Config) TLSVersion() (uint16, error) {
	switch c.MinTLSVersion {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("%w: %s", errUnsupportedTLSVersion, c.MinTLSVersion)
	}
}

// Dependencies returns the shared-framework packages in install order.
func (c *Config) Dependencies() []provision.Artifact {
	return []provision.Artifact{
		{Name: VCLibsPackage, FileName: VCLibsFile, URL: c.Endpoints.VCLibs},
		{Name: UIXamlPackage, FileName: UIXamlFile, URL: c.Endpoints.UIXaml},
	}
}

// Runtime returns the runtime bundle with both of its endpoints.
func (c *Config) Runtime() provision.Artifact {
	return provision.Artifact{
		Name:        RuntimePackage,
		FileName:    RuntimeFile,
		URL:         c.Endpoints.Runtime,
		FallbackURL: c.Endpoints.RuntimeFallback,
	}
}

// Artifacts returns every artifact the offline directory may hold.
func (c *Config) Artifacts() []provision.Artifact {
	return append(c.Dependencies(), c.Runtime())
}

// ResolvePath anchors a relative path at base; absolute paths are returned cleaned.
func ResolvePath(base, path string) string {
	if path == "" {
		return ""
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(base, path)
}

// ExecutableDir returns the directory holding the running binary, or "." when unknown.
func ExecutableDir() string {
	executable, err := os.Executable()
	if err != nil {
		return "."
	}

	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}

	return filepath.Dir(executable)
}
