// Package config holds the engine startup options.
//
// Options arrive either as a host mapping (the argument of initialize) or as
// a YAML file. Keys may be written with spaces, underscores or dashes
// ("on error", "on_error", "on-error"); they are normalised to the dash form
// before decoding.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/prologot/types"
	"github.com/nathoo/prologot/value"
)

// Config is the full set of startup options.
type Config struct {
	Home             string            `yaml:"home" mapstructure:"home"`
	Quiet            bool              `yaml:"quiet" mapstructure:"quiet"`
	Optimised        bool              `yaml:"optimised" mapstructure:"optimised"`
	Traditional      bool              `yaml:"traditional" mapstructure:"traditional"`
	Threads          bool              `yaml:"threads" mapstructure:"threads"`
	Packs            bool              `yaml:"packs" mapstructure:"packs"`
	OnError          types.ErrorPolicy `yaml:"on-error" mapstructure:"on-error"`
	OnWarning        types.ErrorPolicy `yaml:"on-warning" mapstructure:"on-warning"`
	StackLimit       string            `yaml:"stack-limit" mapstructure:"stack-limit"`
	TableSpace       string            `yaml:"table-space" mapstructure:"table-space"`
	SharedTableSpace string            `yaml:"shared-table-space" mapstructure:"shared-table-space"`
	InitFile         string            `yaml:"init-file" mapstructure:"init-file"`
	ScriptFile       string            `yaml:"script-file" mapstructure:"script-file"`
	Toplevel         string            `yaml:"toplevel" mapstructure:"toplevel"`
	Goal             []string          `yaml:"goal" mapstructure:"goal"`
	PrologFlags      map[string]string `yaml:"prolog-flags" mapstructure:"prolog-flags"`
	FileSearchPaths  map[string]string `yaml:"file-search-paths" mapstructure:"file-search-paths"`
	CustomArgs       []string          `yaml:"custom-args" mapstructure:"custom-args"`
}

// Default returns the options used when none are given.
func Default() Config {
	return Config{
		Quiet:     true,
		Threads:   true,
		Packs:     true,
		OnError:   types.PolicyPrint,
		OnWarning: types.PolicyPrint,
	}
}

// FromValue decodes a host options mapping on top of Default. Null yields
// the defaults. Unknown keys are an error.
func FromValue(v value.Value) (Config, error) {
	if v.IsNull() {
		return Default(), nil
	}
	raw, ok := v.Go().(map[string]any)
	if !ok {
		return Config{}, fmt.Errorf("options must be a mapping, got %s", v.Kind())
	}
	return fromMap(raw)
}

// Load reads options from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg, err := fromMap(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var keyReplacer = strings.NewReplacer(" ", "-", "_", "-")

// NormalizeKey maps an option key to its dash form.
func NormalizeKey(k string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSpace(k)))
}

func fromMap(raw map[string]any) (Config, error) {
	norm := make(map[string]any, len(raw))
	for k, v := range raw {
		norm[NormalizeKey(k)] = v
	}
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       boolToWord,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(norm); err != nil {
		return Config{}, fmt.Errorf("decoding options: %w", err)
	}
	if cfg.OnError == "" {
		cfg.OnError = types.PolicyPrint
	}
	if cfg.OnWarning == "" {
		cfg.OnWarning = types.PolicyPrint
	}
	return cfg, cfg.Validate()
}

// boolToWord keeps flag values like true readable as "true" instead of the
// weak-decoding default "1".
var boolToWord mapstructure.DecodeHookFuncKind = func(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.Bool && to == reflect.String {
		return strconv.FormatBool(data.(bool)), nil
	}
	return data, nil
}

// Validate checks the policy names.
func (c Config) Validate() error {
	for name, p := range map[string]types.ErrorPolicy{"on-error": c.OnError, "on-warning": c.OnWarning} {
		switch p {
		case types.PolicyPrint, types.PolicyStatus, types.PolicyHalt:
		default:
			return fmt.Errorf("%s: unknown policy %q (want print, status or halt)", name, p)
		}
	}
	return nil
}

// Argv assembles the startup argument vector these options stand for. It
// is recorded for diagnostics; the embedded engine takes no command line.
func (c Config) Argv() []string {
	argv := []string{"prologot"}
	if c.Quiet {
		argv = append(argv, "--quiet")
	}
	if c.Optimised {
		argv = append(argv, "-O")
	}
	if c.Traditional {
		argv = append(argv, "--traditional")
	}
	if !c.Threads {
		argv = append(argv, "--no-threads")
	}
	if !c.Packs {
		argv = append(argv, "--no-packs")
	}
	if c.OnError != "" && c.OnError != types.PolicyPrint {
		argv = append(argv, "--on-error="+string(c.OnError))
	}
	if c.OnWarning != "" && c.OnWarning != types.PolicyPrint {
		argv = append(argv, "--on-warning="+string(c.OnWarning))
	}
	if c.StackLimit != "" {
		argv = append(argv, "--stack-limit="+c.StackLimit)
	}
	if c.TableSpace != "" {
		argv = append(argv, "--table-space="+c.TableSpace)
	}
	if c.SharedTableSpace != "" {
		argv = append(argv, "--shared-table-space="+c.SharedTableSpace)
	}
	if c.InitFile != "" {
		argv = append(argv, "-f", c.InitFile)
	}
	if c.ScriptFile != "" {
		argv = append(argv, "-l", c.ScriptFile)
	}
	if c.Toplevel != "" {
		argv = append(argv, "-t", c.Toplevel)
	}
	for _, g := range c.Goal {
		if g != "" {
			argv = append(argv, "-g", g)
		}
	}
	for _, k := range sortedKeys(c.PrologFlags) {
		argv = append(argv, "-D", k+"="+c.PrologFlags[k])
	}
	for _, k := range sortedKeys(c.FileSearchPaths) {
		argv = append(argv, "-p", k+"="+c.FileSearchPaths[k])
	}
	return append(argv, c.CustomArgs...)
}

// Unsupported lists the options that were set but have no equivalent on
// the embedded engine.
func (c Config) Unsupported() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(c.Optimised, "optimised")
	add(c.Traditional, "traditional")
	add(!c.Threads, "threads")
	add(!c.Packs, "packs")
	add(c.StackLimit != "", "stack-limit")
	add(c.TableSpace != "", "table-space")
	add(c.SharedTableSpace != "", "shared-table-space")
	add(c.Toplevel != "", "toplevel")
	add(len(c.CustomArgs) > 0, "custom-args")
	return out
}

const (
	resScheme  = "res://"
	userScheme = "user://"
)

// Resolve maps res:// and user:// paths to the filesystem. res:// is
// relative to file-search-paths["res"], else home, else the working
// directory. user:// is relative to file-search-paths["user"], else
// ~/.prologot. Other paths are returned unchanged.
func (c Config) Resolve(path string) string {
	switch {
	case strings.HasPrefix(path, resScheme):
		return filepath.Join(c.resRoot(), filepath.FromSlash(strings.TrimPrefix(path, resScheme)))
	case strings.HasPrefix(path, userScheme):
		return filepath.Join(c.userRoot(), filepath.FromSlash(strings.TrimPrefix(path, userScheme)))
	}
	return path
}

func (c Config) resRoot() string {
	if p := c.FileSearchPaths["res"]; p != "" {
		return p
	}
	if c.Home != "" {
		return c.Home
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (c Config) userRoot() string {
	if p := c.FileSearchPaths["user"]; p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".prologot")
	}
	return ".prologot"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
