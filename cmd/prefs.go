package cmd

import (
	"encoding/json"
	"io/fs"
	"strconv"
	"strings"

	"github.com/fzft/go-probe-table/dict"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// Preferences configure the prompt and the tables built by RESET. Zero
// values select the table defaults.
type Preferences struct {
	Prompt     string  `json:"prompt"`
	Capacity   int     `json:"capacity"`
	FillFactor float64 `json:"fill_factor"`
	Policy     string  `json:"policy"`
}

func DefaultPreferences() Preferences {
	return Preferences{Prompt: "probe"}
}

func (p Preferences) validate() error {
	if p.Capacity != 0 && p.Capacity < 2 {
		return errors.Errorf("capacity %d is below 2", p.Capacity)
	}
	if p.FillFactor < 0 || p.FillFactor > 1 {
		return errors.Errorf("fill factor %v is outside (0, 1]", p.FillFactor)
	}
	if p.Policy != "" {
		if _, err := dict.ParseStepPolicy(p.Policy); err != nil {
			return err
		}
	}
	return nil
}

func (p Preferences) tableOptions() ([]dict.Option, error) {
	var opts []dict.Option
	if p.Capacity > 0 {
		opts = append(opts, dict.WithCapacity(p.Capacity))
	}
	if p.FillFactor > 0 {
		opts = append(opts, dict.WithFillFactor(p.FillFactor))
	}
	if p.Policy != "" {
		policy, err := dict.ParseStepPolicy(p.Policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dict.WithStepPolicy(policy))
	}
	return opts, nil
}

// merge overrides p with the non-zero fields of o.
func (p Preferences) merge(o Preferences) Preferences {
	if o.Prompt != "" {
		p.Prompt = o.Prompt
	}
	if o.Capacity != 0 {
		p.Capacity = o.Capacity
	}
	if o.FillFactor != 0 {
		p.FillFactor = o.FillFactor
	}
	if o.Policy != "" {
		p.Policy = o.Policy
	}
	return p
}

// LoadPreferences reads the rc file, if any, and applies it. The file is
// JSON and may contain comments and trailing commas.
func (cli *Cli) LoadPreferences() error {
	path := getDotfilePath(CliRCFileEnv, CliRCFileDefault)
	if path == "" {
		return nil
	}
	return cli.loadPreferencesFile(path)
}

func (cli *Cli) loadPreferencesFile(path string) error {
	content, err := afero.ReadFile(cli.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read rc file")
	}

	var prefs Preferences
	if err := json.Unmarshal(jsonc.ToJSON(content), &prefs); err != nil {
		return errors.Wrapf(err, "decode rc file %s", path)
	}
	if err := prefs.validate(); err != nil {
		return errors.Wrapf(err, "rc file %s", path)
	}
	cli.config.prefs = cli.config.prefs.merge(prefs)
	cli.logger.Debug("preferences loaded", zap.String("file", path), zap.Any("prefs", cli.config.prefs))
	return nil
}

// Override applies the non-zero fields of prefs on top of the current
// preferences, typically from command-line flags.
func (cli *Cli) Override(prefs Preferences) error {
	if err := prefs.validate(); err != nil {
		return err
	}
	cli.config.prefs = cli.config.prefs.merge(prefs)
	return nil
}

// setPreference handles ":name value" lines. Table settings take effect on
// the next RESET.
func (cli *Cli) setPreference(argv []string) (reply, error) {
	name := strings.ToLower(strings.TrimPrefix(argv[0], ":"))
	if len(argv) < 2 {
		return nil, errors.Errorf("missing value for preference '%s'", name)
	}
	value := argv[1]

	prefs := cli.config.prefs
	switch name {
	case "prompt":
		prefs.Prompt = strings.Join(argv[1:], " ")
	case "policy":
		policy, err := dict.ParseStepPolicy(value)
		if err != nil {
			return nil, err
		}
		prefs.Policy = policy.String()
	case "capacity":
		n, err := strconv.Atoi(value)
		if err != nil || n < 2 {
			return nil, errors.Errorf("invalid capacity '%s'", value)
		}
		prefs.Capacity = n
	case "fill":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, errors.Errorf("invalid fill factor '%s'", value)
		}
		prefs.FillFactor = f
	default:
		return nil, errors.Errorf("unknown preference '%s'", name)
	}
	cli.config.prefs = prefs
	return statusReply("OK"), nil
}
