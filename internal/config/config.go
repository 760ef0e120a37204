// Package config loads YAML run files and converts them into colony
// configurations.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/beecolony/pkg/abc"
)

// Kinds of run.
const (
	KindContinuous = "continuous"
	KindBinary     = "binary"
)

// RunFile describes one optimization run. It is stored verbatim in
// checkpoints so a resumed run rebuilds the same colony.
type RunFile struct {
	Kind    string `yaml:"kind" json:"kind" validate:"required,oneof=continuous binary"`
	Problem string `yaml:"problem" json:"problem" validate:"required"`

	// Dim sizes continuous runs, Bits sizes binary runs.
	Dim  int `yaml:"dim" json:"dim,omitempty" validate:"required_if=Kind continuous,gte=0"`
	Bits int `yaml:"bits" json:"bits,omitempty" validate:"required_if=Kind binary,gte=0"`

	// Lower and Upper replace the problem's box (continuous) or the
	// method's default bound (binary) in every dimension.
	Lower *float64 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`

	Direction     string  `yaml:"direction" json:"direction" validate:"oneof=min max"`
	ColonySize    int     `yaml:"colony_size" json:"colonySize" validate:"gte=4,even"`
	Scouts        float64 `yaml:"scouts" json:"scouts" validate:"gte=0"`
	Iterations    int     `yaml:"iterations" json:"iterations" validate:"gte=1"`
	Seed          *int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
	NaNProtection bool    `yaml:"nan_protection" json:"nanProtection"`
	MaxNaNRetries int     `yaml:"max_nan_retries" json:"maxNanRetries" validate:"gte=0"`
	LogAgents     bool    `yaml:"log_agents" json:"logAgents"`
	Weighting     string  `yaml:"weighting" json:"weighting" validate:"oneof=proportional scaled"`

	Method              string `yaml:"method" json:"method" validate:"oneof=am bin"`
	Transfer            string `yaml:"transfer" json:"transfer" validate:"oneof=sigmoid sigmoid-2x sigmoid-x/2 sigmoid-x/3"`
	ResultFormat        string `yaml:"result_format" json:"resultFormat" validate:"oneof=best average"`
	BestModelIterations int    `yaml:"best_model_iterations" json:"bestModelIterations" validate:"gte=0"`
	NaNAttempts         int    `yaml:"nan_attempts" json:"nanAttempts" validate:"gte=0"`

	// Rounds is the number of Fit calls; a checkpoint is written after each.
	Rounds      int         `yaml:"rounds" json:"rounds" validate:"gte=1"`
	Convergence Convergence `yaml:"convergence" json:"convergence"`
}

// Convergence stops a run early when the best cost stalls.
type Convergence struct {
	// Patience is the number of rounds without improvement before stopping.
	// Zero disables early stopping.
	Patience  int     `yaml:"patience" json:"patience" validate:"gte=0"`
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"gte=0"`
}

// Default returns a continuous sphere run with the stock colony parameters.
func Default() RunFile {
	cfg := abc.DefaultBinaryConfig()
	return RunFile{
		Kind:          KindContinuous,
		Problem:       "sphere",
		Dim:           2,
		Direction:     cfg.Direction.String(),
		ColonySize:    cfg.ColonySize,
		Scouts:        cfg.Scouts,
		Iterations:    cfg.Iterations,
		NaNProtection: cfg.NaNProtection,
		Weighting:     cfg.Weighting.String(),
		Method:        cfg.Method.String(),
		Transfer:      cfg.Transfer.String(),
		ResultFormat:  cfg.ResultFormat.String(),
		NaNAttempts:   cfg.NaNAttempts,
		Rounds:        1,
		Convergence:   Convergence{Threshold: 1e-9},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	})
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Load reads a run file on top of the defaults, applies BEECOL_* environment
// overrides and validates the result.
func Load(path string) (RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunFile{}, fmt.Errorf("failed to read run file: %w", err)
	}
	run, err := Parse(data)
	if err != nil {
		return RunFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return run, nil
}

// Parse decodes YAML on top of the defaults, then validates.
func Parse(data []byte) (RunFile, error) {
	run := Default()
	if err := yaml.Unmarshal(data, &run); err != nil {
		return RunFile{}, fmt.Errorf("failed to parse run file: %w", err)
	}
	if err := loadFromEnv(&run); err != nil {
		return RunFile{}, err
	}
	if err := run.Validate(); err != nil {
		return RunFile{}, err
	}
	return run, nil
}

func loadFromEnv(run *RunFile) error {
	if v := os.Getenv("BEECOL_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &abc.ConfigError{Field: "BEECOL_SEED", Reason: err.Error()}
		}
		run.Seed = &seed
	}
	if v := os.Getenv("BEECOL_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &abc.ConfigError{Field: "BEECOL_ITERATIONS", Reason: err.Error()}
		}
		run.Iterations = n
	}
	return nil
}

// Validate runs the struct tag checks. The first failure is reported as an
// *abc.ConfigError naming the YAML key.
func (r RunFile) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return r.checkBounds()
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &abc.ConfigError{
			Field:  strings.TrimPrefix(fe.Namespace(), "RunFile."),
			Reason: fmt.Sprintf("failed %q check (value %v)", tagWithParam(fe), fe.Value()),
		}
	}
	return fmt.Errorf("failed to validate run file: %w", err)
}

func tagWithParam(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func (r RunFile) checkBounds() error {
	if (r.Lower == nil) != (r.Upper == nil) {
		return &abc.ConfigError{Field: "lower/upper", Reason: "must be given together"}
	}
	if r.Lower != nil {
		return abc.Boundaries{{Lower: *r.Lower, Upper: *r.Upper}}.Validate()
	}
	return nil
}

// Dimension is the length of the searched position vector.
func (r RunFile) Dimension() int {
	if r.Kind == KindBinary {
		return r.Bits
	}
	return r.Dim
}

// BoundsOverride returns the uniform box from Lower and Upper, or nil when
// the problem default applies.
func (r RunFile) BoundsOverride() abc.Boundaries {
	if r.Lower == nil || r.Upper == nil {
		return nil
	}
	return abc.UniformBoundaries(r.Dimension(), *r.Lower, *r.Upper)
}

// Config converts the shared colony parameters. Tokens are parsed by the
// abc package so unknown values fail here rather than mid-run.
func (r RunFile) Config(logger *slog.Logger) (abc.Config, error) {
	dir, err := abc.ParseDirection(r.Direction)
	if err != nil {
		return abc.Config{}, err
	}
	w, err := abc.ParseWeighting(r.Weighting)
	if err != nil {
		return abc.Config{}, err
	}
	cfg := abc.Config{
		ColonySize:    r.ColonySize,
		Scouts:        r.Scouts,
		Iterations:    r.Iterations,
		Direction:     dir,
		NaNProtection: r.NaNProtection,
		MaxNaNRetries: r.MaxNaNRetries,
		LogAgents:     r.LogAgents,
		Weighting:     w,
		Logger:        logger,
	}
	if r.Seed != nil {
		cfg.Seed = abc.Seed(*r.Seed)
	}
	return cfg, cfg.Validate()
}

// BinaryConfig converts a binary run.
func (r RunFile) BinaryConfig(logger *slog.Logger) (abc.BinaryConfig, error) {
	base, err := r.Config(logger)
	if err != nil {
		return abc.BinaryConfig{}, err
	}
	method, err := abc.ParseMethod(r.Method)
	if err != nil {
		return abc.BinaryConfig{}, err
	}
	transfer, err := abc.ParseTransfer(r.Transfer)
	if err != nil {
		return abc.BinaryConfig{}, err
	}
	format, err := abc.ParseResultFormat(r.ResultFormat)
	if err != nil {
		return abc.BinaryConfig{}, err
	}
	cfg := abc.BinaryConfig{
		Config:              base,
		BitsCount:           r.Bits,
		Boundaries:          r.BoundsOverride(),
		Method:              method,
		Transfer:            transfer,
		AngleModulation:     abc.DefaultAngleModulation(),
		ResultFormat:        format,
		BestModelIterations: r.BestModelIterations,
		NaNAttempts:         r.NaNAttempts,
	}
	return cfg, cfg.Validate()
}
