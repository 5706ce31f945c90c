package types

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// BehaviorType is the classification of a fault raised by the program under
// test.
type BehaviorType int

const (
	// BehaviorError marks a fault that reveals a probable bug.
	BehaviorError BehaviorType = iota
	// BehaviorExpected marks a fault that is a documented outcome.
	BehaviorExpected
	// BehaviorInvalid marks a fault caused by ill-formed inputs.
	BehaviorInvalid
)

func (b BehaviorType) String() string {
	switch b {
	case BehaviorError:
		return "ERROR"
	case BehaviorExpected:
		return "EXPECTED"
	case BehaviorInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// ParseBehaviorType parses "ERROR", "EXPECTED" or "INVALID", case-insensitively.
func ParseBehaviorType(s string) (BehaviorType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return BehaviorError, nil
	case "EXPECTED":
		return BehaviorExpected, nil
	case "INVALID":
		return BehaviorInvalid, nil
	}
	return 0, fmt.Errorf("unknown behavior type %q", s)
}

func (b BehaviorType) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b *BehaviorType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseBehaviorType(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BehaviorType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// ClassifierConfig holds the fault classification policy.
type ClassifierConfig struct {
	// ErrorClasses are fault classes treated as errors, by name
	// ("unchecked", "nil-dereference", ...).
	ErrorClasses []string `yaml:"error_classes"`
	// ErrorTypes are fault type names treated as errors.
	ErrorTypes []string `yaml:"error_types"`
	// ExpectedClasses are fault classes treated as expected outcomes.
	ExpectedClasses []string `yaml:"expected_classes"`
	// ExpectedTypes are fault type names treated as expected outcomes.
	ExpectedTypes []string `yaml:"expected_types"`
	// NilInputDereference classifies a nil dereference raised by a call
	// that received a nil input.
	NilInputDereference BehaviorType `yaml:"nil_input_dereference"`
	// ResourceExhaustion classifies out-of-memory, stack overflow and
	// timeout faults.
	ResourceExhaustion BehaviorType `yaml:"resource_exhaustion"`
}

// Config is the read-only configuration of the classification engine.
type Config struct {
	Name string `yaml:"name"`
	// ReportFlaky makes a fault at a non-final statement abort classification
	// with a sequence error instead of marking the sequence invalid.
	ReportFlaky bool `yaml:"report_flaky"`
	// IncludeAssertions enables regression value capture.
	IncludeAssertions bool `yaml:"include_assertions"`
	// StringMaxLen is the longest string captured in an assertion. Zero
	// disables the limit.
	StringMaxLen int `yaml:"string_max_len"`
	// InvalidChecksOverwrite lets a second invalid check replace the first.
	InvalidChecksOverwrite bool `yaml:"invalid_checks_overwrite"`
	// Contracts names the contracts to check, in evaluation order.
	Contracts []string `yaml:"contracts"`
	// OmitOperations are regular expressions over operation signatures.
	// Matching operations are never used as observers.
	OmitOperations []string `yaml:"omit_operations"`
	// VisiblePackages are packages whose unexported members are visible
	// to generated tests.
	VisiblePackages []string `yaml:"visible_packages"`
	// NondeterministicTypes are types whose values differ between runs.
	// Values derived from them are not captured.
	NondeterministicTypes []string `yaml:"nondeterministic_types"`

	Classifier ClassifierConfig `yaml:"classifier"`
}

// DefaultContracts lists the contracts checked by default, in order.
var DefaultContracts = []string{
	"equals-reflexive",
	"equals-nil",
	"equals-symmetric",
	"equals-hashcode",
	"equals-transitive",
	"compare-reflexive",
	"compare-antisymmetric",
	"compare-transitive",
	"string-no-panic",
	"hash-no-panic",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Name:                   "toracle",
		ReportFlaky:            true,
		IncludeAssertions:      true,
		StringMaxLen:           10000,
		InvalidChecksOverwrite: true,
		Contracts:              append([]string(nil), DefaultContracts...),
		NondeterministicTypes:  []string{"time.Time"},
		Classifier: ClassifierConfig{
			ErrorClasses:        []string{"unchecked", "nil-dereference"},
			ExpectedClasses:     []string{"checked"},
			NilInputDereference: BehaviorExpected,
			ResourceExhaustion:  BehaviorInvalid,
		},
	}
}

// Validate checks the parts of the configuration that can be checked
// without knowing the contract catalog.
func (c Config) Validate() error {
	if c.StringMaxLen < 0 {
		return fmt.Errorf("string_max_len must not be negative, got %d", c.StringMaxLen)
	}
	for _, expr := range c.OmitOperations {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("omit_operations: %w", err)
		}
	}
	seen := make(map[string]bool, len(c.Contracts))
	for _, name := range c.Contracts {
		if seen[name] {
			return fmt.Errorf("contracts: %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
