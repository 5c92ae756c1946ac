// Package config holds the run-wide Config struct every spec.md §6 flag
// maps onto, persisted as YAML (gopkg.in/yaml.v3) the way
// teacher/dbconf.go's DBConf persists as a colon-delimited CSV: a
// DefaultConfig literal, a Load/Write pair, and a FlagMerge that lets
// explicit command-line flags override a loaded config file field by
// field.
package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the run-wide set of tunables spec.md §6 exposes as flags, plus
// the pseudo-count and composition-bias controls SPEC_FULL.md supplements
// from original_source's PSSMCalculator.
type Config struct {
	// Alignment (§4.2)
	GapOpen   int32 `yaml:"gap_open"`
	GapExtend int32 `yaml:"gap_extend"`

	// Profile construction (§4.4)
	MatchRatio              float64   `yaml:"match_ratio"`
	FilterMSA                bool      `yaml:"filter_msa"`
	FilterMaxSeqID           float64   `yaml:"filter_max_seq_id"`
	CovMSAThr                float64   `yaml:"cov_msa_thr"`
	Qid                      []float64 `yaml:"qid"`
	Qsc                      float64   `yaml:"qsc"`
	Ndiff                    int       `yaml:"ndiff"`
	FilterMinEnable          int       `yaml:"filter_min_enable"`
	CompBiasCorrection       bool      `yaml:"comp_bias_correction"`
	CompBiasCorrectionScale  float64   `yaml:"comp_bias_correction_scale"`
	PCA                      float64   `yaml:"pca"`
	PCB                      float64   `yaml:"pcb"`
	PCMode                   int       `yaml:"pcmode"`

	// Guide tree (§4.3)
	Threads   int    `yaml:"threads"`
	ClusterDB string `yaml:"cluster_db"`
	GuideTree string `yaml:"guide_tree"`
	MaxSeqLen int    `yaml:"max_seq_len"`

	// Merge tie-break collaborators (§4.5, §6)
	TMAlignPath string `yaml:"tmalign_path"`

	// Refinement (§4.7)
	RefineIterations int `yaml:"refine_iterations"`
	RefineSeed       int64 `yaml:"refine_seed"`

	// Ambient
	Verbosity int    `yaml:"verbosity"`
	OutPrefix string `yaml:"out_prefix"`
}

// DefaultConfig is the package-level literal every run starts from,
// overridden by a loaded config file and then by explicit flags, the same
// two-stage precedence teacher/dbconf.go's LoadDBConf/FlagMerge implement.
var DefaultConfig = Config{
	GapOpen:   -11,
	GapExtend: -1,

	MatchRatio:              0.51,
	FilterMSA:                true,
	FilterMaxSeqID:           0.9,
	CovMSAThr:                0,
	Qid:                      nil,
	Qsc:                      -20.0,
	Ndiff:                    0,
	FilterMinEnable:          0,
	CompBiasCorrection:       true,
	CompBiasCorrectionScale:  1.0,
	PCA:                      1.0,
	PCB:                      1.5,
	PCMode:                   0,

	Threads:   1,
	ClusterDB: "",
	GuideTree: "",
	MaxSeqLen: 0,

	TMAlignPath: "",

	RefineIterations: 0,
	RefineSeed:       42,

	Verbosity: 1,
	OutPrefix: "result",
}

// Load reads a YAML config document, starting from DefaultConfig so an
// incomplete file only overrides the fields it mentions.
func Load(r io.Reader) (Config, error) {
	conf := DefaultConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return Config{}, err
	}
	return conf, nil
}

// Write serializes conf as YAML.
func (conf Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(conf)
}

// Changed is the set of flag names cobra reported as explicitly set on the
// command line (pflag.FlagSet.Changed), the same role teacher/dbconf.go's
// FlagMerge "only" map plays: fields named here came from the command
// line and win over whatever a loaded config file says.
type Changed map[string]bool

// FlagMerge overrides fileConf's fields with flagConf's wherever changed
// says the command line set that flag explicitly, and returns the merged
// result. flagConf is otherwise DefaultConfig plus whatever cobra parsed,
// so an unset flag still carries its default rather than a zero value.
func (flagConf Config) FlagMerge(fileConf Config, changed Changed) Config {
	merged := fileConf
	if changed["gap-open"] {
		merged.GapOpen = flagConf.GapOpen
	}
	if changed["gap-extend"] {
		merged.GapExtend = flagConf.GapExtend
	}
	if changed["match-ratio"] {
		merged.MatchRatio = flagConf.MatchRatio
	}
	if changed["filter-msa"] {
		merged.FilterMSA = flagConf.FilterMSA
	}
	if changed["filter-max-seq-id"] {
		merged.FilterMaxSeqID = flagConf.FilterMaxSeqID
	}
	if changed["cov-msa-thr"] {
		merged.CovMSAThr = flagConf.CovMSAThr
	}
	if changed["qid"] {
		merged.Qid = flagConf.Qid
	}
	if changed["qsc"] {
		merged.Qsc = flagConf.Qsc
	}
	if changed["ndiff"] {
		merged.Ndiff = flagConf.Ndiff
	}
	if changed["filter-min-enable"] {
		merged.FilterMinEnable = flagConf.FilterMinEnable
	}
	if changed["comp-bias-correction"] {
		merged.CompBiasCorrection = flagConf.CompBiasCorrection
	}
	if changed["comp-bias-correction-scale"] {
		merged.CompBiasCorrectionScale = flagConf.CompBiasCorrectionScale
	}
	if changed["pca"] {
		merged.PCA = flagConf.PCA
	}
	if changed["pcb"] {
		merged.PCB = flagConf.PCB
	}
	if changed["pcmode"] {
		merged.PCMode = flagConf.PCMode
	}
	if changed["threads"] {
		merged.Threads = flagConf.Threads
	}
	if changed["precluster"] {
		merged.ClusterDB = flagConf.ClusterDB
	}
	if changed["guide-tree"] {
		merged.GuideTree = flagConf.GuideTree
	}
	if changed["max-seq-len"] {
		merged.MaxSeqLen = flagConf.MaxSeqLen
	}
	if changed["tmalign-path"] {
		merged.TMAlignPath = flagConf.TMAlignPath
	}
	if changed["refine-iterations"] {
		merged.RefineIterations = flagConf.RefineIterations
	}
	if changed["refine-seed"] {
		merged.RefineSeed = flagConf.RefineSeed
	}
	if changed["verbosity"] {
		merged.Verbosity = flagConf.Verbosity
	}
	if changed["out-prefix"] {
		merged.OutPrefix = flagConf.OutPrefix
	}
	return merged
}
