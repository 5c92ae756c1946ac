package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ndaniels/foldalign"
	"github.com/ndaniels/foldalign/collab"
	"github.com/ndaniels/foldalign/config"
	"github.com/ndaniels/foldalign/merge"
	"github.com/ndaniels/foldalign/profile"
	"github.com/ndaniels/foldalign/refine"
	"github.com/ndaniels/foldalign/store"
	"github.com/ndaniels/foldalign/tree"
)

var (
	flagConfigFile string

	flagAAPath, flagTDIPath, flagCADir string
	flagOutPrefix                      string

	flagGapOpen, flagGapExtend         int32
	flagMatchRatio                     float64
	flagFilterMSA                      bool
	flagFilterMaxSeqID, flagCovMSAThr  float64
	flagQid                           []float64
	flagQsc                           float64
	flagNdiff                         int
	flagFilterMinEnable                int
	flagCompBiasCorrection             bool
	flagCompBiasCorrectionScale        float64
	flagPCA, flagPCB                   float64
	flagPCMode                         int
	flagThreads                        int
	flagPrecluster                     string
	flagGuideTree                      string
	flagTMAlignPath                    string
	flagMaxSeqLen                      int
	flagRefineIterations               int
	flagRefineSeed                     int64
)

var msaCmd = &cobra.Command{
	Use:   "msa",
	Short: "Align a set of protein structures into one multiple structure alignment",
	RunE:  runMSA,
}

func init() {
	f := msaCmd.Flags()
	f.StringVar(&flagConfigFile, "config", "", "YAML config file (§6); explicit flags override its values")

	f.StringVar(&flagAAPath, "aa", "", "input AA multi-FASTA path (required)")
	f.StringVar(&flagTDIPath, "3di", "", "input 3Di multi-FASTA path (required)")
	f.StringVar(&flagCADir, "ca-dir", "", "directory of per-structure <header>.ca coordinate files (required)")
	f.StringVar(&flagOutPrefix, "out-prefix", config.DefaultConfig.OutPrefix, "output file prefix")

	f.Int32Var(&flagGapOpen, "gap-open", config.DefaultConfig.GapOpen, "affine gap open penalty (negative)")
	f.Int32Var(&flagGapExtend, "gap-extend", config.DefaultConfig.GapExtend, "affine gap extend penalty (negative)")

	f.Float64Var(&flagMatchRatio, "match-ratio", config.DefaultConfig.MatchRatio, "Henikoff mask gap-fraction threshold")
	f.BoolVar(&flagFilterMSA, "filter-msa", config.DefaultConfig.FilterMSA, "enable identity/coverage MSA filtering before profile construction")
	f.Float64Var(&flagFilterMaxSeqID, "filter-max-seq-id", config.DefaultConfig.FilterMaxSeqID, "drop members at or above this pairwise identity to an already-kept member")
	f.Float64Var(&flagCovMSAThr, "cov-msa-thr", config.DefaultConfig.CovMSAThr, "minimum column coverage fraction to keep a member")
	f.Float64SliceVar(&flagQid, "qid", config.DefaultConfig.Qid, "stepped minimum identity-to-query thresholds, keyed by member coverage bin")
	f.Float64Var(&flagQsc, "qsc", config.DefaultConfig.Qsc, "minimum normalized alignment score to keep a member")
	f.IntVar(&flagNdiff, "ndiff", config.DefaultConfig.Ndiff, "cap on retained members after diversity filtering (0 = unlimited)")
	f.IntVar(&flagFilterMinEnable, "filter-min-enable", config.DefaultConfig.FilterMinEnable, "minimum retained members before falling back to keeping everyone")
	f.BoolVar(&flagCompBiasCorrection, "comp-bias-correction", config.DefaultConfig.CompBiasCorrection, "apply composition-bias correction to PSSM columns")
	f.Float64Var(&flagCompBiasCorrectionScale, "comp-bias-correction-scale", config.DefaultConfig.CompBiasCorrectionScale, "scale factor for composition-bias correction")
	f.Float64Var(&flagPCA, "pca", config.DefaultConfig.PCA, "pseudo-count taper constant")
	f.Float64Var(&flagPCB, "pcb", config.DefaultConfig.PCB, "pseudo-count weight")
	f.IntVar(&flagPCMode, "pcmode", config.DefaultConfig.PCMode, "pseudo-count mode (0=tapered, 1=fixed)")

	f.IntVar(&flagThreads, "threads", config.DefaultConfig.Threads, "number of Stage A scoring threads")
	f.StringVar(&flagPrecluster, "precluster", config.DefaultConfig.ClusterDB, "cluster database mapping representatives to members, added as additional Stage B seed hits")
	f.StringVar(&flagGuideTree, "guide-tree", config.DefaultConfig.GuideTree, "Newick file to use as the guide tree instead of computing one")
	f.StringVar(&flagTMAlignPath, "tmalign-path", config.DefaultConfig.TMAlignPath, "path to a TM-align binary for merge tie-breaking")
	f.IntVar(&flagMaxSeqLen, "max-seq-len", config.DefaultConfig.MaxSeqLen, "drop input structures longer than this many residues (0 = unlimited)")

	f.IntVar(&flagRefineIterations, "refine-iterations", config.DefaultConfig.RefineIterations, "number of post-hoc refinement rounds")
	f.Int64Var(&flagRefineSeed, "refine-seed", config.DefaultConfig.RefineSeed, "refinement random seed")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	fileConf := config.DefaultConfig
	if flagConfigFile != "" {
		f, err := os.Open(flagConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&fileConf); err != nil {
			return config.Config{}, err
		}
	}

	flagConf := config.Config{
		GapOpen: flagGapOpen, GapExtend: flagGapExtend,
		MatchRatio: flagMatchRatio, FilterMSA: flagFilterMSA,
		FilterMaxSeqID: flagFilterMaxSeqID, CovMSAThr: flagCovMSAThr,
		Qid: flagQid, Qsc: flagQsc, Ndiff: flagNdiff,
		FilterMinEnable: flagFilterMinEnable,
		CompBiasCorrection: flagCompBiasCorrection, CompBiasCorrectionScale: flagCompBiasCorrectionScale,
		PCA: flagPCA, PCB: flagPCB, PCMode: flagPCMode,
		Threads: flagThreads, ClusterDB: flagPrecluster, GuideTree: flagGuideTree,
		TMAlignPath: flagTMAlignPath, MaxSeqLen: flagMaxSeqLen,
		RefineIterations: flagRefineIterations, RefineSeed: flagRefineSeed,
		Verbosity: flagVerbosity, OutPrefix: flagOutPrefix,
	}

	changed := config.Changed{}
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		changed[fl.Name] = true
	})

	return flagConf.FlagMerge(fileConf, changed), nil
}

func runMSA(cmd *cobra.Command, args []string) error {
	if flagAAPath == "" || flagTDIPath == "" || flagCADir == "" {
		return fmt.Errorf("--aa, --3di and --ca-dir are all required")
	}

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	headers := store.NewHeaderStore()
	structures, err := store.LoadStructures(flagAAPath, flagTDIPath, flagCADir, headers, conf.MaxSeqLen)
	if err != nil {
		return err
	}
	n := len(structures)
	foldalign.Vprintf(1, "loaded %d structures\n", n)

	st := foldalign.NewStore(structures)

	edges := buildGuideTree(n, structures, conf, headers)

	mg := merge.NewMerger(st, structures)
	mg.Params = profileParams(conf)
	mg.GapOpen, mg.GapExtend = conf.GapOpen, conf.GapExtend
	if conf.TMAlignPath != "" {
		mg.Orient.TM = collab.TMAligner{Binary: conf.TMAlignPath}
	}

	// Track each live cluster's Newick label alongside the merge, so a
	// tree built internally (not supplied via --guide-tree) can still be
	// written out (§5 "a Newick file ... written only when the guide tree
	// was built internally").
	builtTree := conf.GuideTree == ""
	label := make(map[int]string, n)
	for i := 0; i < n; i++ {
		label[i] = headers.Header(i)
	}

	bar := progressbar.Default(int64(len(edges)), "merging")
	for _, e := range edges {
		a, b := st.Find(e.A), st.Find(e.B)
		la, lb := label[a], label[b]
		mg.MergeEdge(a, b)
		if builtTree {
			label[st.Find(a)] = "(" + la + "," + lb + ")"
		}
		bar.Add(1)
	}

	if conf.RefineIterations > 0 {
		rf := refine.NewRefiner(st, structures, conf.RefineSeed)
		rf.Params = mg.Params
		rf.GapOpen, rf.GapExtend = conf.GapOpen, conf.GapExtend
		rf.Orient.TM = mg.Orient.TM
		rf.Run(conf.RefineIterations)
	}

	if builtTree && n > 1 {
		newick := label[st.Find(0)] + ";"
		if err := store.WriteNewick(conf.OutPrefix+".nw", newick); err != nil {
			return err
		}
	}

	return writeResults(st, structures, headers, conf)
}

// buildGuideTree produces the sequence of merge edges to replay: either
// parsed from a Newick file (--guide-tree) or computed from Stage A
// all-vs-all seeding scores, plus Stage B's additive cluster-database hits
// when --precluster names one, reduced to a maximum spanning tree (§4.3).
func buildGuideTree(n int, structures []*foldalign.Structure, conf config.Config, headers *store.HeaderStore) []tree.Edge {
	if conf.GuideTree != "" {
		data, err := os.ReadFile(conf.GuideTree)
		if err != nil {
			foldalign.Fatalf("reading guide tree: %s", err)
		}
		root, err := tree.ParseNewick(string(data))
		if err != nil {
			foldalign.Fatalf("parsing guide tree: %s", err)
		}
		labelIndex := make(map[string]int, n)
		for i := 0; i < n; i++ {
			labelIndex[headers.Header(i)] = i
		}
		edges, err := tree.PostOrderMerges(root, labelIndex)
		if err != nil {
			foldalign.Fatalf("%s", err)
		}
		return edges
	}

	sc := foldalign.NewScorer(collab.LocalAligner{})
	score := func(i, j int) int32 {
		return sc.UngappedScore(foldalign.RawOperandOf(structures[i].AA, structures[i].TDI), structures[j].AA, structures[j].TDI)
	}
	hits := tree.AllVsAll(n, conf.Threads, score)
	if conf.ClusterDB != "" {
		clusters, err := store.ParseClusterDB(conf.ClusterDB)
		if err != nil {
			foldalign.Fatalf("%s", err)
		}
		byIndex := make(map[int][]int, len(clusters))
		for repName, memberNames := range clusters {
			rep, ok := headers.Lookup(repName)
			if !ok {
				foldalign.Fatalf("cluster database: representative %q has no matching structure", repName)
			}
			for _, memberName := range memberNames {
				member, ok := headers.Lookup(memberName)
				if !ok {
					foldalign.Fatalf("cluster database: member %q has no matching structure", memberName)
				}
				byIndex[rep] = append(byIndex[rep], member)
			}
		}
		hits = append(hits, tree.StageBHits(byIndex, score)...)
	}
	tree.SortHits(hits)
	return tree.MaxSpanningTree(n, hits)
}

func profileParams(conf config.Config) profile.Params {
	return profile.Params{
		MatchRatio:              conf.MatchRatio,
		FilterMSA:                conf.FilterMSA,
		FilterMaxSeqID:           conf.FilterMaxSeqID,
		CovMSAThr:                conf.CovMSAThr,
		Qid:                      conf.Qid,
		Qsc:                      conf.Qsc,
		Ndiff:                    conf.Ndiff,
		FilterMinEnable:          conf.FilterMinEnable,
		CompBiasCorrection:       conf.CompBiasCorrection,
		CompBiasCorrectionScale:  conf.CompBiasCorrectionScale,
		PCA:                      conf.PCA,
		PCB:                      conf.PCB,
		PCMode:                   conf.PCMode,
	}
}

func writeResults(st *foldalign.Store, structures []*foldalign.Structure, headers *store.HeaderStore, conf config.Config) error {
	n := len(structures)
	aaSeqs := make([]string, n)
	ssSeqs := make([]string, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		aa, ss := st.Expand(i)
		aaSeqs[i], ssSeqs[i] = aa, ss
		names[i] = headers.Header(i)
	}
	if err := store.WriteFasta(conf.OutPrefix+"_aa.fa", names, aaSeqs); err != nil {
		return err
	}
	if err := store.WriteFasta(conf.OutPrefix+"_3di.fa", names, ssSeqs); err != nil {
		return err
	}
	foldalign.Vprintf(1, "wrote %s_aa.fa and %s_3di.fa\n", conf.OutPrefix, conf.OutPrefix)
	return nil
}
