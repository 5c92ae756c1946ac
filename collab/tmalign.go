package collab

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/ndaniels/foldalign"
)

// TMAligner invokes an external TM-align binary as the structural
// superposition collaborator (§6). Binary is the path to the executable
// (e.g. from --tmalign-path); a missing or unusable binary is a
// configuration error the caller should check once at startup, not per
// call.
type TMAligner struct {
	Binary string
}

// TMResult is a TM-align invocation's parsed output (§6): a TM-score plus
// the backtrace recovered from TM-align's own alignment block, in the same
// {'M','I','D'} shape as the in-process DPAligner's AlignResult (§4.2) so
// the merger's tie-break (§4.5 step 4) can treat "the DP candidate" and
// "the TM-align candidate" identically once each has produced one. Ok is
// false when the subprocess failed or its output didn't parse, per §7's
// "collaborator failure" fail-soft contract: callers treat a failed
// TMAligner call as "no TM candidate available", not as a fatal error.
type TMResult struct {
	foldalign.AlignResult
	TMScore float64
	Ok      bool
}

var tmScoreLine = regexp.MustCompile(`TM-score\s*=\s*([0-9.]+)`)
var tmAlignBlockHeader = regexp.MustCompile(`denotes (residue pairs|aligned residues)`)

// Align runs TM-align on two PDB-format structure files, parses its
// reported TM-score and the three-line alignment block ("(\":\" denotes
// ..." followed by query sequence, match markers, target sequence, the
// format every TM-align release since the original 2005 paper has used)
// into a backtrace, and wraps both as a TMResult. This reads the first
// reported score without requesting TM-align's "-a T" length-averaging
// convention, matching the teacher's pattern of treating an external
// tool's stdout as untyped text to scrape rather than a structured API
// (teacher/cmd.go's Exec). Any failure — missing binary, nonzero exit,
// unparseable output — returns Ok: false rather than an error, so a single
// flaky TM-align call degrades the tie-break rather than aborting a merge
// round (§7).
func (t TMAligner) Align(pdbA, pdbB string) TMResult {
	if t.Binary == "" {
		return TMResult{}
	}
	cmd := exec.Command(t.Binary, pdbA, pdbB)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	foldalign.Vprintf(2, "%s\n", strings.Join(cmd.Args, " "))
	if err := Exec(cmd); err != nil {
		foldalign.Vprintf(1, "TM-align failed: %s\n", err)
		return TMResult{}
	}

	out := stdout.String()
	m := tmScoreLine.FindStringSubmatch(out)
	if m == nil {
		return TMResult{}
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return TMResult{}
	}

	qSeq, tSeq, ok := parseTMAlignmentBlock(out)
	if !ok {
		return TMResult{}
	}
	bt, qLen, tLen := backtraceFromTMAlignment(qSeq, tSeq)
	return TMResult{
		AlignResult: foldalign.AlignResult{
			QStart: 0, QEnd: qLen,
			DBStart: 0, DBEnd: tLen,
			Backtrace: bt,
			Score:     roundTMScore(score),
		},
		TMScore: score,
		Ok:      true,
	}
}

// parseTMAlignmentBlock locates the three-line alignment block TM-align
// prints after its "(\":\" denotes ...)" comment line and returns the
// query and target sequence lines (gapped with '-').
func parseTMAlignmentBlock(out string) (qSeq, tSeq string, ok bool) {
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		if tmAlignBlockHeader.MatchString(l) && i+3 < len(lines) {
			return lines[i+1], lines[i+3], true
		}
	}
	return "", "", false
}

// backtraceFromTMAlignment converts TM-align's two gapped sequence lines
// into the {'M','I','D'} backtrace alphabet the merger's weave step
// expects (§4.2): a column where both sides carry a residue is a match;
// a column where only the query carries one deletes from the target; a
// column where only the target carries one inserts into the query.
func backtraceFromTMAlignment(qSeq, tSeq string) (bt string, qLen, tLen int) {
	n := len(qSeq)
	if len(tSeq) < n {
		n = len(tSeq)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		qc, tc := qSeq[i], tSeq[i]
		switch {
		case qc != '-' && tc != '-':
			b.WriteByte('M')
			qLen++
			tLen++
		case qc != '-':
			b.WriteByte('D')
			qLen++
		case tc != '-':
			b.WriteByte('I')
			tLen++
		}
	}
	return b.String(), qLen, tLen
}

func roundTMScore(s float64) int32 {
	return int32(s*1000 + 0.5)
}

// Exec runs cmd and converts anything reported to stderr into a Go error,
// the same shape as teacher/cmd.go's Exec: a command that exits nonzero
// surfaces whatever it wrote to stderr rather than just "exit status 1".
func Exec(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}
	fullCmd := strings.Join(cmd.Args, " ")
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("error running '%s': %s.\n\nstderr:\n%s", fullCmd, err, stderr.String())
		}
		return fmt.Errorf("error running '%s': %s", fullCmd, err)
	}
	return nil
}

// SuppressStdout redirects os.Stdout to /dev/null for the duration of fn
// and restores it afterward, for in-process collaborators that write noisy
// progress output to stdout with no quiet flag (§9's "global I/O side
// effect" note). TMAligner does not call it: it captures the subprocess's
// stdout into a buffer itself. Returns fn's error, if any.
func SuppressStdout(fn func() error) error {
	saved := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return fn()
	}
	os.Stdout = devNull
	defer func() {
		os.Stdout = saved
		devNull.Close()
	}()
	return fn()
}
