package config

import (
	"bytes"
	"reflect"
	"testing"
)

func TestConfigWriteLoadRoundTrip(t *testing.T) {
	conf := DefaultConfig
	conf.Threads = 7
	conf.MatchRatio = 0.75
	conf.Qid = []float64{0.2, 0.5}

	buf := new(bytes.Buffer)
	if err := conf.Write(buf); err != nil {
		t.Fatalf("Write: %s", err)
	}
	got, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if !reflect.DeepEqual(got, conf) {
		t.Fatalf("round-trip mismatch:\ngot  %+v\nwant %+v", got, conf)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	r := bytes.NewBufferString("threads: 4\n")
	got, err := Load(r)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if got.Threads != 4 {
		t.Fatalf("Threads = %d, want 4", got.Threads)
	}
	if got.MatchRatio != DefaultConfig.MatchRatio {
		t.Fatalf("MatchRatio = %f, want default %f (untouched by partial file)", got.MatchRatio, DefaultConfig.MatchRatio)
	}
}

func TestFlagMergeOnlyOverridesChangedFlags(t *testing.T) {
	fileConf := DefaultConfig
	fileConf.Threads = 2
	fileConf.MatchRatio = 0.6

	flagConf := DefaultConfig
	flagConf.Threads = 16 // explicitly set on the command line
	flagConf.MatchRatio = 0.99 // left at its flag default, NOT explicitly set

	changed := Changed{"threads": true}
	merged := flagConf.FlagMerge(fileConf, changed)

	if merged.Threads != 16 {
		t.Fatalf("Threads = %d, want 16 (explicit flag wins)", merged.Threads)
	}
	if merged.MatchRatio != 0.6 {
		t.Fatalf("MatchRatio = %f, want 0.6 (file value preserved, flag unset)", merged.MatchRatio)
	}
}
