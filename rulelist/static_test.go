package rulelist

import (
	"math"
	"testing"

	"github.com/skater-ml/brlc/dataset"
	"github.com/skater-ml/brlc/pkg/errors"
)

func trainingTable(t *testing.T, labels []string) *dataset.Table {
	t.Helper()
	n := len(labels)
	colors := make([]string, n)
	for i := range colors {
		if i%2 == 0 {
			colors[i] = "red"
		} else {
			colors[i] = "blue"
		}
	}
	tbl := dataset.NewTable(n)
	tbl, _ = tbl.WithCategorical("color", colors)
	tbl, _ = tbl.WithCategorical(LabelColumn, labels)
	return tbl
}

func TestStaticBackendFitScoresRules(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	defer errors.SetWarningHandler(nil)

	// red rows: labels 1,1,0 ; blue rows: labels 0,0,0
	tbl := trainingTable(t, []string{"1", "0", "1", "0", "0", "0"})

	backend := NewStaticBackend([]Rule{
		{Conditions: []Condition{{Column: "color", Value: "red"}}},
	})
	handle, err := backend.Fit(tbl, DefaultHyperparameters())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	rl, ok := handle.(*RuleList)
	if !ok {
		t.Fatalf("handle type %T, want *RuleList", handle)
	}
	if len(rl.Rules) != 2 {
		t.Fatalf("got %d rules, want 2 (candidate + default)", len(rl.Rules))
	}
	if !rl.Rules[1].IsDefault() {
		t.Error("last rule is not the default rule")
	}

	// red support 3, positives 2, alpha 1: (2+1)/(3+2)
	if got, want := rl.Probs[0][1], 0.6; math.Abs(got-want) > 1e-12 {
		t.Errorf("rule probability = %v, want %v", got, want)
	}
	// default support 6, positives 2: (2+1)/(6+2)
	if got, want := rl.Probs[1][1], 0.375; math.Abs(got-want) > 1e-12 {
		t.Errorf("default probability = %v, want %v", got, want)
	}
}

func TestStaticBackendRejectsNonBinaryLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{"single class", []string{"1", "1", "1", "1"}},
		{"three classes", []string{"0", "1", "2", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := trainingTable(t, tt.labels)
			backend := NewStaticBackend(nil)
			_, err := backend.Fit(tbl, DefaultHyperparameters())
			var unsupported *errors.UnsupportedOperationError
			if !errors.As(err, &unsupported) {
				t.Errorf("expected UnsupportedOperationError, got %v", err)
			}
		})
	}
}

func TestStaticBackendCardinalityBounds(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	defer errors.SetWarningHandler(nil)

	tbl := trainingTable(t, []string{"1", "0", "1", "0"})

	long := Rule{Conditions: []Condition{
		{Column: "color", Value: "red"},
		{Column: "color", Value: "blue"},
	}}
	short := Rule{Conditions: []Condition{{Column: "color", Value: "red"}}}

	hp := DefaultHyperparameters()
	hp.RuleMaxLen = 1
	backend := NewStaticBackend([]Rule{long, short})
	handle, err := backend.Fit(tbl, hp)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	rl := handle.(*RuleList)
	// The two-condition candidate is out of bounds; kept rules are the
	// short candidate and the default rule.
	if len(rl.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rl.Rules))
	}
	if rl.Rules[0].Name() != "{color=red}" {
		t.Errorf("first rule = %s", rl.Rules[0].Name())
	}
}

func TestStaticBackendForeignHandle(t *testing.T) {
	backend := NewStaticBackend(nil)
	if _, err := backend.Predict("not a handle", nil); err == nil {
		t.Error("expected error for foreign handle")
	}
	if _, err := backend.Describe(42); err == nil {
		t.Error("expected error for foreign handle")
	}
}

func TestStaticBackendDescribeOrder(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	defer errors.SetWarningHandler(nil)

	tbl := trainingTable(t, []string{"1", "0", "1", "0"})
	backend := NewStaticBackend([]Rule{
		{Conditions: []Condition{{Column: "color", Value: "red"}}},
		{Conditions: []Condition{{Column: "color", Value: "blue"}}},
	})
	handle, err := backend.Fit(tbl, DefaultHyperparameters())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	info, err := backend.Describe(handle)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	want := []string{"{color=red}", "{color=blue}", "{default}"}
	if len(info.RuleNames) != len(want) {
		t.Fatalf("RuleNames = %v, want %v", info.RuleNames, want)
	}
	for i := range want {
		if info.RuleNames[i] != want[i] {
			t.Errorf("RuleNames[%d] = %q, want %q", i, info.RuleNames[i], want[i])
		}
	}
	if len(info.Rules) != 3 {
		t.Errorf("Rules metadata length = %d, want 3", len(info.Rules))
	}
}
