package tools

import (
	"context"
	"reflect"
	"testing"

	"github.com/Comcast/corrcheck/loader"
)

func shop(t *testing.T) *loader.Document {
	doc, err := loader.Load(context.Background(), "testdata/shop.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAnalysis(t *testing.T) {
	doc := shop(t)

	a, err := Analyze(doc.Program, doc.Correlation)
	if err != nil {
		t.Fatal(err)
	}

	if a.Definitions != 4 || a.Calls != 2 || a.Inputs != 3 || a.Outputs != 2 || a.Parallels != 1 {
		t.Fatalf("%#v", a)
	}
	if !reflect.DeepEqual(a.Orphans, []string{"unused"}) {
		t.Fatal(a.Orphans)
	}
	if !reflect.DeepEqual(a.Operations, []string{"add", "checkout", "open"}) {
		t.Fatal(a.Operations)
	}
	if len(a.UncorrelatedOperations) != 0 {
		t.Fatal(a.UncorrelatedOperations)
	}
	if !reflect.DeepEqual(a.UnusedSets, []string{"Legacy"}) {
		t.Fatal(a.UnusedSets)
	}
}

func TestAnalysisNoInfo(t *testing.T) {
	doc := shop(t)

	a, err := Analyze(doc.Program, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.UncorrelatedOperations) != 3 {
		t.Fatal(a.UncorrelatedOperations)
	}
	if a.UnusedSets != nil {
		t.Fatal(a.UnusedSets)
	}
}

func TestCallGraph(t *testing.T) {
	names, calls := CallGraph(shop(t).Program)
	if !reflect.DeepEqual(names, []string{"main", "mint", "audit", "unused"}) {
		t.Fatal(names)
	}
	if !reflect.DeepEqual(calls["main"], []string{"mint", "audit"}) {
		t.Fatal(calls["main"])
	}
	if len(calls["unused"]) != 0 {
		t.Fatal(calls["unused"])
	}
}
