package instrumentator

import (
	"reflect"
	"testing"

	"github.com/heroku/instrumentator/go-kit/metrics/testmetrics"
)

func TestBuildLabels(t *testing.T) {
	tests := []struct {
		dims       []Dimension
		wantNames  []string
		wantFields []Dimension
	}{
		{nil, []string{}, []Dimension{}},
		{[]Dimension{Handler}, []string{"handler"}, []Dimension{Handler}},
		{[]Dimension{Method}, []string{"method"}, []Dimension{Method}},
		{[]Dimension{Status}, []string{"status"}, []Dimension{Status}},
		{[]Dimension{Handler, Method}, []string{"handler", "method"}, []Dimension{Handler, Method}},
		{[]Dimension{Status, Handler}, []string{"handler", "status"}, []Dimension{Handler, Status}},
		{[]Dimension{Status, Method}, []string{"method", "status"}, []Dimension{Method, Status}},
		{[]Dimension{Status, Method, Handler}, []string{"handler", "method", "status"}, []Dimension{Handler, Method, Status}},
	}

	for _, tt := range tests {
		names, fields := BuildLabels(NewDimensions(tt.dims...))
		if !reflect.DeepEqual(names, tt.wantNames) {
			t.Errorf("BuildLabels(%v) names = %q, want %q", tt.dims, names, tt.wantNames)
		}
		if !reflect.DeepEqual(fields, tt.wantFields) {
			t.Errorf("BuildLabels(%v) fields = %v, want %v", tt.dims, fields, tt.wantFields)
		}
		if len(names) != len(fields) {
			t.Fatalf("len(names) = %d, len(fields) = %d", len(names), len(fields))
		}
		for i, f := range fields {
			if f.LabelName() != names[i] {
				t.Errorf("label %d = %q, but is read from %q", i, names[i], f.LabelName())
			}
		}
	}
}

func TestDimensionValue(t *testing.T) {
	info := Info{Method: "PATCH", ModifiedHandler: "/apps/{id}", ModifiedStatus: "4xx"}

	for d, want := range map[Dimension]string{
		Handler: "/apps/{id}",
		Method:  "PATCH",
		Status:  "4xx",
	} {
		if got := d.Value(info); got != want {
			t.Errorf("%s value = %q, want %q", d.LabelName(), got, want)
		}
	}

	if got := Dimension(0).Value(info); got != "" {
		t.Errorf("unknown dimension value = %q, want empty", got)
	}
}

func TestAllDimensions(t *testing.T) {
	for _, d := range []Dimension{Handler, Method, Status} {
		if !AllDimensions.Has(d) {
			t.Errorf("AllDimensions is missing %s", d.LabelName())
		}
	}
	if NewDimensions().Has(Handler) {
		t.Error("empty set has handler")
	}
}

// Every label combination must register the labels in the same order the
// values are bound in. The test provider fails the test otherwise.
func TestLabelCombinationsRecordMatchingValues(t *testing.T) {
	info := Info{
		Method:           "GET",
		ModifiedHandler:  "/items",
		ModifiedStatus:   "2xx",
		ModifiedDuration: 0.42,
	}
	values := map[string]string{
		"handler": "/items",
		"method":  "GET",
		"status":  "2xx",
	}

	all := []Dimension{Handler, Method, Status}
	for mask := 0; mask < 8; mask++ {
		var dims []Dimension
		for i, d := range all {
			if mask&(1<<i) != 0 {
				dims = append(dims, d)
			}
		}

		p := testmetrics.NewProvider(t)
		m, err := Latency(p, WithDimensions(dims...))
		if err != nil {
			t.Fatal(err)
		}
		m.Observe(info)

		names, _ := BuildLabels(NewDimensions(dims...))
		p.CheckRegistered(LatencyName, testmetrics.KindHistogram, names...)

		var pairs []string
		for _, n := range names {
			pairs = append(pairs, n, values[n])
		}
		p.CheckObservations(LatencyName, []float64{0.42}, pairs...)
	}
}
