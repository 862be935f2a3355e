package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testexe/internal/domain"
	"testexe/internal/tree"
)

const nunitListing = `Samples.Math.Add
Samples.Math.Divide(1.5,2)
Samples.Math.Divide(3,0)
Samples.Text.Format
`

func loadNUnit(t *testing.T) (*NUnitAdapter, *tree.Tree, *recorder) {
	t.Helper()
	rec := &recorder{}
	a := NewNUnit(Command{Path: "nunit-runner", Args: []string{"Samples.dll"}}, rec)
	tr := tree.New()
	require.NoError(t, a.Load(tr, strings.NewReader(nunitListing), "Samples.dll"))
	tr.Traverse(&tree.PathNamer{})
	return a, tr, rec
}

func TestSplitNUnitName(t *testing.T) {
	assert.Equal(t, []string{"Ns", "Fixture", "Test(1.5,\"a.b\")"}, splitNUnitName(`Ns.Fixture.Test(1.5,"a.b")`))
	assert.Equal(t, []string{"Test"}, splitNUnitName("Test"))
}

func TestNUnit_Load(t *testing.T) {
	_, tr, _ := loadNUnit(t)
	units := collect(tr)

	assert.Equal(t, domain.Suite, units["Samples"].Kind)
	assert.Equal(t, domain.Suite, units["Samples.Math"].Kind)
	assert.Equal(t, domain.Case, units["Samples.Math.Divide(1.5,2)"].Kind)
	assert.Equal(t, domain.Case, units["Samples.Text.Format"].Kind)
	assert.Equal(t, 4, tr.CaseCount())
	assert.Len(t, tr.Root().Children, 1, "namespaces are shared")
}

func TestNUnit_BuildArgs(t *testing.T) {
	a, tr, _ := loadNUnit(t)
	assert.Empty(t, a.BuildArgs(tr, domain.LogUnits, 0))

	units := collect(tr)
	require.NoError(t, tr.Enable(units["Samples.Math.Divide(3,0)"].ID, false))
	assert.Equal(t,
		[]string{"--wait", "--labels=All", `--run=Samples.Math.Add,"Samples.Math.Divide(1.5,2)",Samples.Text`},
		a.BuildArgs(tr, domain.LogAll, domain.WaitForDebugger|domain.Randomize))
}

func TestNUnitRunList(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"Ns.Fixture"}, "Ns.Fixture"},
		{[]string{"Ns.A", "Ns.B.Test"}, "Ns.A,Ns.B.Test"},
		{[]string{"Ns.F.Test(1,2)", "Ns.G"}, `"Ns.F.Test(1,2)",Ns.G`},
		{[]string{`Ns.F.Test("a")`}, `"Ns.F.Test(""a"")"`},
	}
	for _, tt := range tests {
		if got := nunitRunList(tt.names); got != tt.want {
			t.Errorf("nunitRunList(%q): expected %s, got %s", tt.names, tt.want, got)
		}
	}
}

func TestNUnit_EnabledOptions(t *testing.T) {
	a, _, _ := loadNUnit(t)
	assert.Equal(t, domain.WaitForDebugger, a.EnabledOptions(domain.Randomize|domain.WaitForDebugger))
}

func TestNUnit_FilterMessage(t *testing.T) {
	a, tr, rec := loadNUnit(t)
	units := collect(tr)
	id := func(name string) string { return itoa(units[name].ID) }

	err := feed(a,
		"#start 2",
		"#suite-start Samples.Math",
		"#test-start Samples.Math.Add",
		"#test-finish Samples.Math.Add 12 Passed",
		"#test-start Samples.Math.Divide(3,0)",
		"#exception System.DivideByZeroException: Attempted to divide by zero.",
		"#test-finish Samples.Math.Divide(3,0) 1 Error",
		"#ignored Samples.Math.Divide(1.5,2)",
		"#suite-finish Samples.Math 15",
		"#failure Expected: 2 But was: 3",
		"#finish",
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"iteration-start:2",
		"start:" + id("Samples.Math") + ":Samples.Math",
		"start:" + id("Samples.Math.Add") + ":Samples.Math.Add",
		"finish:" + id("Samples.Math.Add") + ":Samples.Math.Add:12ms",
		"start:" + id("Samples.Math.Divide(3,0)") + ":Samples.Math.Divide(3,0)",
		"exception:System.DivideByZeroException: Attempted to divide by zero.",
		"finish:" + id("Samples.Math.Divide(3,0)") + ":Samples.Math.Divide(3,0):1ms",
		"skipped:" + id("Samples.Math.Divide(1.5,2)") + ":Samples.Math.Divide(1.5,2)",
		"finish:" + id("Samples.Math") + ":Samples.Math:15ms",
		"assertion:false",
		"iteration-finish",
	}, rec.events)
	assert.Equal(t, "error:#test-finish Samples.Math.Divide(3,0) 1 Error", rec.messages[6])
}
