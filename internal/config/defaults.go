package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultScanPath is the default directory scanned for test executables
	DefaultScanPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".testexe"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultNUnitRunner is the console runner for NUnit assemblies
	DefaultNUnitRunner = "nunit-runner"
	// DefaultNUnitRunnerX86 is the console runner for 32-bit NUnit assemblies
	DefaultNUnitRunnerX86 = "nunit-runner-x86"
	// DefaultLogLevel is the default framework log level
	DefaultLogLevel = "units"
	// DefaultReportFormat is the default format of exported reports
	DefaultReportFormat = "json"
)

// Environment variables read by Load
const (
	EnvNUnitRunner    = "TESTEXE_NUNIT_RUNNER"
	EnvNUnitRunnerX86 = "TESTEXE_NUNIT_RUNNER_X86"
	EnvResultsDir     = "TESTEXE_RESULTS_DIR"
	EnvDatabaseDSN    = "TESTEXE_DB_DSN"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for executables
var DefaultPathsToIgnore = []string{
	".git",
	".testexe",
	"node_modules",
	"vendor",
	"CMakeFiles",
	"obj",
}
