package cli

// Version and CommitSHA identify the build in debug logs. They are set by
// the main package.
var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"warn" env:"MYMONEY_LOG_LEVEL"`
	Dir       string `help:"Project directory." default:"." env:"MYMONEY_DIR" type:"path" short:"C"`
}

type Commands struct {
	Globals

	Run    RunCmd    `cmd:"" help:"Categorize and reconcile the account exports of a period and write its reports."`
	Train  TrainCmd  `cmd:"" help:"Learn categorization rules from a category<TAB>description training file."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging a project."`
}
