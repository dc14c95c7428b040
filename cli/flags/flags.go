package flags

import (
	"os"
	"path"
	"time"

	flag "github.com/spf13/pflag"
)

const (
	LogFormat = "log-format"
	LogLevel  = "log-level"
	LogSource = "log-source"

	SSHUser        = "ssh-user"
	SSHKey         = "ssh-key"
	SSHPort        = "ssh-port"
	ConnectTimeout = "connect-timeout"

	ReadyAttempts = "ready-attempts"
	ReadyInterval = "ready-interval"
	StepTimeout   = "step-timeout"

	Inventory           = "inventory"
	OpenstackNamePrefix = "openstack-name-prefix"

	SkipValidate = "skip-validate"
	ProbeTimeout = "probe-timeout"
)

// Register defines every ostler flag on the given set. Values are read back
// through viper, so OSTLER_* environment variables override defaults.
func Register(flags *flag.FlagSet) {
	flags.String(LogFormat, "text", "log format (json, text)")
	flags.String(LogLevel, "INFO", "minimum log level")
	flags.Bool(LogSource, false, "add source code location to logs")

	flags.String(SSHUser, "debian", "ssh username used to connect to the hosts")
	flags.String(SSHKey, path.Join(os.Getenv("HOME"), ".ssh", "id_rsa"), "ssh private key used to connect to the hosts (must be 0600)")
	flags.Int(SSHPort, 22, "ssh port on the hosts")
	flags.Duration(ConnectTimeout, 5*time.Second, "timeout of a single ssh connection attempt")

	flags.Int(ReadyAttempts, 30, "number of readiness attempts per host")
	flags.Duration(ReadyInterval, 10*time.Second, "delay between readiness attempts")
	flags.Duration(StepTimeout, 10*time.Minute, "timeout applied to each provisioning step")

	flags.String(Inventory, "", "yaml file mapping roles to host addresses")
	flags.String(OpenstackNamePrefix, "ostler-", "server name prefix when resolving hosts from openstack")

	flags.Bool(SkipValidate, false, "skip endpoint validation after provisioning")
	flags.Duration(ProbeTimeout, 5*time.Second, "timeout applied to each validation probe")
}
